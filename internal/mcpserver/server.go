// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes CareBand tools for LLM integration via stdio transport, so an
// assistant can read the care plan and record events on the user's behalf.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halver/careband/internal/activity"
	"github.com/halver/careband/internal/apperr"
	"github.com/halver/careband/internal/health"
	"github.com/halver/careband/internal/models"
)

// Server wraps the MCP server with CareBand tools.
type Server struct {
	mcp   *server.MCPServer
	store *health.Store
}

// New creates a new MCP server with all CareBand tools registered.
func New(store *health.Store) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"CareBand",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_today_status",
		mcp.WithDescription("Get today's check-in (if any) and the current consecutive-day streak."),
	), s.getTodayStatus)

	s.mcp.AddTool(mcp.NewTool("check_in",
		mcp.WithDescription("Record today's wellness check-in. Only one check-in is allowed "+
			"per calendar day; read the contract first via the get_care_contract tool or "+
			"the careband://care-contract resource."),
		mcp.WithString("status", mcp.Required(), mcp.Description(`Wellness status: "ok" or "not-ok"`)),
		mcp.WithString("note", mcp.Description("Optional free-text note")),
	), s.checkIn)

	s.mcp.AddTool(mcp.NewTool("list_medications",
		mcp.WithDescription("List the user's medications with dose, frequency, and time of day."),
	), s.listMedications)

	s.mcp.AddTool(mcp.NewTool("log_medication_taken",
		mcp.WithDescription("Record that a medication was taken just now."),
		mcp.WithString("medication_id", mcp.Required(), mcp.Description("Identifier of the medication")),
	), s.logMedicationTaken)

	s.mcp.AddTool(mcp.NewTool("snooze_medication",
		mcp.WithDescription("Record that a medication reminder was snoozed."),
		mcp.WithString("medication_id", mcp.Required(), mcp.Description("Identifier of the medication")),
	), s.snoozeMedication)

	s.mcp.AddTool(mcp.NewTool("get_activity",
		mcp.WithDescription("Get recent activity grouped by day: medication logs and check-ins, newest first."),
		mcp.WithNumber("days", mcp.Description("Maximum number of day groups to return (default 7)")),
	), s.getActivity)

	s.mcp.AddTool(mcp.NewTool("get_care_contract",
		mcp.WithDescription("Returns the CareBand care-tracking contract. "+
			"Call this before recording check-ins or medication events."),
	), s.getCareContract)

	// Resource: care-tracking contract.
	s.mcp.AddResource(
		mcp.NewResource("careband://care-contract", "Care Tracking Contract",
			mcp.WithResourceDescription("Rules every recorded check-in and medication event must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCareContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) getTodayStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(map[string]any{
		"check_in": s.store.TodayCheckIn(),
		"streak":   s.store.Streak(),
		"demo":     s.store.Demo(),
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) checkIn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if status != models.CheckInOK && status != models.CheckInNotOK {
		return mcp.NewToolResultError(fmt.Sprintf("invalid status: %s", status)), nil
	}
	note := ""
	if v, nErr := req.RequireString("note"); nErr == nil {
		note = v
	}

	checkIn, err := s.store.CheckIn(ctx, status, note)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError("already checked in today"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if checkIn == nil {
		return mcp.NewToolResultText("demo mode: check-in not recorded"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("checked in: %s", checkIn.Status)), nil
}

func (s *Server) listMedications(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meds := s.store.Medications()
	if len(meds) == 0 {
		return mcp.NewToolResultText("no medications"), nil
	}
	out, _ := json.MarshalIndent(meds, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) logMedicationTaken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.logMedication(ctx, req, s.store.LogMedicationTaken, "taken")
}

func (s *Server) snoozeMedication(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.logMedication(ctx, req, s.store.LogMedicationSnoozed, "snoozed")
}

func (s *Server) logMedication(ctx context.Context, req mcp.CallToolRequest,
	op func(context.Context, string) (*models.MedicationLog, error), verb string) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("medication_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	med := s.findMedication(id)
	if med == nil {
		return mcp.NewToolResultError(fmt.Sprintf("medication not found: %s", id)), nil
	}
	log, err := op(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if log == nil {
		return mcp.NewToolResultText("demo mode: nothing recorded"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s %s", verb, med.Name, med.Dose)), nil
}

func (s *Server) getActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 7)
	if days <= 0 {
		days = 7
	}
	groups := activity.Build(s.store.Medications(), s.store.MedicationLogs(), s.store.CheckIns(), time.Now())
	if len(groups) > days {
		groups = groups[:days]
	}
	if len(groups) == 0 {
		return mcp.NewToolResultText("no activity yet"), nil
	}
	out, _ := json.MarshalIndent(groups, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getCareContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CareContract), nil
}

func (s *Server) readCareContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "careband://care-contract",
			MIMEType: "text/markdown",
			Text:     CareContract,
		},
	}, nil
}

func (s *Server) findMedication(id string) *models.Medication {
	for _, m := range s.store.Medications() {
		if m.ID == id {
			out := m
			return &out
		}
	}
	return nil
}

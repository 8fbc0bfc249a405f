// Package activity derives day-grouped activity views from the raw
// medication-log and check-in collections. It is the one shared grouping
// implementation; every consumer (REST, MCP) builds its pages from here
// instead of re-deriving inline.
package activity

import (
	"sort"
	"time"

	"github.com/halver/careband/internal/dates"
	"github.com/halver/careband/internal/models"
)

// Item types.
const (
	TypeMedication = "medication"
	TypeCheckIn    = "checkin"
)

// Status classifications for display.
const (
	StatusPositive = "positive"
	StatusNeutral  = "neutral"
	StatusWarning  = "warning"
)

// UnknownMedication is the fallback title for logs whose medication has
// been deleted; the weak reference keeps such logs in history.
const UnknownMedication = "Unknown medication"

// Item is a single activity entry within a day.
type Item struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

// DayGroup aggregates all activity sharing one local calendar day.
// MedsTaken/MedsTotal count medication logs only; the check-in never
// contributes to the medication tally.
type DayGroup struct {
	Date          string `json:"date"` // YYYY-MM-DD key
	DisplayDate   string `json:"display_date"`
	Items         []Item `json:"items"`
	MedsTaken     int    `json:"meds_taken"`
	MedsTotal     int    `json:"meds_total"`
	CheckInStatus string `json:"check_in_status,omitempty"`
}

// Build groups logs and check-ins into day groups: one group per local
// calendar day with at least one entry, items newest-first within each
// group, groups newest-first. Callers should rebuild from scratch rather
// than mutate returned pages; Build never aliases its inputs.
func Build(medications []models.Medication, logs []models.MedicationLog, checkIns []models.CheckIn, now time.Time) []DayGroup {
	groups := make(map[string]*DayGroup)

	group := func(t time.Time) *DayGroup {
		key := dates.Key(t)
		g, ok := groups[key]
		if !ok {
			g = &DayGroup{Date: key, DisplayDate: dates.Label(t, now)}
			groups[key] = g
		}
		return g
	}

	names := make(map[string]string, len(medications))
	for _, m := range medications {
		names[m.ID] = m.Name
	}

	for _, log := range logs {
		g := group(log.TakenAt)
		title, ok := names[log.MedicationID]
		if !ok {
			title = UnknownMedication
		}
		g.Items = append(g.Items, Item{
			ID:        log.ID,
			Type:      TypeMedication,
			Title:     title,
			Subtitle:  logSubtitle(log.Status),
			Timestamp: log.TakenAt,
			Status:    logStatus(log.Status),
		})
		if log.Status == models.LogStatusTaken {
			g.MedsTaken++
		}
		g.MedsTotal++
	}

	for _, c := range checkIns {
		g := group(c.Date)
		g.CheckInStatus = c.Status
		status := StatusWarning
		subtitle := "Not feeling great"
		if c.Status == models.CheckInOK {
			status = StatusPositive
			subtitle = "Feeling good"
		}
		g.Items = append(g.Items, Item{
			ID:        c.ID,
			Type:      TypeCheckIn,
			Title:     "Daily Check-in",
			Subtitle:  subtitle,
			Timestamp: c.Date,
			Status:    status,
		})
	}

	out := make([]DayGroup, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Items, func(i, j int) bool {
			return g.Items[i].Timestamp.After(g.Items[j].Timestamp)
		})
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Page returns the fixed-size window at the given zero-based page, plus
// the total page count. An out-of-range page yields an empty slice.
func Page(groups []DayGroup, page, perPage int) ([]DayGroup, int) {
	if perPage <= 0 {
		perPage = 4
	}
	totalPages := (len(groups) + perPage - 1) / perPage
	if page < 0 || page >= totalPages {
		return []DayGroup{}, totalPages
	}
	start := page * perPage
	end := start + perPage
	if end > len(groups) {
		end = len(groups)
	}
	return groups[start:end], totalPages
}

func logSubtitle(status string) string {
	switch status {
	case models.LogStatusTaken:
		return "Taken"
	case models.LogStatusSnoozed:
		return "Snoozed"
	default:
		return status
	}
}

func logStatus(status string) string {
	switch status {
	case models.LogStatusTaken:
		return StatusPositive
	case models.LogStatusSnoozed:
		return StatusNeutral
	default:
		return StatusWarning
	}
}

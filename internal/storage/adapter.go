// Package storage defines the persistence adapter the health store writes
// through, plus local implementations backed by SQLite or plain JSON files.
package storage

import (
	"context"

	"github.com/halver/careband/internal/models"
)

// Fixed keys under which each entity family is stored. Every family is one
// serialized document: a single object for the profile, a whole list for
// everything else. Writes are read-modify-write over the full collection;
// there are no per-record partial updates at this layer.
const (
	KeyProfile        = "cb_profile"
	KeyMedications    = "cb_medications"
	KeyMedicationLogs = "cb_medication_logs"
	KeyCheckIns       = "cb_check_ins"
)

// Adapter is the capability contract the health store depends on.
//
// Getters degrade on malformed durable data: a document that fails to
// decode is treated as "no data" (empty list or nil profile), never as an
// error. Update and delete of an absent identifier are silent no-ops.
// UpdateMedicationLog has no caller in the store today; it is part of the
// contract and kept for forward compatibility.
type Adapter interface {
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
	DeleteProfile(ctx context.Context) error

	GetMedications(ctx context.Context) ([]models.Medication, error)
	GetMedication(ctx context.Context, id string) (*models.Medication, error)
	AddMedication(ctx context.Context, med models.Medication) error
	UpdateMedication(ctx context.Context, med models.Medication) error
	DeleteMedication(ctx context.Context, id string) error

	GetMedicationLogs(ctx context.Context) ([]models.MedicationLog, error)
	AddMedicationLog(ctx context.Context, log models.MedicationLog) error
	UpdateMedicationLog(ctx context.Context, log models.MedicationLog) error

	GetCheckIns(ctx context.Context) ([]models.CheckIn, error)
	AddCheckIn(ctx context.Context, checkIn models.CheckIn) error
	// TodayCheckIn is a convenience mirror of the store's derivation that
	// reads durable state directly. The store never calls it; it recomputes
	// from its own in-memory copy.
	TodayCheckIn(ctx context.Context) (*models.CheckIn, error)

	Close() error
}

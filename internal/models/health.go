// Package models defines the domain types for CareBand.
package models

import "time"

// LocalUserID is the fixed owner identifier for all records created on this
// installation. CareBand is single-user; the field exists so records keep
// their shape if data is ever synced to a multi-user backend.
const LocalUserID = "local-user"

// Medication log statuses.
//
// Only "taken" and "snoozed" are produced by the store today; "missed" and
// "skipped" are part of the durable schema and kept for forward
// compatibility.
const (
	LogStatusTaken   = "taken"
	LogStatusMissed  = "missed"
	LogStatusSkipped = "skipped"
	LogStatusSnoozed = "snoozed"
)

// Check-in statuses.
const (
	CheckInOK    = "ok"
	CheckInNotOK = "not-ok"
)

// UserProfile is the singleton profile for the local user. It is absent
// until the first save.
type UserProfile struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Birthdate         string    `json:"birthdate,omitempty"` // ISO date (YYYY-MM-DD)
	Timezone          string    `json:"timezone,omitempty"`
	Avatar            string    `json:"avatar,omitempty"`
	MedicalConditions string    `json:"medical_conditions,omitempty"`
	EmergencyContact  string    `json:"emergency_contact,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Medication is a standing prescription entry. Frequency and time-of-day
// are free-form labels, not a controlled vocabulary.
type Medication struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Name               string     `json:"name"`
	Dose               string     `json:"dose"`
	Instructions       string     `json:"instructions,omitempty"`
	Frequency          string     `json:"frequency"`
	TimeOfDay          string     `json:"time_of_day"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	RefillReminderDays int        `json:"refill_reminder_days"`
	CurrentRefills     int        `json:"current_refills"`
	Active             bool       `json:"active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// MedicationLog is one immutable event per administration attempt.
// MedicationID is a weak reference: logs outlive a deleted medication.
type MedicationLog struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medication_id"`
	UserID       string    `json:"user_id"`
	TakenAt      time.Time `json:"taken_at"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CheckIn is one wellness report per local calendar day. Date keeps the
// original creation time for display; day comparisons normalize it to
// local midnight.
type CheckIn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/halver/careband/internal/activity"
	"github.com/halver/careband/internal/health"
	"github.com/halver/careband/internal/models"
)

// ProfileRequest is the body for PUT /profile.
type ProfileRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Birthdate         string `json:"birthdate"`
	Timezone          string `json:"timezone"`
	Avatar            string `json:"avatar"`
	MedicalConditions string `json:"medical_conditions"`
	EmergencyContact  string `json:"emergency_contact"`
}

// Validate validates the profile request.
func (r ProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

func (r ProfileRequest) input() health.ProfileInput {
	return health.ProfileInput{
		Name:              r.Name,
		Email:             r.Email,
		Phone:             r.Phone,
		Birthdate:         r.Birthdate,
		Timezone:          r.Timezone,
		Avatar:            r.Avatar,
		MedicalConditions: r.MedicalConditions,
		EmergencyContact:  r.EmergencyContact,
	}
}

// MedicationRequest is the body for POST /medications.
type MedicationRequest struct {
	Name               string     `json:"name"`
	Dose               string     `json:"dose"`
	Instructions       string     `json:"instructions"`
	Frequency          string     `json:"frequency"`
	TimeOfDay          string     `json:"time_of_day"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	RefillReminderDays *int       `json:"refill_reminder_days"`
	CurrentRefills     int        `json:"current_refills"`
	Active             bool       `json:"active"`
}

// Validate validates the medication request.
func (r MedicationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Dose, validation.Required),
		validation.Field(&r.RefillReminderDays, validation.Min(0)),
		validation.Field(&r.CurrentRefills, validation.Min(0)),
	)
}

func (r MedicationRequest) input() health.MedicationInput {
	return health.MedicationInput{
		Name:               r.Name,
		Dose:               r.Dose,
		Instructions:       r.Instructions,
		Frequency:          r.Frequency,
		TimeOfDay:          r.TimeOfDay,
		StartDate:          r.StartDate,
		EndDate:            r.EndDate,
		RefillReminderDays: r.RefillReminderDays,
		CurrentRefills:     r.CurrentRefills,
		Active:             r.Active,
	}
}

// CheckInRequest is the body for POST /checkins.
type CheckInRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// Validate validates the check-in request.
func (r CheckInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required,
			validation.In(models.CheckInOK, models.CheckInNotOK)),
	)
}

// MedicationListResponse wraps the medication collection.
type MedicationListResponse struct {
	Medications []models.Medication `json:"medications"`
}

// CheckInListResponse wraps the check-in collection.
type CheckInListResponse struct {
	CheckIns []models.CheckIn `json:"check_ins"`
}

// TodayResponse is the dashboard summary: today's check-in (if any) and
// the current streak.
type TodayResponse struct {
	CheckIn *models.CheckIn `json:"check_in"`
	Streak  int             `json:"streak"`
	Demo    bool            `json:"demo"`
}

// ActivityResponse wraps one page of day groups.
type ActivityResponse struct {
	Days       []activity.DayGroup `json:"days"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
}

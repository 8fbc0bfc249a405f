package health

import (
	"fmt"
	"time"

	"github.com/halver/careband/internal/dates"
	"github.com/halver/careband/internal/models"
)

// The demo dataset is a fixed persona used by the guided tour. It is never
// persisted, and demo mode suppresses every mutator, so the fixture stays
// byte-for-byte stable for the whole session.

const demoUserID = "demo-user"

func demoDay(daysBack int) time.Time {
	return dates.Midnight(time.Now()).AddDate(0, 0, -daysBack)
}

func demoDayAt(daysBack, hour int) time.Time {
	return demoDay(daysBack).Add(time.Duration(hour) * time.Hour)
}

func demoDate(value string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", value, time.Local)
	return t
}

func demoProfile() *models.UserProfile {
	return &models.UserProfile{
		ID:                demoUserID,
		Name:              "Margaret",
		Email:             "margaret@example.com",
		Phone:             "(555) 123-4567",
		Birthdate:         "1952-03-15",
		Timezone:          time.Local.String(),
		Avatar:            "/margaret-avatar.webp",
		MedicalConditions: "Type 2 Diabetes, Hypertension",
		EmergencyContact:  "Son: David (555) 987-6543",
		CreatedAt:         demoDate("2024-10-01"),
		UpdatedAt:         demoDate("2024-11-20"),
	}
}

func demoMedications() []models.Medication {
	return []models.Medication{
		{
			ID:                 "demo-med-1",
			UserID:             demoUserID,
			Name:               "Metformin",
			Dose:               "500mg",
			Instructions:       "Take with breakfast to reduce stomach upset",
			Frequency:          "Twice daily",
			TimeOfDay:          "Morning",
			StartDate:          demoDate("2024-06-15"),
			RefillReminderDays: 7,
			CurrentRefills:     2,
			Active:             true,
			CreatedAt:          demoDate("2024-06-15"),
			UpdatedAt:          demoDate("2024-11-01"),
		},
		{
			ID:                 "demo-med-2",
			UserID:             demoUserID,
			Name:               "Lisinopril",
			Dose:               "10mg",
			Instructions:       "Take in the morning for blood pressure",
			Frequency:          "Daily",
			TimeOfDay:          "Morning",
			StartDate:          demoDate("2024-03-10"),
			RefillReminderDays: 7,
			CurrentRefills:     1,
			Active:             true,
			CreatedAt:          demoDate("2024-03-10"),
			UpdatedAt:          demoDate("2024-10-15"),
		},
		{
			ID:                 "demo-med-3",
			UserID:             demoUserID,
			Name:               "Vitamin D3",
			Dose:               "2000 IU",
			Instructions:       "Take with a meal for better absorption",
			Frequency:          "Daily",
			TimeOfDay:          "With meals",
			StartDate:          demoDate("2024-01-05"),
			RefillReminderDays: 14,
			CurrentRefills:     3,
			Active:             true,
			CreatedAt:          demoDate("2024-01-05"),
			UpdatedAt:          demoDate("2024-09-20"),
		},
		{
			ID:                 "demo-med-4",
			UserID:             demoUserID,
			Name:               "Baby Aspirin",
			Dose:               "81mg",
			Instructions:       "Take with food to protect stomach",
			Frequency:          "Daily",
			TimeOfDay:          "Morning",
			StartDate:          demoDate("2024-04-20"),
			RefillReminderDays: 30,
			CurrentRefills:     5,
			Active:             true,
			CreatedAt:          demoDate("2024-04-20"),
			UpdatedAt:          demoDate("2024-08-10"),
		},
	}
}

// demoCheckIns covers the past 8 days, all "ok" and ending today, so the
// tour always shows an 8-day streak.
func demoCheckIns() []models.CheckIn {
	out := make([]models.CheckIn, 0, 8)
	for i := 0; i < 8; i++ {
		note := ""
		switch i {
		case 0:
			note = "Feeling good today!"
		case 3:
			note = "Had a great walk this morning"
		}
		out = append(out, models.CheckIn{
			ID:        fmt.Sprintf("demo-checkin-%d", i+1),
			UserID:    demoUserID,
			Date:      demoDay(i),
			Status:    models.CheckInOK,
			Note:      note,
			CreatedAt: demoDayAt(i, 9),
		})
	}
	return out
}

// demoMedicationLogs holds one taken entry per medication per day for the
// past 7 days, each at that medication's usual hour.
func demoMedicationLogs() []models.MedicationLog {
	series := []struct {
		medID string
		tag   string
		hour  int
	}{
		{"demo-med-1", "met", 8},
		{"demo-med-2", "lis", 8},
		{"demo-med-3", "vitd", 12},
		{"demo-med-4", "asp", 8},
	}
	out := make([]models.MedicationLog, 0, len(series)*7)
	for _, s := range series {
		for i := 0; i < 7; i++ {
			at := demoDayAt(i, s.hour)
			out = append(out, models.MedicationLog{
				ID:           fmt.Sprintf("demo-log-%s-%d", s.tag, i+1),
				MedicationID: s.medID,
				UserID:       demoUserID,
				TakenAt:      at,
				Status:       models.LogStatusTaken,
				CreatedAt:    at,
			})
		}
	}
	return out
}

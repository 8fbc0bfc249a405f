package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/halver/careband/internal/models"
)

// openBackends returns a fresh adapter per backend so every test runs
// against both SQLite and the file directory.
func openBackends(t *testing.T) map[string]Adapter {
	t.Helper()

	sqlite, err := OpenSQLiteAdapter(filepath.Join(t.TempDir(), "careband.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLiteAdapter: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	file, err := OpenFileAdapter(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenFileAdapter: %v", err)
	}
	t.Cleanup(func() { file.Close() })

	return map[string]Adapter{"sqlite": sqlite, "file": file}
}

func TestProfileRoundTrip(t *testing.T) {
	for name, adapter := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := adapter.GetProfile(ctx)
			if err != nil {
				t.Fatalf("GetProfile empty: %v", err)
			}
			if got != nil {
				t.Fatalf("GetProfile empty = %+v, want nil", got)
			}

			created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
			profile := &models.UserProfile{
				ID:        "p-1",
				Name:      "Margaret",
				Email:     "margaret@example.com",
				Timezone:  "America/Chicago",
				CreatedAt: created,
				UpdatedAt: created,
			}
			if err := adapter.SaveProfile(ctx, profile); err != nil {
				t.Fatalf("SaveProfile: %v", err)
			}

			got, err = adapter.GetProfile(ctx)
			if err != nil {
				t.Fatalf("GetProfile: %v", err)
			}
			if got == nil || got.Name != "Margaret" || got.Email != "margaret@example.com" {
				t.Fatalf("GetProfile = %+v", got)
			}
			if !got.CreatedAt.Equal(created) {
				t.Errorf("CreatedAt round-trip: got %v, want %v", got.CreatedAt, created)
			}

			if err := adapter.DeleteProfile(ctx); err != nil {
				t.Fatalf("DeleteProfile: %v", err)
			}
			got, err = adapter.GetProfile(ctx)
			if err != nil || got != nil {
				t.Fatalf("GetProfile after delete = (%+v, %v), want (nil, nil)", got, err)
			}
			// Deleting an already-absent profile is not an error.
			if err := adapter.DeleteProfile(ctx); err != nil {
				t.Fatalf("second DeleteProfile: %v", err)
			}
		})
	}
}

func TestMedicationCRUD(t *testing.T) {
	for name, adapter := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			meds, err := adapter.GetMedications(ctx)
			if err != nil {
				t.Fatalf("GetMedications empty: %v", err)
			}
			if meds == nil || len(meds) != 0 {
				t.Fatalf("GetMedications empty = %#v, want empty non-nil slice", meds)
			}

			a := models.Medication{ID: "m-1", UserID: models.LocalUserID, Name: "Metformin", Dose: "500mg"}
			b := models.Medication{ID: "m-2", UserID: models.LocalUserID, Name: "Lisinopril", Dose: "10mg"}
			if err := adapter.AddMedication(ctx, a); err != nil {
				t.Fatal(err)
			}
			if err := adapter.AddMedication(ctx, b); err != nil {
				t.Fatal(err)
			}

			meds, err = adapter.GetMedications(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(meds) != 2 || meds[0].ID != "m-1" || meds[1].ID != "m-2" {
				t.Fatalf("medications out of insertion order: %+v", meds)
			}

			one, err := adapter.GetMedication(ctx, "m-2")
			if err != nil {
				t.Fatal(err)
			}
			if one == nil || one.Name != "Lisinopril" {
				t.Fatalf("GetMedication m-2 = %+v", one)
			}
			missing, err := adapter.GetMedication(ctx, "nope")
			if err != nil || missing != nil {
				t.Fatalf("GetMedication unknown = (%+v, %v), want (nil, nil)", missing, err)
			}

			a.Dose = "1000mg"
			if err := adapter.UpdateMedication(ctx, a); err != nil {
				t.Fatal(err)
			}
			one, err = adapter.GetMedication(ctx, "m-1")
			if err != nil {
				t.Fatal(err)
			}
			if one.Dose != "1000mg" {
				t.Errorf("dose after update = %q", one.Dose)
			}

			// Unknown id update must not disturb the collection.
			if err := adapter.UpdateMedication(ctx, models.Medication{ID: "nope", Name: "Ghost"}); err != nil {
				t.Fatal(err)
			}
			meds, _ = adapter.GetMedications(ctx)
			if len(meds) != 2 {
				t.Fatalf("ghost update changed collection: %+v", meds)
			}

			if err := adapter.DeleteMedication(ctx, "m-1"); err != nil {
				t.Fatal(err)
			}
			meds, _ = adapter.GetMedications(ctx)
			if len(meds) != 1 || meds[0].ID != "m-2" {
				t.Fatalf("medications after delete = %+v", meds)
			}
			if err := adapter.DeleteMedication(ctx, "nope"); err != nil {
				t.Fatalf("deleting unknown id: %v", err)
			}
		})
	}
}

func TestMedicationLogAppendAndUpdate(t *testing.T) {
	for name, adapter := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			taken := time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)

			log := models.MedicationLog{
				ID: "l-1", MedicationID: "m-1", UserID: models.LocalUserID,
				TakenAt: taken, Status: models.LogStatusTaken, CreatedAt: taken,
			}
			if err := adapter.AddMedicationLog(ctx, log); err != nil {
				t.Fatal(err)
			}

			logs, err := adapter.GetMedicationLogs(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(logs) != 1 || !logs[0].TakenAt.Equal(taken) {
				t.Fatalf("logs = %+v", logs)
			}

			log.Status = models.LogStatusMissed
			if err := adapter.UpdateMedicationLog(ctx, log); err != nil {
				t.Fatal(err)
			}
			logs, _ = adapter.GetMedicationLogs(ctx)
			if logs[0].Status != models.LogStatusMissed {
				t.Errorf("status after update = %q", logs[0].Status)
			}

			if err := adapter.UpdateMedicationLog(ctx, models.MedicationLog{ID: "nope"}); err != nil {
				t.Fatalf("updating unknown log id: %v", err)
			}
		})
	}
}

func TestCheckInsAndTodayLookup(t *testing.T) {
	for name, adapter := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			today, err := adapter.TodayCheckIn(ctx)
			if err != nil || today != nil {
				t.Fatalf("TodayCheckIn empty = (%+v, %v), want (nil, nil)", today, err)
			}

			yesterday := models.CheckIn{
				ID: "c-1", UserID: models.LocalUserID,
				Date: time.Now().AddDate(0, 0, -1), Status: models.CheckInOK,
			}
			if err := adapter.AddCheckIn(ctx, yesterday); err != nil {
				t.Fatal(err)
			}
			today, err = adapter.TodayCheckIn(ctx)
			if err != nil || today != nil {
				t.Fatalf("TodayCheckIn with only yesterday = (%+v, %v), want (nil, nil)", today, err)
			}

			now := models.CheckIn{
				ID: "c-2", UserID: models.LocalUserID,
				Date: time.Now(), Status: models.CheckInNotOK, Note: "headache",
			}
			if err := adapter.AddCheckIn(ctx, now); err != nil {
				t.Fatal(err)
			}
			today, err = adapter.TodayCheckIn(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if today == nil || today.ID != "c-2" || today.Note != "headache" {
				t.Fatalf("TodayCheckIn = %+v", today)
			}

			all, err := adapter.GetCheckIns(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != 2 {
				t.Fatalf("check-ins = %+v", all)
			}
		})
	}
}

func TestMalformedDocumentDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	adapter, err := OpenFileAdapter(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { adapter.Close() })
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, KeyMedications+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, KeyProfile+".json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	meds, err := adapter.GetMedications(ctx)
	if err != nil {
		t.Fatalf("GetMedications over garbage: %v", err)
	}
	if len(meds) != 0 {
		t.Errorf("medications from garbage = %+v, want empty", meds)
	}

	// Wrong JSON shape degrades the same way.
	profile, err := adapter.GetProfile(ctx)
	if err != nil || profile != nil {
		t.Errorf("GetProfile over wrong shape = (%+v, %v), want (nil, nil)", profile, err)
	}

	// A write repairs the key.
	if err := adapter.AddMedication(ctx, models.Medication{ID: "m-1", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	meds, _ = adapter.GetMedications(ctx)
	if len(meds) != 1 {
		t.Errorf("medications after repair = %+v", meds)
	}
}

func TestFileKVAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := kv.Set(ctx, KeyCheckIns, []byte(`[]`)); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != KeyCheckIns+".json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("data dir = %v, want only %s.json", names, KeyCheckIns)
	}
}

func TestFileKVRoot(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(filepath.Join(dir, "nested", "data"))
	if err != nil {
		t.Fatal(err)
	}
	if kv.Root() != filepath.Join(dir, "nested", "data") {
		t.Errorf("Root() = %q", kv.Root())
	}
	if _, err := os.Stat(kv.Root()); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestSQLiteUpsertReplacesValue(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatal(err)
	}
	got, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = (%q, %v, %v)", got, ok, err)
	}
	if string(got) != "two" {
		t.Errorf("value = %q, want %q", got, "two")
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := kv.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get after delete = (ok=%v, err=%v), want absent", ok, err)
	}
}

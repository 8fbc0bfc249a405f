package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/halver/careband/internal/dates"
	"github.com/halver/careband/internal/models"
)

// KV is the byte-level key-value backend underneath the adapter. Get
// reports ok=false when the key is absent. Set replaces the whole value.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// kvAdapter implements Adapter over any KV backend. Each entity family is
// one JSON document; timestamps round-trip as RFC 3339 strings and are
// revived by the typed unmarshal, so no field-name allow-list is needed.
type kvAdapter struct {
	kv     KV
	logger *slog.Logger
}

// NewKV wraps a KV backend in the persistence adapter contract.
func NewKV(kv KV, logger *slog.Logger) Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &kvAdapter{kv: kv, logger: logger}
}

// load decodes the document under key into dest. Absent and malformed
// documents both leave dest untouched and report false: corrupt durable
// data degrades to "no data" instead of failing the read.
func (a *kvAdapter) load(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok, err := a.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		a.logger.Warn("storage: discarding malformed document",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}

func (a *kvAdapter) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return a.kv.Set(ctx, key, raw)
}

func (a *kvAdapter) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	ok, err := a.load(ctx, KeyProfile, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (a *kvAdapter) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	return a.save(ctx, KeyProfile, profile)
}

func (a *kvAdapter) DeleteProfile(ctx context.Context) error {
	return a.kv.Delete(ctx, KeyProfile)
}

func (a *kvAdapter) GetMedications(ctx context.Context) ([]models.Medication, error) {
	var meds []models.Medication
	if _, err := a.load(ctx, KeyMedications, &meds); err != nil {
		return nil, err
	}
	if meds == nil {
		meds = []models.Medication{}
	}
	return meds, nil
}

func (a *kvAdapter) GetMedication(ctx context.Context, id string) (*models.Medication, error) {
	meds, err := a.GetMedications(ctx)
	if err != nil {
		return nil, err
	}
	for i := range meds {
		if meds[i].ID == id {
			return &meds[i], nil
		}
	}
	return nil, nil
}

func (a *kvAdapter) AddMedication(ctx context.Context, med models.Medication) error {
	meds, err := a.GetMedications(ctx)
	if err != nil {
		return err
	}
	return a.save(ctx, KeyMedications, append(meds, med))
}

// UpdateMedication replaces the matching entry; an unknown id is a no-op.
func (a *kvAdapter) UpdateMedication(ctx context.Context, med models.Medication) error {
	meds, err := a.GetMedications(ctx)
	if err != nil {
		return err
	}
	for i := range meds {
		if meds[i].ID == med.ID {
			meds[i] = med
			return a.save(ctx, KeyMedications, meds)
		}
	}
	return nil
}

func (a *kvAdapter) DeleteMedication(ctx context.Context, id string) error {
	meds, err := a.GetMedications(ctx)
	if err != nil {
		return err
	}
	kept := meds[:0]
	for _, m := range meds {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return a.save(ctx, KeyMedications, kept)
}

func (a *kvAdapter) GetMedicationLogs(ctx context.Context) ([]models.MedicationLog, error) {
	var logs []models.MedicationLog
	if _, err := a.load(ctx, KeyMedicationLogs, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []models.MedicationLog{}
	}
	return logs, nil
}

func (a *kvAdapter) AddMedicationLog(ctx context.Context, log models.MedicationLog) error {
	logs, err := a.GetMedicationLogs(ctx)
	if err != nil {
		return err
	}
	return a.save(ctx, KeyMedicationLogs, append(logs, log))
}

func (a *kvAdapter) UpdateMedicationLog(ctx context.Context, log models.MedicationLog) error {
	logs, err := a.GetMedicationLogs(ctx)
	if err != nil {
		return err
	}
	for i := range logs {
		if logs[i].ID == log.ID {
			logs[i] = log
			return a.save(ctx, KeyMedicationLogs, logs)
		}
	}
	return nil
}

func (a *kvAdapter) GetCheckIns(ctx context.Context) ([]models.CheckIn, error) {
	var checkIns []models.CheckIn
	if _, err := a.load(ctx, KeyCheckIns, &checkIns); err != nil {
		return nil, err
	}
	if checkIns == nil {
		checkIns = []models.CheckIn{}
	}
	return checkIns, nil
}

func (a *kvAdapter) AddCheckIn(ctx context.Context, checkIn models.CheckIn) error {
	checkIns, err := a.GetCheckIns(ctx)
	if err != nil {
		return err
	}
	return a.save(ctx, KeyCheckIns, append(checkIns, checkIn))
}

func (a *kvAdapter) TodayCheckIn(ctx context.Context) (*models.CheckIn, error) {
	checkIns, err := a.GetCheckIns(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range checkIns {
		if dates.SameDay(checkIns[i].Date, now) {
			return &checkIns[i], nil
		}
	}
	return nil, nil
}

func (a *kvAdapter) Close() error {
	return a.kv.Close()
}

// Package health implements the in-memory health store: the single source
// of truth for profile, medications, medication logs, and check-ins during
// a session. Every mutation writes through the persistence adapter before
// the in-memory state changes, so memory never runs ahead of disk.
package health

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/halver/careband/internal/apperr"
	"github.com/halver/careband/internal/dates"
	"github.com/halver/careband/internal/models"
	"github.com/halver/careband/internal/storage"
)

// Event kinds emitted after successful mutations.
const (
	EventProfileSaved      = "profile.saved"
	EventProfileDeleted    = "profile.deleted"
	EventMedicationAdded   = "medication.added"
	EventMedicationUpdated = "medication.updated"
	EventMedicationDeleted = "medication.deleted"
	EventMedicationLogged  = "medication.logged"
	EventCheckInCreated    = "checkin.created"
	EventReloaded          = "store.reloaded"
)

// EventFunc is called after each successful mutation with the event kind
// and the affected entity id (empty for whole-store events).
type EventFunc func(kind, id string)

// ProfileInput carries the user-editable profile fields for SaveProfile.
type ProfileInput struct {
	Name              string
	Email             string
	Phone             string
	Birthdate         string
	Timezone          string
	Avatar            string
	MedicalConditions string
	EmergencyContact  string
}

// MedicationInput carries the user-supplied fields for AddMedication.
// RefillReminderDays is a pointer so "not supplied" is distinct from zero.
type MedicationInput struct {
	Name               string
	Dose               string
	Instructions       string
	Frequency          string
	TimeOfDay          string
	StartDate          time.Time
	EndDate            *time.Time
	RefillReminderDays *int
	CurrentRefills     int
	Active             bool
}

// Store owns all domain collections for a session. Construct one per
// process (or per test) with NewStore; there is no package-level instance.
//
// Unlike the adapter layer, the store is safe for concurrent use: mutators
// hold an exclusive lock across the write-through so overlapping mutations
// serialize instead of reading stale state, and readers get copy-on-write
// snapshots they may keep without observing later mutations.
type Store struct {
	adapter storage.Adapter
	notify  EventFunc

	mu             sync.RWMutex
	profile        *models.UserProfile
	medications    []models.Medication
	medicationLogs []models.MedicationLog
	checkIns       []models.CheckIn
	loading        bool
	demo           bool
}

// NewStore creates a store over the given adapter. notify may be nil.
// The store reports Loading until Load or LoadDemo completes.
func NewStore(adapter storage.Adapter, notify EventFunc) *Store {
	return &Store{adapter: adapter, notify: notify, loading: true}
}

func (s *Store) emit(kind, id string) {
	if s.notify != nil {
		s.notify(kind, id)
	}
}

// Load fetches all four collections from the adapter concurrently and
// swaps them in together: readers never observe a partially loaded store.
func (s *Store) Load(ctx context.Context) error {
	var (
		profile  *models.UserProfile
		meds     []models.Medication
		logs     []models.MedicationLog
		checkIns []models.CheckIn
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = s.adapter.GetProfile(gCtx)
		return err
	})
	g.Go(func() (err error) {
		meds, err = s.adapter.GetMedications(gCtx)
		return err
	})
	g.Go(func() (err error) {
		logs, err = s.adapter.GetMedicationLogs(gCtx)
		return err
	})
	g.Go(func() (err error) {
		checkIns, err = s.adapter.GetCheckIns(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	s.medications = meds
	s.medicationLogs = logs
	s.checkIns = checkIns
	s.loading = false
	s.demo = false
	return nil
}

// Reload re-reads durable state, e.g. after an external edit to the data
// files. No-op in demo mode.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.RLock()
	demo := s.demo
	s.mu.RUnlock()
	if demo {
		return nil
	}
	if err := s.Load(ctx); err != nil {
		return err
	}
	s.emit(EventReloaded, "")
	return nil
}

// LoadDemo replaces all collections with the fixed demo dataset. Nothing
// is persisted, and every subsequent mutator is a no-op.
func (s *Store) LoadDemo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = demoProfile()
	s.medications = demoMedications()
	s.medicationLogs = demoMedicationLogs()
	s.checkIns = demoCheckIns()
	s.loading = false
	s.demo = true
}

// SaveProfile creates the profile on first save and replaces the editable
// fields thereafter, preserving the identifier and creation timestamp.
// Demo mode: no-op, both results nil.
func (s *Store) SaveProfile(ctx context.Context, input ProfileInput) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return nil, nil
	}

	now := time.Now()
	var profile models.UserProfile
	if s.profile != nil {
		profile = *s.profile
		profile.UpdatedAt = now
	} else {
		profile = models.UserProfile{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	profile.Name = input.Name
	profile.Email = input.Email
	profile.Phone = input.Phone
	profile.Birthdate = input.Birthdate
	profile.Timezone = input.Timezone
	profile.Avatar = input.Avatar
	profile.MedicalConditions = input.MedicalConditions
	profile.EmergencyContact = input.EmergencyContact

	if err := s.adapter.SaveProfile(ctx, &profile); err != nil {
		return nil, err
	}
	s.profile = &profile
	s.emit(EventProfileSaved, profile.ID)
	out := profile
	return &out, nil
}

// DeleteProfile removes the profile. Demo mode: no-op.
func (s *Store) DeleteProfile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return nil
	}
	if err := s.adapter.DeleteProfile(ctx); err != nil {
		return err
	}
	s.profile = nil
	s.emit(EventProfileDeleted, "")
	return nil
}

// AddMedication appends a new medication. RefillReminderDays defaults to 7
// when not supplied. Demo mode: no-op, both results nil.
func (s *Store) AddMedication(ctx context.Context, input MedicationInput) (*models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return nil, nil
	}

	now := time.Now()
	reminderDays := 7
	if input.RefillReminderDays != nil {
		reminderDays = *input.RefillReminderDays
	}
	med := models.Medication{
		ID:                 uuid.NewString(),
		UserID:             models.LocalUserID,
		Name:               input.Name,
		Dose:               input.Dose,
		Instructions:       input.Instructions,
		Frequency:          input.Frequency,
		TimeOfDay:          input.TimeOfDay,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		RefillReminderDays: reminderDays,
		CurrentRefills:     input.CurrentRefills,
		Active:             input.Active,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.adapter.AddMedication(ctx, med); err != nil {
		return nil, err
	}
	// Append, not prepend: insertion order is the display order.
	s.medications = append(copyMedications(s.medications), med)
	s.emit(EventMedicationAdded, med.ID)
	return &med, nil
}

// UpdateMedication persists the given record with a fresh update timestamp
// and replaces the in-memory entry. An unknown id is a silent no-op.
func (s *Store) UpdateMedication(ctx context.Context, med models.Medication) (*models.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return nil, nil
	}

	med.UpdatedAt = time.Now()
	if err := s.adapter.UpdateMedication(ctx, med); err != nil {
		return nil, err
	}
	next := copyMedications(s.medications)
	for i := range next {
		if next[i].ID == med.ID {
			next[i] = med
		}
	}
	s.medications = next
	s.emit(EventMedicationUpdated, med.ID)
	return &med, nil
}

// DeleteMedication removes the medication. Its logs are kept: the
// reference from log to medication is deliberately weak so history still
// shows administrations of medications no longer present.
func (s *Store) DeleteMedication(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return nil
	}

	if err := s.adapter.DeleteMedication(ctx, id); err != nil {
		return err
	}
	next := make([]models.Medication, 0, len(s.medications))
	for _, m := range s.medications {
		if m.ID != id {
			next = append(next, m)
		}
	}
	s.medications = next
	s.emit(EventMedicationDeleted, id)
	return nil
}

// LogMedicationTaken appends a "taken" log for the medication at now.
func (s *Store) LogMedicationTaken(ctx context.Context, medicationID string) (*models.MedicationLog, error) {
	return s.logMedication(ctx, medicationID, models.LogStatusTaken)
}

// LogMedicationSnoozed appends a "snoozed" log for the medication at now.
func (s *Store) LogMedicationSnoozed(ctx context.Context, medicationID string) (*models.MedicationLog, error) {
	return s.logMedication(ctx, medicationID, models.LogStatusSnoozed)
}

func (s *Store) logMedication(ctx context.Context, medicationID, status string) (*models.MedicationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return nil, nil
	}

	now := time.Now()
	log := models.MedicationLog{
		ID:           uuid.NewString(),
		MedicationID: medicationID,
		UserID:       models.LocalUserID,
		TakenAt:      now,
		Status:       status,
		CreatedAt:    now,
	}
	if err := s.adapter.AddMedicationLog(ctx, log); err != nil {
		return nil, err
	}
	s.medicationLogs = append(copyLogs(s.medicationLogs), log)
	s.emit(EventMedicationLogged, log.ID)
	return &log, nil
}

// CheckIn records today's wellness report. At most one check-in may exist
// per local calendar day; a second attempt returns apperr.ErrAlreadyExists.
// Demo mode: no-op, both results nil.
func (s *Store) CheckIn(ctx context.Context, status string, note string) (*models.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.demo {
		return nil, nil
	}

	now := time.Now()
	if s.todayCheckInLocked(now) != nil {
		return nil, apperr.ErrAlreadyExists
	}

	checkIn := models.CheckIn{
		ID:        uuid.NewString(),
		UserID:    models.LocalUserID,
		Date:      now,
		Status:    status,
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
	}
	if err := s.adapter.AddCheckIn(ctx, checkIn); err != nil {
		return nil, err
	}
	s.checkIns = append(copyCheckIns(s.checkIns), checkIn)
	s.emit(EventCheckInCreated, checkIn.ID)
	return &checkIn, nil
}

// TodayCheckIn returns the check-in whose date falls on today's local
// calendar day, or nil. Pure lookup over in-memory state.
func (s *Store) TodayCheckIn() *models.CheckIn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.todayCheckInLocked(time.Now()); c != nil {
		out := *c
		return &out
	}
	return nil
}

func (s *Store) todayCheckInLocked(now time.Time) *models.CheckIn {
	for i := range s.checkIns {
		if dates.SameDay(s.checkIns[i].Date, now) {
			return &s.checkIns[i]
		}
	}
	return nil
}

// Streak returns the number of consecutive local calendar days, counting
// backward from today, with an "ok" check-in. A "not-ok" day counts as a
// gap exactly like a missing day, so it terminates the walk.
func (s *Store) Streak() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ok := make([]models.CheckIn, 0, len(s.checkIns))
	for _, c := range s.checkIns {
		if c.Status == models.CheckInOK {
			ok = append(ok, c)
		}
	}
	if len(ok) == 0 {
		return 0
	}
	sort.Slice(ok, func(i, j int) bool { return ok[i].Date.After(ok[j].Date) })

	streak := 0
	today := dates.Midnight(time.Now())
	for i, c := range ok {
		expected := today.AddDate(0, 0, -i)
		if !dates.Midnight(c.Date).Equal(expected) {
			break
		}
		streak++
	}
	return streak
}

// Profile returns a copy of the profile, or nil when absent.
func (s *Store) Profile() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	out := *s.profile
	return &out
}

// Medications returns a snapshot of the medication list in insertion order.
func (s *Store) Medications() []models.Medication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMedications(s.medications)
}

// MedicationLogs returns a snapshot of the medication log list.
func (s *Store) MedicationLogs() []models.MedicationLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyLogs(s.medicationLogs)
}

// CheckIns returns a snapshot of the check-in list.
func (s *Store) CheckIns() []models.CheckIn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCheckIns(s.checkIns)
}

// Loading reports whether the store is still waiting for Load or LoadDemo.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Demo reports whether the store holds the non-persisted demo dataset.
func (s *Store) Demo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.demo
}

func copyMedications(in []models.Medication) []models.Medication {
	out := make([]models.Medication, len(in))
	copy(out, in)
	return out
}

func copyLogs(in []models.MedicationLog) []models.MedicationLog {
	out := make([]models.MedicationLog, len(in))
	copy(out, in)
	return out
}

func copyCheckIns(in []models.CheckIn) []models.CheckIn {
	out := make([]models.CheckIn, len(in))
	copy(out, in)
	return out
}

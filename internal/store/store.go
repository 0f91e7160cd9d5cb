package store

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medminder/internal/model"
)

// EventType identifies what kind of mutation a change event describes.
type EventType string

const (
	EventAdded         EventType = "medication_added"
	EventStatusUpdated EventType = "status_updated"
)

// Event is broadcast to subscribers after every store mutation so dependent
// views can refresh.
type Event struct {
	Type       EventType        `json:"type"`
	Medication model.Medication `json:"medication"`
}

// Store owns the session's medication records. All reads and writes go
// through it; nothing else holds a mutable copy.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// New creates a Store backed by the given database.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		logger: logger,
		subs:   make(map[int]func(Event)),
	}
}

// Subscribe registers a callback invoked after every mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) broadcast(ev Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Add assigns the next id (max existing + 1, or 1 when empty), marks the
// record PENDING and appends it. Input validation happens upstream in the
// workflow before this is called.
func (s *Store) Add(input model.NewMedication) (model.Medication, error) {
	med := model.Medication{
		Name:      input.Name,
		Dosage:    input.Dosage,
		Time:      input.Time,
		Status:    model.StatusPending,
		PillImage: input.PillImage,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var maxID uint
		row := tx.Model(&model.Medication{}).Select("COALESCE(MAX(id), 0)").Row()
		if err := row.Scan(&maxID); err != nil {
			return fmt.Errorf("scan max id: %w", err)
		}
		med.ID = maxID + 1
		return tx.Create(&med).Error
	})
	if err != nil {
		return model.Medication{}, fmt.Errorf("add medication: %w", err)
	}

	s.logger.Info("medication added",
		zap.Uint("id", med.ID),
		zap.String("name", med.Name),
		zap.String("time", med.Time))
	s.broadcast(Event{Type: EventAdded, Medication: med})
	return med, nil
}

// UpdateDoseStatus sets the status of the record with the given id. An
// unknown id is silently ignored. Transitions are not guarded: a TAKEN dose
// can still be overwritten to SKIPPED by an explicit user action.
func (s *Store) UpdateDoseStatus(id uint, status model.DoseStatus) error {
	res := s.db.Model(&model.Medication{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update dose status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Debug("dose status update for unknown id ignored", zap.Uint("id", id))
		return nil
	}

	var med model.Medication
	if err := s.db.First(&med, id).Error; err != nil {
		return fmt.Errorf("reload medication %d: %w", id, err)
	}
	s.broadcast(Event{Type: EventStatusUpdated, Medication: med})
	return nil
}

// List returns every medication in insertion order.
func (s *Store) List() ([]model.Medication, error) {
	var meds []model.Medication
	if err := s.db.Order("id ASC").Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return meds, nil
}

// Schedule returns the daily list grouped by time category for display.
func (s *Store) Schedule() ([]model.CategoryGroup, error) {
	meds, err := s.List()
	if err != nil {
		return nil, err
	}
	return model.GroupSchedule(meds), nil
}

// DueAt returns the PENDING medications scheduled exactly at the given
// HH:MM wall-clock time.
func (s *Store) DueAt(timeOfDay string) ([]model.Medication, error) {
	var meds []model.Medication
	err := s.db.
		Where("status = ? AND time = ?", model.StatusPending, timeOfDay).
		Order("id ASC").
		Find(&meds).Error
	if err != nil {
		return nil, fmt.Errorf("due medications at %s: %w", timeOfDay, err)
	}
	return meds, nil
}

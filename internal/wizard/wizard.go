package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medminder/internal/llm"
	"medminder/internal/model"
	"medminder/internal/store"
)

// Step is the wizard's current position.
type Step int

const (
	StepDetails Step = 1 // name and dosage
	StepTime    Step = 2 // scheduled time
	StepPhoto   Step = 3 // optional photo and identification
)

var (
	ErrSessionNotFound = errors.New("wizard: session not found")
	ErrWrongStep       = errors.New("wizard: action not allowed at this step")
	ErrNoPhoto         = errors.New("wizard: no photo attached")
	ErrIdentifyBusy    = errors.New("wizard: identification already in progress")
	ErrCaptureInactive = errors.New("wizard: capture mode is not active")
)

// ValidationError reports a blocked forward transition.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wizard: %s is required", e.Field)
}

// Photo is the single retained pill image. Data is raw base64 without a
// data-URL prefix.
type Photo struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// Session is one in-progress add-medication workflow.
type Session struct {
	ID             string    `json:"id"`
	Step           Step      `json:"step"`
	Name           string    `json:"name"`
	Dosage         string    `json:"dosage"`
	Time           string    `json:"time"`
	Photo          *Photo    `json:"photo,omitempty"`
	CaptureActive  bool      `json:"captureActive"`
	Identifying    bool      `json:"identifying"`
	Identification string    `json:"identification,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type detailsInput struct {
	Name   string `validate:"required"`
	Dosage string `validate:"required"`
}

type timeInput struct {
	Time string `validate:"required"`
}

// Manager owns all wizard sessions. Sessions never touch the medication
// store until submit; cancelling at any step leaves the store untouched.
type Manager struct {
	store    *store.Store
	gateway  *llm.Gateway
	validate *validator.Validate
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager(st *store.Store, gateway *llm.Gateway, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:    st,
		gateway:  gateway,
		validate: validator.New(),
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Start opens a new session at the details step.
func (m *Manager) Start() Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Step:      StepDetails,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return *sess
}

// Get returns a snapshot of the session.
func (m *Manager) Get(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *sess, nil
}

// SetDetails records name and dosage and advances to the time step. Both
// fields must be non-blank after trimming, otherwise the transition is
// blocked.
func (m *Manager) SetDetails(id, name, dosage string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if sess.Step != StepDetails {
		return Session{}, ErrWrongStep
	}

	name = strings.TrimSpace(name)
	dosage = strings.TrimSpace(dosage)
	if err := m.validate.Struct(detailsInput{Name: name, Dosage: dosage}); err != nil {
		return Session{}, validationError(err)
	}

	sess.Name = name
	sess.Dosage = dosage
	sess.Step = StepTime
	return *sess, nil
}

// SetTime records the scheduled time and advances to the photo step.
func (m *Manager) SetTime(id, timeOfDay string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if sess.Step != StepTime {
		return Session{}, ErrWrongStep
	}

	timeOfDay = strings.TrimSpace(timeOfDay)
	if err := m.validate.Struct(timeInput{Time: timeOfDay}); err != nil {
		return Session{}, validationError(err)
	}

	sess.Time = timeOfDay
	sess.Step = StepPhoto
	return *sess, nil
}

// Back moves one step backwards. Collected values are kept.
func (m *Manager) Back(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	switch sess.Step {
	case StepTime:
		sess.Step = StepDetails
	case StepPhoto:
		sess.exitCapture()
		sess.Step = StepTime
	default:
		return Session{}, ErrWrongStep
	}
	return *sess, nil
}

// AttachPhoto stores an uploaded pill photo, replacing any previous one. A
// new photo invalidates the previous identification text.
func (m *Manager) AttachPhoto(id, data, mimeType string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if sess.Step != StepPhoto {
		return Session{}, ErrWrongStep
	}
	if strings.TrimSpace(data) == "" {
		return Session{}, ErrNoPhoto
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	sess.Photo = &Photo{Data: data, MimeType: mimeType}
	sess.Identification = ""
	return *sess, nil
}

// StartCapture enters the live camera sub-mode.
func (m *Manager) StartCapture(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if sess.Step != StepPhoto {
		return Session{}, ErrWrongStep
	}
	sess.CaptureActive = true
	return *sess, nil
}

// CaptureFrame stores a still frame taken from the live feed and leaves the
// capture sub-mode, releasing the camera.
func (m *Manager) CaptureFrame(id, jpegData string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if !sess.CaptureActive {
		return Session{}, ErrCaptureInactive
	}
	if strings.TrimSpace(jpegData) == "" {
		return Session{}, ErrNoPhoto
	}

	sess.Photo = &Photo{Data: jpegData, MimeType: "image/jpeg"}
	sess.Identification = ""
	sess.exitCapture()
	return *sess, nil
}

// StopCapture leaves the camera sub-mode without taking a photo.
func (m *Manager) StopCapture(id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	sess.exitCapture()
	return *sess, nil
}

// Escape handles the two-level close: the first escape leaves an active
// capture sub-mode, the next one closes the whole session. It reports
// whether the session was closed.
func (m *Manager) Escape(id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return false, ErrSessionNotFound
	}
	if sess.CaptureActive {
		sess.exitCapture()
		return false, nil
	}
	delete(m.sessions, id)
	return true, nil
}

// Identify asks the AI gateway to describe the attached photo. Only one
// identification may be in flight per session; the result is kept on the
// session unless it was closed while the call was pending.
func (m *Manager) Identify(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return "", ErrSessionNotFound
	}
	if sess.Step != StepPhoto {
		m.mu.Unlock()
		return "", ErrWrongStep
	}
	if sess.Photo == nil {
		m.mu.Unlock()
		return "", ErrNoPhoto
	}
	if sess.Identifying {
		m.mu.Unlock()
		return "", ErrIdentifyBusy
	}
	sess.Identifying = true
	photo := *sess.Photo
	m.mu.Unlock()

	// The gateway never fails; failures come back as its fallback text.
	result := m.gateway.IdentifyPill(ctx, photo.Data, photo.MimeType)

	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok = m.sessions[id]
	if !ok {
		// Session closed while the call was pending; drop the stale result.
		return "", ErrSessionNotFound
	}
	sess.Identifying = false
	sess.Identification = result
	return result, nil
}

// Submit finalises the workflow from the photo step, appends the new record
// to the store and closes the session. The photo is optional.
func (m *Manager) Submit(id string) (model.Medication, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return model.Medication{}, ErrSessionNotFound
	}
	if sess.Step != StepPhoto {
		m.mu.Unlock()
		return model.Medication{}, ErrWrongStep
	}

	input := model.NewMedication{
		Name:   sess.Name,
		Dosage: sess.Dosage,
		Time:   sess.Time,
	}
	if sess.Photo != nil {
		input.PillImage = fmt.Sprintf("data:%s;base64,%s", sess.Photo.MimeType, sess.Photo.Data)
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	med, err := m.store.Add(input)
	if err != nil {
		return model.Medication{}, err
	}
	m.logger.Info("wizard submitted", zap.String("session", id), zap.Uint("medicationId", med.ID))
	return med, nil
}

func (s *Session) exitCapture() {
	// Clearing the flag is the server-side release of the capture mode; the
	// client stops its media tracks when it sees captureActive go false.
	s.CaptureActive = false
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: strings.ToLower(fieldErrs[0].Field())}
	}
	return err
}

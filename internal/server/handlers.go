package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"medminder/internal/model"
	"medminder/internal/notify"
	"medminder/internal/wizard"
)

const maxPhotoBytes = 8 << 20

func (s *Server) listMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := s.opts.Store.List()
	if err != nil {
		s.serverError(w, "list medications", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"medications": meds})
}

func (s *Server) schedule(w http.ResponseWriter, r *http.Request) {
	groups, err := s.opts.Store.Schedule()
	if err != nil {
		s.serverError(w, "schedule", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"schedule": groups})
}

type statusUpdateRequest struct {
	Status model.DoseStatus `json:"status"`
}

func (s *Server) updateDoseStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		s.badRequest(w, "invalid medication id")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		s.badRequest(w, "unknown dose status")
		return
	}

	// An unknown id is a silent no-op, so this always succeeds.
	if err := s.opts.Store.UpdateDoseStatus(uint(id), req.Status); err != nil {
		s.serverError(w, "update dose status", err)
		return
	}
	s.opts.Metrics.RecordDoseUpdate(string(req.Status))
	w.WriteHeader(http.StatusNoContent)
}

type infoRequest struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

func (s *Server) medicationInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.badRequest(w, "name is required")
		return
	}

	info := s.opts.Gateway.MedicationInfo(r.Context(), req.Name, req.Dosage)
	s.respondJSON(w, http.StatusOK, map[string]string{"info": info})
}

func (s *Server) wizardStart(w http.ResponseWriter, r *http.Request) {
	sess := s.opts.Wizard.Start()
	s.respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) wizardGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.opts.Wizard.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

type wizardDetailsRequest struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

func (s *Server) wizardDetails(w http.ResponseWriter, r *http.Request) {
	var req wizardDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	sess, err := s.opts.Wizard.SetDetails(chi.URLParam(r, "sessionID"), req.Name, req.Dosage)
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

type wizardTimeRequest struct {
	Time string `json:"time"`
}

func (s *Server) wizardTime(w http.ResponseWriter, r *http.Request) {
	var req wizardTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	sess, err := s.opts.Wizard.SetTime(chi.URLParam(r, "sessionID"), req.Time)
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

func (s *Server) wizardBack(w http.ResponseWriter, r *http.Request) {
	sess, err := s.opts.Wizard.Back(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

type wizardPhotoRequest struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// wizardPhoto accepts either a JSON body with base64 data or a multipart
// file upload under the "photo" field.
func (s *Server) wizardPhoto(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req wizardPhotoRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		data, mimeType, err := readPhotoUpload(r)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		req = wizardPhotoRequest{Data: data, MimeType: mimeType}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	sess, err := s.opts.Wizard.AttachPhoto(sessionID, req.Data, req.MimeType)
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

func readPhotoUpload(r *http.Request) (string, string, error) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		return "", "", errors.New("invalid multipart form")
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		return "", "", errors.New("photo file is required")
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes))
	if err != nil {
		return "", "", errors.New("could not read photo")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(raw)
	}
	return base64.StdEncoding.EncodeToString(raw), mimeType, nil
}

func (s *Server) wizardStartCapture(w http.ResponseWriter, r *http.Request) {
	sess, err := s.opts.Wizard.StartCapture(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

type captureFrameRequest struct {
	Data string `json:"data"`
}

func (s *Server) wizardCaptureFrame(w http.ResponseWriter, r *http.Request) {
	var req captureFrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	sess, err := s.opts.Wizard.CaptureFrame(chi.URLParam(r, "sessionID"), req.Data)
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

func (s *Server) wizardStopCapture(w http.ResponseWriter, r *http.Request) {
	sess, err := s.opts.Wizard.StopCapture(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, sess)
}

func (s *Server) wizardIdentify(w http.ResponseWriter, r *http.Request) {
	result, err := s.opts.Wizard.Identify(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"identification": result})
}

func (s *Server) wizardSubmit(w http.ResponseWriter, r *http.Request) {
	med, err := s.opts.Wizard.Submit(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, med)
}

func (s *Server) wizardEscape(w http.ResponseWriter, r *http.Request) {
	closed, err := s.opts.Wizard.Escape(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.wizardError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"closed": closed})
}

type telContact struct {
	Label  string `json:"label"`
	Number string `json:"number"`
	Tel    string `json:"tel"`
}

func (s *Server) emergencyContacts(w http.ResponseWriter, r *http.Request) {
	contacts := []telContact{
		{Label: "Emergency Services", Number: s.opts.EmergencyNumber, Tel: "tel:" + s.opts.EmergencyNumber},
	}
	if s.opts.CaregiverNumber != "" {
		contacts = append(contacts, telContact{
			Label:  "Caregiver",
			Number: s.opts.CaregiverNumber,
			Tel:    "tel:" + s.opts.CaregiverNumber,
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

type emergencyAlertRequest struct {
	Message string `json:"message"`
}

func (s *Server) emergencyAlert(w http.ResponseWriter, r *http.Request) {
	var req emergencyAlertRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = "Emergency button pressed. Please check in as soon as possible."
	}

	delivered, err := s.opts.Notifier.AlertCaregiver(message)
	if err != nil {
		s.logger.Error("caregiver alert failed", zap.Error(err))
		s.respondJSON(w, http.StatusBadGateway, map[string]any{"delivered": false})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"delivered": delivered})
}

func (s *Server) notificationTone(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(notify.Tone())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", zap.Error(err))
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, zap.Error(err))
	s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (s *Server) wizardError(w http.ResponseWriter, err error) {
	var vErr *wizard.ValidationError
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		s.respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, wizard.ErrIdentifyBusy),
		errors.Is(err, wizard.ErrCaptureInactive):
		s.respondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &vErr), errors.Is(err, wizard.ErrNoPhoto):
		s.respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		s.serverError(w, "wizard", err)
	}
}

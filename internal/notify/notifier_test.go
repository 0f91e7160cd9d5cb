package notify

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"medminder/internal/model"
	"medminder/internal/store"
)

func TestNotifyDoseReachesConnectedClient(t *testing.T) {
	hub, conn := newTestHub(t)
	notifier := NewNotifier(hub, nil, "", zap.NewNop())

	notifier.NotifyDose(NewDoseAlert(model.Medication{
		ID:     1,
		Name:   "Lisinopril",
		Dosage: "10mg",
		Time:   "08:00",
		Status: model.StatusPending,
	}))

	envType, payload := readEnvelope(t, conn)
	if envType != "dose_reminder" {
		t.Fatalf("envelope type = %q, want dose_reminder", envType)
	}

	var alert DoseAlert
	if err := json.Unmarshal(payload, &alert); err != nil {
		t.Fatalf("decode alert: %v", err)
	}
	if alert.MedicationID != 1 {
		t.Fatalf("medication id = %d, want 1", alert.MedicationID)
	}
	if alert.Title != "Time for your Lisinopril" {
		t.Fatalf("title = %q", alert.Title)
	}
	if alert.Body != "It's time to take your 10mg dose." {
		t.Fatalf("body = %q", alert.Body)
	}
	if alert.Icon != DefaultIcon {
		t.Fatalf("icon = %q, want %q", alert.Icon, DefaultIcon)
	}
	if !alert.PlaySound {
		t.Fatal("alert should request the sound cue")
	}
}

func TestNotifyDoseWithoutChannelsIsLogOnly(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	notifier := NewNotifier(nil, nil, "", zap.New(core))

	notifier.NotifyDose(NewDoseAlert(model.Medication{ID: 7, Name: "Metformin", Dosage: "500mg"}))

	entries := logs.FilterMessage("dose reminder (log only, no delivery channel)").All()
	if len(entries) != 1 {
		t.Fatalf("log-only entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["medicationId"] != uint64(7) {
		t.Fatalf("logged medicationId = %v, want 7", fields["medicationId"])
	}
}

func TestNotifyChangeCarriesStatusLabel(t *testing.T) {
	hub, conn := newTestHub(t)
	notifier := NewNotifier(hub, nil, "", zap.NewNop())

	notifier.NotifyChange(store.Event{
		Type: store.EventStatusUpdated,
		Medication: model.Medication{
			ID:     2,
			Name:   "Metformin",
			Dosage: "500mg",
			Time:   "13:00",
			Status: model.StatusTaken,
		},
	})

	envType, payload := readEnvelope(t, conn)
	if envType != string(store.EventStatusUpdated) {
		t.Fatalf("envelope type = %q, want %q", envType, store.EventStatusUpdated)
	}

	var change struct {
		ID          uint             `json:"id"`
		Status      model.DoseStatus `json:"status"`
		StatusLabel string           `json:"statusLabel"`
	}
	if err := json.Unmarshal(payload, &change); err != nil {
		t.Fatalf("decode change: %v", err)
	}
	if change.ID != 2 || change.Status != model.StatusTaken {
		t.Fatalf("change = %+v", change)
	}
	if change.StatusLabel != "Taken" {
		t.Fatalf("status label = %q, want Taken", change.StatusLabel)
	}
}

func TestAlertCaregiverWithoutSMSChannel(t *testing.T) {
	notifier := NewNotifier(nil, nil, "", zap.NewNop())

	delivered, err := notifier.AlertCaregiver("please check in")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered {
		t.Fatal("alert should report undelivered without an SMS channel")
	}
}

package notify

import (
	"fmt"

	"go.uber.org/zap"

	"medminder/internal/model"
	"medminder/internal/store"
	"medminder/internal/twilio"
)

// DefaultIcon is shown when a medication has no pill photo.
const DefaultIcon = "/favicon.ico"

// DoseAlert is the payload of a dose reminder notification.
type DoseAlert struct {
	MedicationID uint   `json:"medicationId"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	Icon         string `json:"icon"`
	PlaySound    bool   `json:"playSound"`
}

// NewDoseAlert builds the reminder payload for a medication.
func NewDoseAlert(med model.Medication) DoseAlert {
	icon := med.PillImage
	if icon == "" {
		icon = DefaultIcon
	}
	return DoseAlert{
		MedicationID: med.ID,
		Title:        fmt.Sprintf("Time for your %s", med.Name),
		Body:         fmt.Sprintf("It's time to take your %s dose.", med.Dosage),
		Icon:         icon,
		PlaySound:    true,
	}
}

type wsEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier delivers reminders and store-change events. Browser push over the
// websocket hub is the primary channel and caregiver SMS is an optional
// second one. When neither channel can deliver, the reminder is only logged.
type Notifier struct {
	hub       *Hub
	sms       *twilio.Client
	caregiver string
	logger    *zap.Logger
}

// NewNotifier wires the delivery channels. sms may be nil.
func NewNotifier(hub *Hub, sms *twilio.Client, caregiver string, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{hub: hub, sms: sms, caregiver: caregiver, logger: logger}
}

// NotifyDose pushes a dose reminder to every available channel.
func (n *Notifier) NotifyDose(alert DoseAlert) {
	delivered := 0
	if n.hub != nil {
		delivered += n.hub.Broadcast(wsEnvelope{Type: "dose_reminder", Payload: alert})
	}

	if n.sms != nil && n.caregiver != "" {
		if err := n.sms.SendSMS(n.caregiver, alert.Title+": "+alert.Body); err != nil {
			n.logger.Warn("caregiver SMS failed", zap.Error(err))
		} else {
			delivered++
		}
	}

	if delivered == 0 {
		n.logger.Info("dose reminder (log only, no delivery channel)",
			zap.Uint("medicationId", alert.MedicationID),
			zap.String("title", alert.Title))
	}
}

// changeEvent is the websocket payload for a store mutation. StatusLabel is
// the wording the client renders next to the dose.
type changeEvent struct {
	model.Medication
	StatusLabel string `json:"statusLabel"`
}

// NotifyChange pushes a store mutation to connected clients so the daily
// list refreshes.
func (n *Notifier) NotifyChange(ev store.Event) {
	if n.hub == nil {
		return
	}
	n.hub.Broadcast(wsEnvelope{Type: string(ev.Type), Payload: changeEvent{
		Medication:  ev.Medication,
		StatusLabel: ev.Medication.Status.Label(),
	}})
}

// AlertCaregiver sends the caregiver an emergency text. Without a configured
// SMS channel the alert is logged and the call reports undelivered.
func (n *Notifier) AlertCaregiver(message string) (bool, error) {
	if n.sms == nil || n.caregiver == "" {
		n.logger.Warn("emergency alert requested but no caregiver SMS channel is configured",
			zap.String("message", message))
		return false, nil
	}
	if err := n.sms.SendSMS(n.caregiver, message); err != nil {
		return false, err
	}
	return true, nil
}

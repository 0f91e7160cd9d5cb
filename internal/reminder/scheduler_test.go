package reminder

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"medminder/internal/model"
	"medminder/internal/notify"
	"medminder/internal/store"
)

type captureNotifier struct {
	alerts []notify.DoseAlert
}

func (c *captureNotifier) NotifyDose(alert notify.DoseAlert) {
	c.alerts = append(c.alerts, alert)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	if err := db.AutoMigrate(&model.Medication{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return store.New(db, zap.NewNop())
}

func TestCheckDueFiresOnceAtExactMinute(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if _, err := st.Add(model.NewMedication{Name: "Lisinopril", Dosage: "10mg", Time: "08:00"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	captured := &captureNotifier{}
	s := NewScheduler(st, captured, time.UTC, zap.NewNop(), nil)

	tick := time.Date(2025, 6, 1, 8, 0, 30, 0, time.UTC)
	s.CheckDue(tick)

	if len(captured.alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %d", len(captured.alerts))
	}
	alert := captured.alerts[0]
	if alert.Title != "Time for your Lisinopril" {
		t.Errorf("unexpected title: %q", alert.Title)
	}
	if alert.Body != "It's time to take your 10mg dose." {
		t.Errorf("unexpected body: %q", alert.Body)
	}

	// One minute later the times no longer match, so nothing fires even
	// though the dose is still pending.
	s.CheckDue(tick.Add(time.Minute))
	if len(captured.alerts) != 1 {
		t.Fatalf("late tick must not fire, got %d alerts", len(captured.alerts))
	}
}

func TestCheckDueSkipsNonPending(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	med, err := st.Add(model.NewMedication{Name: "Metformin", Dosage: "500mg", Time: "09:15"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.UpdateDoseStatus(med.ID, model.StatusTaken); err != nil {
		t.Fatalf("mark taken: %v", err)
	}

	captured := &captureNotifier{}
	s := NewScheduler(st, captured, time.UTC, zap.NewNop(), nil)
	s.CheckDue(time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC))

	if len(captured.alerts) != 0 {
		t.Fatalf("taken dose must not alert, got %d", len(captured.alerts))
	}
}

func TestCheckDueZeroPadsTime(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	if _, err := st.Add(model.NewMedication{Name: "Levothyroxine", Dosage: "50mcg", Time: "07:05"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	captured := &captureNotifier{}
	s := NewScheduler(st, captured, time.UTC, zap.NewNop(), nil)
	s.CheckDue(time.Date(2025, 6, 1, 7, 5, 0, 0, time.UTC))

	if len(captured.alerts) != 1 {
		t.Fatalf("expected alert for zero-padded 07:05, got %d", len(captured.alerts))
	}
}

func TestDefaultIconWhenNoPhoto(t *testing.T) {
	t.Parallel()

	alert := notify.NewDoseAlert(model.Medication{ID: 1, Name: "A", Dosage: "1mg", Time: "08:00"})
	if alert.Icon != notify.DefaultIcon {
		t.Fatalf("expected default icon, got %q", alert.Icon)
	}

	alert = notify.NewDoseAlert(model.Medication{ID: 2, Name: "B", Dosage: "2mg", Time: "08:00", PillImage: "data:image/jpeg;base64,xyz"})
	if alert.Icon != "data:image/jpeg;base64,xyz" {
		t.Fatalf("expected pill image icon, got %q", alert.Icon)
	}
}

package model

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := map[string]TimeCategory{
		"04:00": CategoryMorning,
		"07:30": CategoryMorning,
		"11:59": CategoryMorning,
		"12:00": CategoryAfternoon,
		"13:00": CategoryAfternoon,
		"16:45": CategoryAfternoon,
		"17:00": CategoryEvening,
		"19:59": CategoryEvening,
		"21:00": CategoryNight,
		"23:00": CategoryNight,
		"00:30": CategoryNight,
		"03:59": CategoryNight,
		// Malformed hours map to Night instead of relying on parse quirks.
		"":      CategoryNight,
		"ab:cd": CategoryNight,
		"late":  CategoryNight,
	}

	for input, want := range cases {
		if got := Classify(input); got != want {
			t.Errorf("Classify(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestGroupScheduleOrdering(t *testing.T) {
	t.Parallel()

	meds := []Medication{
		{ID: 1, Name: "B", Time: "08:00", Status: StatusPending},
		{ID: 2, Name: "A", Time: "08:00", Status: StatusPending},
		{ID: 3, Name: "C", Time: "07:00", Status: StatusPending},
	}

	groups := GroupSchedule(meds)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	if groups[0].Category != CategoryMorning {
		t.Fatalf("expected Morning group, got %s", groups[0].Category)
	}

	wantOrder := []string{"C", "A", "B"}
	for i, med := range groups[0].Medications {
		if med.Name != wantOrder[i] {
			t.Fatalf("position %d: got %s, want %s", i, med.Name, wantOrder[i])
		}
	}
}

func TestGroupScheduleOmitsEmptyAndKeepsDisplayOrder(t *testing.T) {
	t.Parallel()

	meds := []Medication{
		{ID: 1, Name: "Night pill", Time: "23:00", Status: StatusPending},
		{ID: 2, Name: "Morning pill", Time: "08:00", Status: StatusPending},
	}

	groups := GroupSchedule(meds)
	if len(groups) != 2 {
		t.Fatalf("expected two groups, got %d", len(groups))
	}
	if groups[0].Category != CategoryMorning || groups[1].Category != CategoryNight {
		t.Fatalf("unexpected group order: %s, %s", groups[0].Category, groups[1].Category)
	}
}

func TestDoseStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []DoseStatus{StatusPending, StatusTaken, StatusSkipped} {
		if !status.Valid() {
			t.Errorf("%s should be valid", status)
		}
		if status.Label() == "Unknown" {
			t.Errorf("%s should have a label", status)
		}
	}
	if DoseStatus("LOST").Valid() {
		t.Error("unknown status should be invalid")
	}
	if got := DoseStatus("LOST").Label(); got != "Unknown" {
		t.Errorf("unknown status label = %q", got)
	}
}

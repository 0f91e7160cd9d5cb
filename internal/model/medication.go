package model

import (
	"sort"
	"strconv"
	"strings"
)

// DoseStatus marks whether a scheduled medication dose was taken, skipped,
// or is still waiting on the user.
type DoseStatus string

const (
	StatusPending DoseStatus = "PENDING"
	StatusTaken   DoseStatus = "TAKEN"
	StatusSkipped DoseStatus = "SKIPPED"
)

// Valid reports whether the status is one of the known variants.
func (s DoseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusTaken, StatusSkipped:
		return true
	}
	return false
}

// Label returns the user-facing wording for a status. The switch is
// exhaustive so a new variant fails loudly here instead of rendering blank.
func (s DoseStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusTaken:
		return "Taken"
	case StatusSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// Medication represents a single scheduled dose on the daily list.
type Medication struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Dosage    string     `gorm:"not null" json:"dosage"`
	Time      string     `gorm:"not null" json:"time"`
	Status    DoseStatus `gorm:"not null" json:"status"`
	PillImage string     `gorm:"type:text" json:"pillImage,omitempty"`
}

// NewMedication holds the fields collected by the add-medication workflow
// before an id and status are assigned.
type NewMedication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Time      string `json:"time"`
	PillImage string `json:"pillImage,omitempty"`
}

// TimeCategory is the coarse display bucket for a scheduled time.
type TimeCategory string

const (
	CategoryMorning   TimeCategory = "Morning"
	CategoryAfternoon TimeCategory = "Afternoon"
	CategoryEvening   TimeCategory = "Evening"
	CategoryNight     TimeCategory = "Night"
)

// Categories lists every bucket in display order.
var Categories = []TimeCategory{CategoryMorning, CategoryAfternoon, CategoryEvening, CategoryNight}

// Classify maps an HH:MM time string to its display bucket using the hour
// component only. An unparseable hour is treated as Night.
func Classify(timeOfDay string) TimeCategory {
	hourPart, _, _ := strings.Cut(timeOfDay, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil {
		return CategoryNight
	}

	switch {
	case hour >= 4 && hour < 12:
		return CategoryMorning
	case hour >= 12 && hour < 17:
		return CategoryAfternoon
	case hour >= 17 && hour < 21:
		return CategoryEvening
	default:
		return CategoryNight
	}
}

// Category returns the display bucket for the medication's scheduled time.
func (m Medication) Category() TimeCategory {
	return Classify(m.Time)
}

// CategoryGroup is one non-empty display bucket with its medications.
type CategoryGroup struct {
	Category    TimeCategory `json:"category"`
	Medications []Medication `json:"medications"`
}

// GroupSchedule buckets medications by time category, ordered Morning through
// Night, sorting each bucket by time then name. Empty buckets are omitted.
func GroupSchedule(meds []Medication) []CategoryGroup {
	byCategory := make(map[TimeCategory][]Medication, len(Categories))
	for _, med := range meds {
		cat := med.Category()
		byCategory[cat] = append(byCategory[cat], med)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, cat := range Categories {
		meds, ok := byCategory[cat]
		if !ok {
			continue
		}
		sort.SliceStable(meds, func(i, j int) bool {
			if meds[i].Time != meds[j].Time {
				return meds[i].Time < meds[j].Time
			}
			return meds[i].Name < meds[j].Name
		})
		groups = append(groups, CategoryGroup{Category: cat, Medications: meds})
	}
	return groups
}

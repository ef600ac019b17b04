package domain

import (
	"fmt"
	"strings"
)

// CriticalWorkout is a named, schedule-defining session inside a training week.
// It is a stub at this stage: only an id and a description, not yet placed on
// a calendar day.
type CriticalWorkout struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// TrainingWeek is one week inside a phase. Weeks do not exist without a parent
// phase; PhaseID is the referential link back to it.
type TrainingWeek struct {
	WeekID           string            `json:"week_id"`
	PhaseID          string            `json:"phase_id"`
	StartDate        Date              `json:"start_date"`
	EndDate          Date              `json:"end_date"`
	Description      string            `json:"description"`
	WeeklyMileageKm  *float64          `json:"weekly_mileage,omitempty"`
	CriticalWorkouts []CriticalWorkout `json:"critical_workouts"`
}

// Validate checks week-local invariants.
func (w *TrainingWeek) Validate() error {
	if w.WeekID == "" {
		return fmt.Errorf("week is missing an id")
	}
	if w.EndDate.Before(w.StartDate.Time) {
		return fmt.Errorf("week %s: end date precedes start date", w.WeekID)
	}
	if n := len(w.CriticalWorkouts); n < 2 || n > 3 {
		return fmt.Errorf("week %s: expected 2-3 critical workouts, got %d", w.WeekID, n)
	}
	return nil
}

// TrainingPhase is a multi-week block with a single physiological focus.
// Phases are created once by the planner and never mutated; corrections mean
// regenerating a new phase.
type TrainingPhase struct {
	PhaseID      string         `json:"phase_id"`
	Name         string         `json:"name"`
	Tag          string         `json:"tag"`
	Description  string         `json:"description"`
	WorkoutFocus []string       `json:"workout_focus"`
	Weeks        []TrainingWeek `json:"weeks"`
}

// WeekCount returns how many weeks the phase spans.
func (p *TrainingPhase) WeekCount() int {
	return len(p.Weeks)
}

// ValidatePhases applies the hard validation gate over a generated phase list.
// Every phase must carry at least one focus label; a violation is reported with
// the offending phase ids and is never silently repaired.
func ValidatePhases(phases []TrainingPhase) error {
	if len(phases) == 0 {
		return fmt.Errorf("generated phase list is empty")
	}
	var missing []string
	for _, p := range phases {
		if len(p.WorkoutFocus) == 0 {
			missing = append(missing, p.PhaseID)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("phases missing workout focus labels: %s", strings.Join(missing, ", "))
	}
	return nil
}

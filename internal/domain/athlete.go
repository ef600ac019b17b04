package domain

import (
	"errors"
	"time"
)

// ExperienceLevel classifies how long an athlete has been training seriously.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// Bounds for the weekly schedule. Fewer than 3 days cannot carry a structured
// plan and there are only 7 days in a week.
const (
	MinTrainingDaysPerWeek = 3
	MaxTrainingDaysPerWeek = 7
)

var (
	ErrInvalidExperience   = errors.New("experience level must be beginner, intermediate or advanced")
	ErrInvalidTrainingDays = errors.New("available training days must be between 3 and 7")
	ErrNoRaces             = errors.New("at least one race is required")
	ErrNoGoalRace          = errors.New("race schedule must contain at least one A-priority race")
)

// AthleteProfile is the caller-supplied picture of the athlete. It is read-only
// for the duration of a planning run.
type AthleteProfile struct {
	Experience          ExperienceLevel `json:"experience_level"`
	WeeklyMileageKm     float64         `json:"current_weekly_mileage"`
	TrainingDaysPerWeek int             `json:"available_days_per_week"`

	// Optional physiological indicators. Zero values mean "unknown".
	ThresholdPaceMinKm float64 `json:"threshold_pace_min_km,omitempty"`
	MaxHeartRate       int     `json:"max_heart_rate,omitempty"`
	FTPWatts           int     `json:"ftp_watts,omitempty"`
}

// Validate checks the structural invariants of the profile.
func (p *AthleteProfile) Validate() error {
	switch p.Experience {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
	default:
		return ErrInvalidExperience
	}
	if p.TrainingDaysPerWeek < MinTrainingDaysPerWeek || p.TrainingDaysPerWeek > MaxTrainingDaysPerWeek {
		return ErrInvalidTrainingDays
	}
	return nil
}

// RacePriority ranks how much a race matters to the athlete's season.
type RacePriority string

const (
	PriorityA RacePriority = "A"
	PriorityB RacePriority = "B"
	PriorityC RacePriority = "C"
)

// RaceEvent is one entry in the athlete's race schedule.
type RaceEvent struct {
	Date       Date         `json:"date"`
	Priority   RacePriority `json:"priority"`
	DistanceKm float64      `json:"distance"`
	Name       string       `json:"name,omitempty"`
}

// PrimaryGoalRace returns the earliest-dated A-priority race from the schedule.
// The plan is anchored on this race; every other entry only informs the prompt.
func PrimaryGoalRace(races []RaceEvent) (RaceEvent, error) {
	if len(races) == 0 {
		return RaceEvent{}, ErrNoRaces
	}
	var goal RaceEvent
	found := false
	for _, r := range races {
		if r.Priority != PriorityA {
			continue
		}
		if !found || r.Date.Before(goal.Date.Time) {
			goal = r
			found = true
		}
	}
	if !found {
		return RaceEvent{}, ErrNoGoalRace
	}
	return goal, nil
}

// WeeksUntil returns the whole number of weeks between from and the race date,
// rounding any partial week up.
func (r RaceEvent) WeeksUntil(from time.Time) int {
	days := int(r.Date.Sub(from).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}

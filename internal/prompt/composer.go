// Package prompt renders the natural-language instructions sent to the
// structured-generation backend. Rendering is deterministic: the same input
// always produces the same string, and every formatting rule the backend must
// obey (date format, enumerated options, worked examples) is embedded
// literally in the text.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fafnerzhang/codetrekking/internal/domain"
)

// DateLayout is the calendar-date format used across the generation boundary.
const DateLayout = "2006-01-02"

// Effort zone vocabulary shared with the backend so zone labels come back in a
// known form.
var ZoneLabels = []string{"Z1 recovery", "Z2 endurance", "Z3 tempo", "Z4 threshold", "Z5 vo2max"}

var ErrMissingInput = errors.New("prompt input is incomplete")

// Composer builds prompts for every pipeline stage. Methodology is the
// coaching-methodology text; it is an explicit field rather than an ambient
// context lookup so each stage stays independently testable.
type Composer struct {
	Methodology string
}

// PhaseInput carries everything the phase-planning prompt interpolates.
type PhaseInput struct {
	Profile     domain.AthleteProfile
	Races       []domain.RaceEvent
	GoalRace    domain.RaceEvent
	WeeksToRace int
	Today       time.Time
}

// Phases renders the periodization prompt. The backend is asked for 3-5 phases
// whose week spans exactly cover WeeksToRace, anchored at Today.
func (c *Composer) Phases(in PhaseInput) (string, error) {
	if in.WeeksToRace <= 0 || in.Today.IsZero() {
		return "", fmt.Errorf("%w: weeks to race and anchor date are required", ErrMissingInput)
	}
	if len(in.Races) == 0 {
		return "", fmt.Errorf("%w: race schedule is required", ErrMissingInput)
	}

	var b strings.Builder
	b.WriteString("You are a running coach designing a periodized training plan.\n\n")
	if c.Methodology != "" {
		fmt.Fprintf(&b, "Coaching methodology:\n%s\n\n", c.Methodology)
	}
	fmt.Fprintf(&b, "Athlete profile:\n")
	fmt.Fprintf(&b, "- experience level: %s\n", in.Profile.Experience)
	fmt.Fprintf(&b, "- current weekly volume: %.1f km\n", in.Profile.WeeklyMileageKm)
	fmt.Fprintf(&b, "- available training days per week: %d\n\n", in.Profile.TrainingDaysPerWeek)

	b.WriteString("Race schedule:\n")
	for _, r := range in.Races {
		name := r.Name
		if name == "" {
			name = "unnamed race"
		}
		fmt.Fprintf(&b, "- %s: %s, priority %s, %.1f km\n", in.dateOf(r), name, r.Priority, r.DistanceKm)
	}
	fmt.Fprintf(&b, "\nThe goal race is the A-priority race on %s (%.1f km), %d weeks from today (%s).\n\n",
		in.GoalRace.Date.Format(DateLayout), in.GoalRace.DistanceKm, in.WeeksToRace, in.Today.Format(DateLayout))

	fmt.Fprintf(&b, "Produce between 3 and 5 training phases (for example Base, Build, Peak, Taper) "+
		"whose combined weeks cover exactly %d weeks, starting today.\n", in.WeeksToRace)
	b.WriteString("Rules:\n")
	b.WriteString("- Every date must use the YYYY-MM-DD format, e.g. 2025-03-17.\n")
	b.WriteString("- Each phase needs a phase_id, name, a short tag (base, build, peak or taper), a description,\n")
	b.WriteString("  at least one workout_focus label, and a week-by-week breakdown.\n")
	b.WriteString("- Each week needs a week_id, its parent phase_id, start_date (Monday), end_date (Sunday),\n")
	b.WriteString("  a description, planned weekly mileage in km, and 2-3 critical workouts.\n")
	b.WriteString("- A critical workout is only an id and a description, e.g.\n")
	b.WriteString(`  {"id": "long-run-1", "description": "90-minute progressive long run"}` + "\n")
	b.WriteString("- Weekly mileage should progress conservatively and drop in the taper.\n")
	return b.String(), nil
}

func (in PhaseInput) dateOf(r domain.RaceEvent) string {
	return r.Date.Format(DateLayout)
}

// WeekInput carries everything the week-enhancement prompt interpolates.
type WeekInput struct {
	Week          domain.TrainingWeek
	DaysAvailable int
}

// Week renders the prompt that turns a week's critical workouts into a full
// day-by-day schedule. Each critical workout is restated verbatim so the
// backend schedules exactly the sessions the planner named.
func (c *Composer) Week(in WeekInput) (string, error) {
	if in.Week.WeekID == "" || len(in.Week.CriticalWorkouts) == 0 {
		return "", fmt.Errorf("%w: week id and critical workouts are required", ErrMissingInput)
	}
	if in.DaysAvailable < domain.MinTrainingDaysPerWeek || in.DaysAvailable > domain.MaxTrainingDaysPerWeek {
		return "", fmt.Errorf("%w: days available must be 3-7", ErrMissingInput)
	}

	var b strings.Builder
	b.WriteString("You are a running coach filling out one week of a training plan.\n\n")
	if c.Methodology != "" {
		fmt.Fprintf(&b, "Coaching methodology:\n%s\n\n", c.Methodology)
	}
	fmt.Fprintf(&b, "Week %s runs from %s to %s.\n", in.Week.WeekID,
		in.Week.StartDate.Format(DateLayout), in.Week.EndDate.Format(DateLayout))
	fmt.Fprintf(&b, "Week focus: %s\n\n", in.Week.Description)

	b.WriteString("Critical workouts to schedule, unchanged:\n")
	for _, cw := range in.Week.CriticalWorkouts {
		fmt.Fprintf(&b, "- id %q: %s\n", cw.ID, cw.Description)
	}

	rest := 7 - in.DaysAvailable
	fmt.Fprintf(&b, "\nThe athlete trains %d days this week; the remaining %d days are rest and must not appear.\n", in.DaysAvailable, rest)
	fmt.Fprintf(&b, "Produce exactly %d daily workout requests. Rules:\n", in.DaysAvailable)
	b.WriteString("- Assign each critical workout above a date between start and end of the week,\n")
	b.WriteString("  keeping its id and description exactly as given.\n")
	b.WriteString("- Fill every remaining training day with exactly one of: easy run, recovery run, rest day.\n")
	b.WriteString("- Never place two high-intensity days back to back; separate critical workouts with easy days.\n")
	b.WriteString("- Every date must use the YYYY-MM-DD format and fall inside the week.\n")
	fmt.Fprintf(&b, "- Label effort zones with one of: %s.\n", strings.Join(ZoneLabels, ", "))
	b.WriteString("- Each item needs id, date, workout_type, and a one-sentence target; distance and time\n")
	b.WriteString("  ranges are optional and given as {\"min\": x, \"max\": y}.\n")
	return b.String(), nil
}

// WorkoutInput carries one daily request into the expansion prompt.
type WorkoutInput struct {
	Request domain.DailyWorkoutRequest
	Profile domain.AthleteProfile
}

// Workout renders the prompt expanding one day into a segmented plan. Absent
// optional ranges are omitted entirely; the prompt never carries null
// placeholders.
func (c *Composer) Workout(in WorkoutInput) (string, error) {
	if in.Request.ID == "" || in.Request.WorkoutType == "" {
		return "", fmt.Errorf("%w: workout id and type are required", ErrMissingInput)
	}

	var b strings.Builder
	b.WriteString("You are a running coach writing out a single structured workout.\n\n")
	if c.Methodology != "" {
		fmt.Fprintf(&b, "Coaching methodology:\n%s\n\n", c.Methodology)
	}
	fmt.Fprintf(&b, "Workout specification:\n")
	fmt.Fprintf(&b, "- date: %s\n", in.Request.Date.Format(DateLayout))
	fmt.Fprintf(&b, "- type: %s\n", in.Request.WorkoutType)
	if in.Request.Target != "" {
		fmt.Fprintf(&b, "- target: %s\n", in.Request.Target)
	}
	if r := in.Request.DistanceKm; r != nil {
		fmt.Fprintf(&b, "- distance: %.1f-%.1f km\n", r.Min, r.Max)
	}
	if r := in.Request.TimeMinutes; r != nil {
		fmt.Fprintf(&b, "- duration: %.0f-%.0f minutes\n", r.Min, r.Max)
	}
	if in.Request.ZoneDistribution != "" {
		fmt.Fprintf(&b, "- zone distribution: %s\n", in.Request.ZoneDistribution)
	}
	if in.Request.TargetZone != "" {
		fmt.Fprintf(&b, "- target zone: %s\n", in.Request.TargetZone)
	}
	if in.Profile.ThresholdPaceMinKm > 0 {
		fmt.Fprintf(&b, "- athlete threshold pace: %.2f min/km\n", in.Profile.ThresholdPaceMinKm)
	}
	if in.Profile.MaxHeartRate > 0 {
		fmt.Fprintf(&b, "- athlete max heart rate: %d bpm\n", in.Profile.MaxHeartRate)
	}

	b.WriteString("\nProduce a workout plan with a title, a description and an ordered detail list.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Items are segments or loop markers. A segment looks like\n")
	b.WriteString(`  {"type": "segment", "duration_minutes": 10, "intensity_metric": "pace",` + "\n")
	b.WriteString(`   "target": {"min": 5.0, "max": 5.3}, "description": "steady warm-up", "perceived_effort": 3}` + "\n")
	b.WriteString("- intensity_metric is one of: pace, power, heart_rate. perceived_effort is 0-10.\n")
	b.WriteString("- Repeats use loop markers with matching ids:\n")
	b.WriteString(`  {"type": "loop_start", "id": "main-set", "repeat": 5} ... {"type": "loop_end", "id": "main-set"}` + "\n")
	b.WriteString("- Begin with a warm-up segment and finish with a cool-down segment.\n")
	b.WriteString("- Fill estimated_tss, total_time (minutes) and total_distance (km) when they can be estimated,\n")
	b.WriteString("  otherwise leave them null.\n")
	return b.String(), nil
}

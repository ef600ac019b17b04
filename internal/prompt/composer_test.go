package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fafnerzhang/codetrekking/internal/domain"
)

func testProfile() domain.AthleteProfile {
	return domain.AthleteProfile{
		Experience:          domain.ExperienceIntermediate,
		WeeklyMileageKm:     45,
		TrainingDaysPerWeek: 5,
	}
}

func TestComposerPhases(t *testing.T) {
	c := &Composer{Methodology: "80/20 polarized training"}
	goal := domain.RaceEvent{
		Date:       domain.NewDate(2026, time.March, 1),
		Priority:   domain.PriorityA,
		DistanceKm: 42.2,
		Name:       "City Marathon",
	}
	in := PhaseInput{
		Profile:     testProfile(),
		Races:       []domain.RaceEvent{goal},
		GoalRace:    goal,
		WeeksToRace: 12,
		Today:       domain.NewDate(2025, time.December, 7).Time,
	}

	p, err := c.Phases(in)
	require.NoError(t, err)
	assert.Contains(t, p, "80/20 polarized training")
	assert.Contains(t, p, "City Marathon")
	assert.Contains(t, p, "2026-03-01")
	assert.Contains(t, p, "cover exactly 12 weeks")
	assert.Contains(t, p, "YYYY-MM-DD")

	t.Run("requires an anchor", func(t *testing.T) {
		bad := in
		bad.WeeksToRace = 0
		_, err := c.Phases(bad)
		assert.ErrorIs(t, err, ErrMissingInput)
	})

	t.Run("requires races", func(t *testing.T) {
		bad := in
		bad.Races = nil
		_, err := c.Phases(bad)
		assert.ErrorIs(t, err, ErrMissingInput)
	})
}

func TestComposerWeek(t *testing.T) {
	c := &Composer{}
	week := domain.TrainingWeek{
		WeekID:      "w3",
		PhaseID:     "build",
		StartDate:   domain.NewDate(2026, time.January, 5),
		EndDate:     domain.NewDate(2026, time.January, 11),
		Description: "second build week",
		CriticalWorkouts: []domain.CriticalWorkout{
			{ID: "long-run-3", Description: "100-minute long run with 30 minutes at marathon pace"},
			{ID: "tempo-3", Description: "3x12 minutes at threshold"},
		},
	}

	p, err := c.Week(WeekInput{Week: week, DaysAvailable: 5})
	require.NoError(t, err)

	// Critical workouts are restated verbatim so the backend schedules
	// exactly the sessions the planner named.
	assert.Contains(t, p, `id "long-run-3": 100-minute long run with 30 minutes at marathon pace`)
	assert.Contains(t, p, `id "tempo-3": 3x12 minutes at threshold`)
	assert.Contains(t, p, "exactly 5 daily workout requests")
	assert.Contains(t, p, "2026-01-05")
	assert.Contains(t, p, "2026-01-11")

	t.Run("days out of bounds", func(t *testing.T) {
		_, err := c.Week(WeekInput{Week: week, DaysAvailable: 2})
		assert.ErrorIs(t, err, ErrMissingInput)
	})

	t.Run("missing critical workouts", func(t *testing.T) {
		bare := week
		bare.CriticalWorkouts = nil
		_, err := c.Week(WeekInput{Week: bare, DaysAvailable: 5})
		assert.ErrorIs(t, err, ErrMissingInput)
	})
}

func TestComposerWorkout(t *testing.T) {
	c := &Composer{}
	req := domain.DailyWorkoutRequest{
		ID:          "d2",
		Date:        domain.NewDate(2026, time.January, 6),
		WorkoutType: "tempo run",
		Target:      "3x12 minutes at threshold",
		DistanceKm:  &domain.Range{Min: 12, Max: 14},
	}

	p, err := c.Workout(WorkoutInput{Request: req, Profile: testProfile()})
	require.NoError(t, err)
	assert.Contains(t, p, "tempo run")
	assert.Contains(t, p, "distance: 12.0-14.0 km")
	assert.Contains(t, p, "loop_start")

	t.Run("absent ranges are omitted entirely", func(t *testing.T) {
		bare := req
		bare.DistanceKm = nil
		bare.TimeMinutes = nil
		p, err := c.Workout(WorkoutInput{Request: bare, Profile: testProfile()})
		require.NoError(t, err)
		assert.NotContains(t, p, "- distance:")
		assert.NotContains(t, p, "- duration:")
	})

	t.Run("threshold pace included only when known", func(t *testing.T) {
		profile := testProfile()
		profile.ThresholdPaceMinKm = 4.25
		p, err := c.Workout(WorkoutInput{Request: req, Profile: profile})
		require.NoError(t, err)
		assert.Contains(t, p, "threshold pace: 4.25 min/km")

		p, err = c.Workout(WorkoutInput{Request: req, Profile: testProfile()})
		require.NoError(t, err)
		assert.NotContains(t, p, "threshold pace")
	})

	t.Run("missing type", func(t *testing.T) {
		bad := req
		bad.WorkoutType = ""
		_, err := c.Workout(WorkoutInput{Request: bad})
		assert.ErrorIs(t, err, ErrMissingInput)
	})
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAthleteProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile AthleteProfile
		wantErr error
	}{
		{
			name:    "valid intermediate",
			profile: AthleteProfile{Experience: ExperienceIntermediate, TrainingDaysPerWeek: 5},
		},
		{
			name:    "unknown experience",
			profile: AthleteProfile{Experience: "elite", TrainingDaysPerWeek: 5},
			wantErr: ErrInvalidExperience,
		},
		{
			name:    "too few training days",
			profile: AthleteProfile{Experience: ExperienceBeginner, TrainingDaysPerWeek: 2},
			wantErr: ErrInvalidTrainingDays,
		},
		{
			name:    "too many training days",
			profile: AthleteProfile{Experience: ExperienceAdvanced, TrainingDaysPerWeek: 8},
			wantErr: ErrInvalidTrainingDays,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPrimaryGoalRace(t *testing.T) {
	early := RaceEvent{Date: NewDate(2026, time.March, 1), Priority: PriorityA, DistanceKm: 21.1}
	late := RaceEvent{Date: NewDate(2026, time.June, 14), Priority: PriorityA, DistanceKm: 42.2}
	tuneUp := RaceEvent{Date: NewDate(2026, time.February, 1), Priority: PriorityB, DistanceKm: 10}

	t.Run("earliest A race wins", func(t *testing.T) {
		goal, err := PrimaryGoalRace([]RaceEvent{late, tuneUp, early})
		require.NoError(t, err)
		assert.Equal(t, early, goal)
	})

	t.Run("B races never anchor the plan", func(t *testing.T) {
		_, err := PrimaryGoalRace([]RaceEvent{tuneUp})
		assert.ErrorIs(t, err, ErrNoGoalRace)
	})

	t.Run("empty schedule", func(t *testing.T) {
		_, err := PrimaryGoalRace(nil)
		assert.ErrorIs(t, err, ErrNoRaces)
	})
}

func TestWeeksUntil(t *testing.T) {
	race := RaceEvent{Date: NewDate(2026, time.March, 1), Priority: PriorityA}
	tests := []struct {
		name string
		from Date
		want int
	}{
		{"exactly twelve weeks", NewDate(2025, time.December, 7), 12},
		{"partial week rounds up", NewDate(2026, time.February, 25), 1},
		{"same day", NewDate(2026, time.March, 1), 0},
		{"race passed", NewDate(2026, time.April, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, race.WeeksUntil(tt.from.Time))
		})
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fafnerzhang/codetrekking/internal/domain"
	"github.com/fafnerzhang/codetrekking/internal/generation"
	"github.com/fafnerzhang/codetrekking/internal/prompt"
	"github.com/fafnerzhang/codetrekking/internal/storage"
)

// --- Error Definitions ---
var (
	ErrEmptySchedule    = errors.New("week enhancer returned no daily workouts")
	ErrScheduleMismatch = errors.New("generated schedule does not fit the week")
)

// WeekService turns one training week's critical workouts into a complete
// day-by-day schedule.
type WeekService interface {
	EnhanceWeek(ctx context.Context, week domain.TrainingWeek, daysAvailable int) ([]domain.DailyWorkoutRequest, error)
}

// weekService implements the WeekService interface.
type weekService struct {
	gen      generation.Client
	composer *prompt.Composer
	archive  storage.TranscriptArchive
}

// NewWeekService creates a new instance of weekService.
func NewWeekService(gen generation.Client, composer *prompt.Composer, archive storage.TranscriptArchive) WeekService {
	return &weekService{
		gen:      gen,
		composer: composer,
		archive:  archive,
	}
}

// dailyScheduleResult is the declared output shape of the week enhancer.
type dailyScheduleResult struct {
	Workouts []domain.DailyWorkoutRequest `json:"workouts"`
}

// EnhanceWeek expands the week into exactly daysAvailable daily workout
// requests dated inside the week's span. An empty or ill-fitting
// result is a hard failure; there is no silent fallback.
func (s *weekService) EnhanceWeek(ctx context.Context, week domain.TrainingWeek, daysAvailable int) ([]domain.DailyWorkoutRequest, error) {
	if daysAvailable < domain.MinTrainingDaysPerWeek || daysAvailable > domain.MaxTrainingDaysPerWeek {
		return nil, domain.ErrInvalidTrainingDays
	}
	if err := week.Validate(); err != nil {
		return nil, err
	}

	p, err := s.composer.Week(prompt.WeekInput{
		Week:          week,
		DaysAvailable: daysAvailable,
	})
	if err != nil {
		return nil, err
	}

	var result dailyScheduleResult
	genErr := s.gen.Generate(ctx, p, generation.DailyScheduleSchema, &result)
	archiveTranscript(ctx, s.archive, week.WeekID, stageWeekEnhancer, generation.DailyScheduleSchema.Name, p, result, genErr)
	if genErr != nil {
		return nil, genErr
	}
	if len(result.Workouts) == 0 {
		return nil, ErrEmptySchedule
	}
	if len(result.Workouts) != daysAvailable {
		return nil, fmt.Errorf("%w: expected %d daily workouts, got %d", ErrScheduleMismatch, daysAvailable, len(result.Workouts))
	}

	var outOfRange []string
	for i := range result.Workouts {
		w := &result.Workouts[i]
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScheduleMismatch, err)
		}
		if w.Date.Before(week.StartDate.Time) || w.Date.After(week.EndDate.Time) {
			outOfRange = append(outOfRange, w.ID)
		}
		// Tag every item with its referential parents.
		w.PhaseID = week.PhaseID
		w.WeekID = week.WeekID
	}
	if len(outOfRange) > 0 {
		return nil, fmt.Errorf("%w: workouts dated outside %s..%s: %s",
			ErrScheduleMismatch, week.StartDate, week.EndDate, strings.Join(outOfRange, ", "))
	}

	return result.Workouts, nil
}

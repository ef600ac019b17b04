package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fafnerzhang/codetrekking/internal/domain"
	"github.com/fafnerzhang/codetrekking/internal/generation"
	"github.com/fafnerzhang/codetrekking/internal/planstore"
	"github.com/fafnerzhang/codetrekking/internal/prompt"
	"github.com/fafnerzhang/codetrekking/internal/repository"
	"github.com/fafnerzhang/codetrekking/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MaxFanoutBatch is the hard upper bound on daily requests per fan-out call.
// It caps burst load on the generation backend and keeps one planning call
// inside a bounded latency and cost envelope.
const MaxFanoutBatch = 7

// --- Error Definitions ---
var (
	ErrBatchTooLarge  = errors.New("workout batch exceeds the fan-out bound")
	ErrEmptyBatch     = errors.New("workout batch is empty")
	ErrDuplicateIDs   = errors.New("workout batch contains duplicate ids")
	ErrPlanValidation = errors.New("generated workout plan failed validation")
)

// WorkoutService expands daily workout requests into fully segmented plans,
// fanning out over a batch with a bounded concurrency ceiling.
type WorkoutService interface {
	GenerateDetailedWorkouts(ctx context.Context, batch []domain.DailyWorkoutRequest, profile domain.AthleteProfile) (map[string]*domain.WorkoutPlan, error)
}

// WorkoutServiceOptions tunes retry and fan-out behavior.
type WorkoutServiceOptions struct {
	// FanoutConcurrency caps in-flight expansions; 0 means 3.
	FanoutConcurrency int
	// RetryAttempts is the total attempt budget per expansion; 0 means 3.
	RetryAttempts int
	// BackoffBase is the delay before the first retry, doubling after every
	// failed attempt; 0 means 1s.
	BackoffBase time.Duration
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	gen      generation.Client
	composer *prompt.Composer
	store    planstore.Store
	runRepo  repository.RunRepository
	archive  storage.TranscriptArchive

	fanout      int
	attempts    int
	backoffBase time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	gen generation.Client,
	composer *prompt.Composer,
	store planstore.Store,
	runRepo repository.RunRepository,
	archive storage.TranscriptArchive,
	opts WorkoutServiceOptions,
) WorkoutService {
	fanout := opts.FanoutConcurrency
	if fanout <= 0 {
		fanout = 3
	}
	if fanout > MaxFanoutBatch {
		fanout = MaxFanoutBatch
	}
	attempts := opts.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := opts.BackoffBase
	if backoff <= 0 {
		backoff = time.Second
	}
	return &workoutService{
		gen:         gen,
		composer:    composer,
		store:       store,
		runRepo:     runRepo,
		archive:     archive,
		fanout:      fanout,
		attempts:    attempts,
		backoffBase: backoff,
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GenerateDetailedWorkouts runs the daily expander over the batch with a
// concurrency ceiling and aggregates the results keyed by workout id. The
// batch is all-or-nothing: if any expansion exhausts its retries the whole
// call fails and no partial map is returned.
func (s *workoutService) GenerateDetailedWorkouts(ctx context.Context, batch []domain.DailyWorkoutRequest, profile domain.AthleteProfile) (map[string]*domain.WorkoutPlan, error) {
	// Preconditions fail before any dispatch.
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(batch) > MaxFanoutBatch {
		return nil, fmt.Errorf("%w: %d requests, maximum %d", ErrBatchTooLarge, len(batch), MaxFanoutBatch)
	}
	seen := make(map[string]bool, len(batch))
	for i := range batch {
		if err := batch[i].Validate(); err != nil {
			return nil, err
		}
		if seen[batch[i].ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIDs, batch[i].ID)
		}
		seen[batch[i].ID] = true
	}

	run := &domain.PlanningRun{
		RunID:   uuid.NewString(),
		Kind:    domain.RunWorkoutBatch,
		Status:  domain.RunRunning,
		PhaseID: batch[0].PhaseID,
		WeekID:  batch[0].WeekID,
	}
	s.recordRun(ctx, run)

	// Each goroutine owns its slot; the result map is built only after every
	// expansion has completed.
	plans := make([]*domain.WorkoutPlan, len(batch))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i := range batch {
		g.Go(func() error {
			plan, err := s.expandWorkout(gctx, run.RunID, batch[i], profile)
			if err != nil {
				return err
			}
			mu.Lock()
			plans[i] = plan
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.failRun(ctx, run, err)
		return nil, err
	}

	results := make(map[string]*domain.WorkoutPlan, len(plans))
	for _, plan := range plans {
		results[plan.WorkoutID] = plan
	}

	run.Status = domain.RunCompleted
	run.WorkoutCount = len(results)
	s.recordRun(ctx, run)

	return results, nil
}

// expandWorkout turns one daily request into a segmented plan, retrying
// failed generations with exponential backoff. Persistence is attempted after
// a successful generation; its failure is logged, not surfaced.
func (s *workoutService) expandWorkout(ctx context.Context, runID string, req domain.DailyWorkoutRequest, profile domain.AthleteProfile) (*domain.WorkoutPlan, error) {
	// Rest days need no generation: an empty plan with null totals.
	if req.IsRestDay() {
		plan := &domain.WorkoutPlan{
			Title:       "Rest Day",
			Description: req.Target,
			Detail:      []domain.WorkoutItem{},
		}
		s.attachIdentity(plan, req)
		return plan, nil
	}

	p, err := s.composer.Workout(prompt.WorkoutInput{Request: req, Profile: profile})
	if err != nil {
		return nil, err
	}

	var plan domain.WorkoutPlan
	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			// 1s, 2s, 4s with the default base.
			delay := s.backoffBase << (attempt - 1)
			if err := s.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		plan = domain.WorkoutPlan{}
		lastErr = s.gen.Generate(ctx, p, generation.WorkoutPlanSchema, &plan)
		archiveTranscript(ctx, s.archive, runID, stageDailyExpander, generation.WorkoutPlanSchema.Name, p, plan, lastErr)
		if lastErr == nil {
			break
		}
		log.Printf("WARN: workout %s generation attempt %d/%d failed: %v", req.ID, attempt+1, s.attempts, lastErr)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("workout %s: all %d attempts failed: %w", req.ID, s.attempts, lastErr)
	}

	// Bracket matching is enforced immediately after decoding, before the
	// plan reaches any caller.
	if err := plan.ValidateDetail(); err != nil {
		return nil, fmt.Errorf("%w: workout %s: %v", ErrPlanValidation, req.ID, err)
	}

	s.attachIdentity(&plan, req)

	stored, err := s.store.SaveWorkout(ctx, &plan, req.WorkoutType)
	if err != nil {
		// Workout detail is regenerable; persistence failure degrades to
		// stored=false instead of failing the expansion.
		log.Printf("WARN: failed to persist workout %s: %v", req.ID, err)
		stored = false
	}
	plan.Stored = stored

	return &plan, nil
}

func (s *workoutService) attachIdentity(plan *domain.WorkoutPlan, req domain.DailyWorkoutRequest) {
	plan.WorkoutID = req.ID
	plan.WeekID = req.WeekID
	plan.PhaseID = req.PhaseID
	plan.Date = req.Date
	plan.Stored = false
}

func (s *workoutService) recordRun(ctx context.Context, run *domain.PlanningRun) {
	if s.runRepo == nil {
		return
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		log.Printf("WARN: failed to record workout batch run %s: %v", run.RunID, err)
	}
}

func (s *workoutService) failRun(ctx context.Context, run *domain.PlanningRun, cause error) {
	run.Status = domain.RunFailed
	run.Error = cause.Error()
	s.recordRun(ctx, run)
}

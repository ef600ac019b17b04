package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fafnerzhang/codetrekking/internal/domain"
	"github.com/fafnerzhang/codetrekking/internal/generation"
	"github.com/fafnerzhang/codetrekking/internal/planstore"
	"github.com/fafnerzhang/codetrekking/internal/prompt"
	"github.com/fafnerzhang/codetrekking/internal/repository"
	"github.com/fafnerzhang/codetrekking/internal/storage"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrRaceInPast       = errors.New("goal race date is not in the future")
	ErrPhaseValidation  = errors.New("generated phases failed validation")
	ErrPhasePersistence = errors.New("failed to persist generated phases")
)

// Pipeline stage labels used for transcripts and run records.
const (
	stagePhasePlanner  = "phase_planner"
	stageWeekEnhancer  = "week_enhancer"
	stageDailyExpander = "daily_expander"
)

// PlanRequest is the caller-supplied input for one phase-planning run.
type PlanRequest struct {
	Profile          domain.AthleteProfile
	Races            []domain.RaceEvent
	TargetDistanceKm float64
}

// PhaseService turns a race schedule and athlete profile into a periodized
// sequence of training phases.
type PhaseService interface {
	GeneratePhases(ctx context.Context, req PlanRequest) ([]domain.TrainingPhase, error)
}

// phaseService implements the PhaseService interface.
type phaseService struct {
	gen      generation.Client
	composer *prompt.Composer
	store    planstore.Store
	runRepo  repository.RunRepository
	archive  storage.TranscriptArchive
	now      func() time.Time
}

// NewPhaseService creates a new instance of phaseService.
func NewPhaseService(
	gen generation.Client,
	composer *prompt.Composer,
	store planstore.Store,
	runRepo repository.RunRepository,
	archive storage.TranscriptArchive,
) PhaseService {
	return &phaseService{
		gen:      gen,
		composer: composer,
		store:    store,
		runRepo:  runRepo,
		archive:  archive,
		now:      time.Now,
	}
}

// phaseListResult is the declared output shape of the phase planner.
type phaseListResult struct {
	Phases []domain.TrainingPhase `json:"phases"`
}

// GeneratePhases runs the phase-planning step. All failures are terminal for
// this step; retries, if desired, belong to the caller.
func (s *phaseService) GeneratePhases(ctx context.Context, req PlanRequest) ([]domain.TrainingPhase, error) {
	// Preconditions fail before any backend call is made.
	if err := req.Profile.Validate(); err != nil {
		return nil, err
	}
	goal, err := domain.PrimaryGoalRace(req.Races)
	if err != nil {
		return nil, err
	}
	today := domain.DateOf(s.now())
	weeksToRace := goal.WeeksUntil(today.Time)
	if weeksToRace == 0 {
		return nil, ErrRaceInPast
	}

	p, err := s.composer.Phases(prompt.PhaseInput{
		Profile:     req.Profile,
		Races:       req.Races,
		GoalRace:    goal,
		WeeksToRace: weeksToRace,
		Today:       today.Time,
	})
	if err != nil {
		return nil, err
	}

	run := &domain.PlanningRun{
		RunID:        uuid.NewString(),
		Kind:         domain.RunPhasePlanning,
		Status:       domain.RunRunning,
		GoalRaceDate: goal.Date.Time,
		WeeksToRace:  weeksToRace,
	}
	s.recordRun(ctx, run)

	var result phaseListResult
	genErr := s.gen.Generate(ctx, p, generation.PhaseListSchema, &result)
	archiveTranscript(ctx, s.archive, run.RunID, stagePhasePlanner, generation.PhaseListSchema.Name, p, result, genErr)
	if genErr != nil {
		s.failRun(ctx, run, genErr)
		return nil, genErr
	}

	// Hard validation gate: non-empty phase list, every phase with at least
	// one focus label. No silent repair, no retry at this layer.
	if err := domain.ValidatePhases(result.Phases); err != nil {
		err = fmt.Errorf("%w: %v", ErrPhaseValidation, err)
		s.failRun(ctx, run, err)
		return nil, err
	}
	for i := range result.Phases {
		phase := &result.Phases[i]
		for w := range phase.Weeks {
			// Weeks do not exist without a phase; enforce the referential tag.
			phase.Weeks[w].PhaseID = phase.PhaseID
		}
	}

	// Phase data is authoritative: a persistence failure makes the whole run
	// worthless and is fatal.
	for i := range result.Phases {
		if _, err := s.store.SavePhase(ctx, &result.Phases[i]); err != nil {
			err = fmt.Errorf("%w: %v", ErrPhasePersistence, err)
			s.failRun(ctx, run, err)
			return nil, err
		}
	}

	run.Status = domain.RunCompleted
	run.PhaseCount = len(result.Phases)
	s.recordRun(ctx, run)

	return result.Phases, nil
}

func (s *phaseService) recordRun(ctx context.Context, run *domain.PlanningRun) {
	if s.runRepo == nil {
		return
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		log.Printf("WARN: failed to record planning run %s: %v", run.RunID, err)
	}
}

func (s *phaseService) failRun(ctx context.Context, run *domain.PlanningRun, cause error) {
	run.Status = domain.RunFailed
	run.Error = cause.Error()
	s.recordRun(ctx, run)
}

// archiveTranscript stores the prompt/response pair of one generation call.
// Archiving is best effort and never affects the pipeline result.
func archiveTranscript(ctx context.Context, archive storage.TranscriptArchive, runID, stage, schemaName, promptText string, result any, genErr error) {
	if archive == nil {
		return
	}
	t := storage.Transcript{
		RunID:  runID,
		Stage:  stage,
		Schema: schemaName,
		Prompt: promptText,
	}
	if genErr != nil {
		t.Error = genErr.Error()
	} else if encoded, err := json.Marshal(result); err == nil {
		t.Response = string(encoded)
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return
	}
	key := fmt.Sprintf("transcripts/%s/%s-%s.json", runID, stage, uuid.NewString())
	if err := archive.PutTranscript(ctx, key, payload); err != nil {
		log.Printf("WARN: failed to archive %s transcript for run %s: %v", stage, runID, err)
	}
}

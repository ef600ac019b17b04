package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fafnerzhang/codetrekking/internal/domain"
	"github.com/fafnerzhang/codetrekking/internal/generation"
	"github.com/fafnerzhang/codetrekking/internal/repository"
)

// scriptedCall is one canned generation result: either a JSON payload decoded
// into the caller's output value, or an error.
type scriptedCall struct {
	payload string
	err     error
}

// fakeGenClient returns scripted results in order and records every prompt it
// saw. When the script runs out it keeps replaying the last entry.
type fakeGenClient struct {
	mu      sync.Mutex
	script  []scriptedCall
	calls   int
	prompts []string
}

func (f *fakeGenClient) Generate(ctx context.Context, promptText string, schema *generation.Schema, out any) error {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, promptText)
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	call := f.script[idx]
	f.mu.Unlock()

	if call.err != nil {
		return call.err
	}
	return json.Unmarshal([]byte(call.payload), out)
}

func (f *fakeGenClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeStore records saves in memory, keyed by id to model the storage layer's
// upsert-by-id contract.
type fakeStore struct {
	mu         sync.Mutex
	phases     map[string]*domain.TrainingPhase
	workouts   map[string]*domain.WorkoutPlan
	phaseErr   error
	workoutErr error
	noCred     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		phases:   make(map[string]*domain.TrainingPhase),
		workouts: make(map[string]*domain.WorkoutPlan),
	}
}

func (f *fakeStore) SavePhase(ctx context.Context, phase *domain.TrainingPhase) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phaseErr != nil {
		return false, f.phaseErr
	}
	if f.noCred {
		return false, nil
	}
	f.phases[phase.PhaseID] = phase
	return true, nil
}

func (f *fakeStore) SaveWorkout(ctx context.Context, plan *domain.WorkoutPlan, workoutType string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.workoutErr != nil {
		return false, f.workoutErr
	}
	if f.noCred {
		return false, nil
	}
	f.workouts[plan.WorkoutID] = plan
	return true, nil
}

// fakeRunRepo keeps run records in memory, upsert-by-id.
type fakeRunRepo struct {
	mu   sync.Mutex
	runs map[string]domain.PlanningRun
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[string]domain.PlanningRun)}
}

func (f *fakeRunRepo) Save(ctx context.Context, run *domain.PlanningRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[run.RunID] = *run
	return nil
}

func (f *fakeRunRepo) GetByID(ctx context.Context, runID string) (*domain.PlanningRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[runID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &run, nil
}

func (f *fakeRunRepo) List(ctx context.Context, limit int64) ([]domain.PlanningRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PlanningRun
	for _, r := range f.runs {
		out = append(out, r)
	}
	return out, nil
}

// fakeArchive records transcript keys in order.
type fakeArchive struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeArchive) PutTranscript(ctx context.Context, key string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeRunRepo) statuses() map[string]domain.RunStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]domain.RunStatus, len(f.runs))
	for id, r := range f.runs {
		out[id] = r.Status
	}
	return out
}

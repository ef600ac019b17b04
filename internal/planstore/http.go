package planstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fafnerzhang/codetrekking/internal/config"
	"github.com/fafnerzhang/codetrekking/internal/domain"
)

const requestTimeout = 15 * time.Second

// httpStore implements Store against the training-plan REST API.
type httpStore struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPStore builds the persistence client. An empty token yields a client
// that skips every save.
func NewHTTPStore(cfg config.PlanStoreConfig) Store {
	return &httpStore{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// phaseBulkBody mirrors POST /training-plans/phases/bulk.
type phaseBulkBody struct {
	PhaseID      string         `json:"phase_id"`
	Name         string         `json:"name"`
	Tag          string         `json:"tag"`
	Description  string         `json:"description"`
	WorkoutFocus []string       `json:"workout_focus"`
	Weeks        []weekBulkBody `json:"weeks"`
}

type weekBulkBody struct {
	WeekID           string                   `json:"week_id"`
	PhaseID          string                   `json:"phase_id"`
	StartDate        domain.Date              `json:"start_date"`
	EndDate          domain.Date              `json:"end_date"`
	Description      string                   `json:"description"`
	WeeklyMileage    *float64                 `json:"weekly_mileage,omitempty"`
	CriticalWorkouts []domain.CriticalWorkout `json:"critical_workouts"`
}

// workoutBody mirrors POST /training-plans/workouts.
type workoutBody struct {
	PhaseID     string               `json:"phase_id"`
	WeekID      string               `json:"week_id"`
	Name        string               `json:"name"`
	DayOfWeek   int                  `json:"day_of_week"`
	WorkoutType string               `json:"workout_type"`
	Segments    []domain.WorkoutItem `json:"segments"`
	Metadata    workoutMetadata      `json:"workout_metadata"`
}

type workoutMetadata struct {
	EstimatedTSS  *float64 `json:"estimated_tss"`
	TotalTime     *float64 `json:"total_time"`
	TotalDistance *float64 `json:"total_distance"`
	Description   string   `json:"description"`
}

func (s *httpStore) SavePhase(ctx context.Context, phase *domain.TrainingPhase) (bool, error) {
	if s.token == "" {
		log.Printf("planstore: no credential configured, skipping phase %s", phase.PhaseID)
		return false, nil
	}
	body := phaseBulkBody{
		PhaseID:      phase.PhaseID,
		Name:         phase.Name,
		Tag:          phase.Tag,
		Description:  phase.Description,
		WorkoutFocus: phase.WorkoutFocus,
	}
	for _, w := range phase.Weeks {
		body.Weeks = append(body.Weeks, weekBulkBody{
			WeekID:           w.WeekID,
			PhaseID:          w.PhaseID,
			StartDate:        w.StartDate,
			EndDate:          w.EndDate,
			Description:      w.Description,
			WeeklyMileage:    w.WeeklyMileageKm,
			CriticalWorkouts: w.CriticalWorkouts,
		})
	}
	if err := s.post(ctx, "/training-plans/phases/bulk", body); err != nil {
		return false, fmt.Errorf("save phase %s: %w", phase.PhaseID, err)
	}
	return true, nil
}

func (s *httpStore) SaveWorkout(ctx context.Context, plan *domain.WorkoutPlan, workoutType string) (bool, error) {
	if s.token == "" {
		log.Printf("planstore: no credential configured, skipping workout %s", plan.WorkoutID)
		return false, nil
	}
	body := workoutBody{
		PhaseID:     plan.PhaseID,
		WeekID:      plan.WeekID,
		Name:        plan.Title,
		DayOfWeek:   StorageDayOfWeek(plan.Date),
		WorkoutType: workoutType,
		Segments:    plan.Detail,
		Metadata: workoutMetadata{
			EstimatedTSS:  plan.EstimatedTSS,
			TotalTime:     plan.TotalTimeMin,
			TotalDistance: plan.TotalDistanceKm,
			Description:   plan.Description,
		},
	}
	if err := s.post(ctx, "/training-plans/workouts", body); err != nil {
		return false, fmt.Errorf("save workout %s: %w", plan.WorkoutID, err)
	}
	return true, nil
}

func (s *httpStore) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		diag, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("ERROR: planstore %s returned %d: %s", path, resp.StatusCode, diag)
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, diag)
	}
	return nil
}

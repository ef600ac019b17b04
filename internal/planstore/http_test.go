package planstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fafnerzhang/codetrekking/internal/config"
	"github.com/fafnerzhang/codetrekking/internal/domain"
)

func TestStorageDayOfWeek(t *testing.T) {
	// Go counts Sunday=0; the persistence API counts Monday=0.
	tests := []struct {
		date domain.Date
		want int
	}{
		{domain.NewDate(2026, time.January, 5), 0},  // Monday
		{domain.NewDate(2026, time.January, 7), 2},  // Wednesday
		{domain.NewDate(2026, time.January, 10), 5}, // Saturday
		{domain.NewDate(2026, time.January, 11), 6}, // Sunday
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StorageDayOfWeek(tt.date), tt.date.String())
	}
}

func testPhase() *domain.TrainingPhase {
	mileage := 45.0
	return &domain.TrainingPhase{
		PhaseID:      "base",
		Name:         "Base",
		Tag:          "base",
		Description:  "aerobic base",
		WorkoutFocus: []string{"aerobic endurance"},
		Weeks: []domain.TrainingWeek{{
			WeekID:          "base-w1",
			PhaseID:         "base",
			StartDate:       domain.NewDate(2026, time.January, 5),
			EndDate:         domain.NewDate(2026, time.January, 11),
			Description:     "easy volume",
			WeeklyMileageKm: &mileage,
			CriticalWorkouts: []domain.CriticalWorkout{
				{ID: "long-run-1", Description: "long run"},
				{ID: "tempo-1", Description: "tempo"},
			},
		}},
	}
}

func TestHTTPStoreSavePhase(t *testing.T) {
	t.Run("posts the bulk body with the bearer token", func(t *testing.T) {
		var got phaseBulkBody
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/training-plans/phases/bulk", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		store := NewHTTPStore(config.PlanStoreConfig{BaseURL: srv.URL, Token: "secret"})
		stored, err := store.SavePhase(context.Background(), testPhase())
		require.NoError(t, err)
		assert.True(t, stored)

		assert.Equal(t, "base", got.PhaseID)
		require.Len(t, got.Weeks, 1)
		assert.Equal(t, "base-w1", got.Weeks[0].WeekID)
		assert.Equal(t, "2026-01-05", got.Weeks[0].StartDate.String())
	})

	t.Run("skips without a credential", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected without a credential")
		}))
		defer srv.Close()

		store := NewHTTPStore(config.PlanStoreConfig{BaseURL: srv.URL})
		stored, err := store.SavePhase(context.Background(), testPhase())
		require.NoError(t, err)
		assert.False(t, stored)
	})

	t.Run("surfaces a non-2xx response with its body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail": "phase_id already exists"}`, http.StatusConflict)
		}))
		defer srv.Close()

		store := NewHTTPStore(config.PlanStoreConfig{BaseURL: srv.URL, Token: "secret"})
		stored, err := store.SavePhase(context.Background(), testPhase())
		assert.False(t, stored)
		assert.ErrorContains(t, err, "save phase base")
		assert.ErrorContains(t, err, "409")
		assert.ErrorContains(t, err, "phase_id already exists")
	})
}

func TestHTTPStoreSaveWorkout(t *testing.T) {
	tss := 68.0
	plan := &domain.WorkoutPlan{
		Title:        "Tempo Tuesday",
		Description:  "threshold intervals",
		Detail:       []domain.WorkoutItem{},
		EstimatedTSS: &tss,
		WorkoutID:    "d2",
		WeekID:       "base-w1",
		PhaseID:      "base",
		Date:         domain.NewDate(2026, time.January, 6), // Tuesday
	}

	t.Run("posts the workout with converted day of week", func(t *testing.T) {
		var got workoutBody
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/training-plans/workouts", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		store := NewHTTPStore(config.PlanStoreConfig{BaseURL: srv.URL, Token: "secret"})
		stored, err := store.SaveWorkout(context.Background(), plan, "tempo run")
		require.NoError(t, err)
		assert.True(t, stored)

		assert.Equal(t, "Tempo Tuesday", got.Name)
		assert.Equal(t, 1, got.DayOfWeek)
		assert.Equal(t, "tempo run", got.WorkoutType)
		require.NotNil(t, got.Metadata.EstimatedTSS)
		assert.Equal(t, 68.0, *got.Metadata.EstimatedTSS)
		assert.Nil(t, got.Metadata.TotalTime)
	})

	t.Run("saving twice hits the same id", func(t *testing.T) {
		// The API upserts by id; the client's job is only to send the same
		// identity both times.
		var mu sync.Mutex
		seen := map[string]int{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body workoutBody
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			mu.Lock()
			seen[body.WeekID+"/"+body.Name]++
			mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		store := NewHTTPStore(config.PlanStoreConfig{BaseURL: srv.URL, Token: "secret"})
		for i := 0; i < 2; i++ {
			_, err := store.SaveWorkout(context.Background(), plan, "tempo run")
			require.NoError(t, err)
		}
		assert.Len(t, seen, 1)
		assert.Equal(t, 2, seen["base-w1/Tempo Tuesday"])
	})
}

// Package planstore is the outbound client for the training-plan persistence
// API. Phase data is authoritative and must be durably saved; individual
// workouts are cheaply regenerable, so their persistence is best effort. Both
// saves are idempotent by id at the storage layer.
package planstore

import (
	"context"

	"github.com/fafnerzhang/codetrekking/internal/domain"
)

// Store pushes generated artifacts to the persistence API.
//
// The boolean result reports whether the artifact was actually stored. A
// missing credential is not an error: the call is skipped and (false, nil)
// returned. A non-2xx response is a failure; the caller decides whether it is
// fatal (phases) or tolerated (workouts).
type Store interface {
	SavePhase(ctx context.Context, phase *domain.TrainingPhase) (bool, error)
	SaveWorkout(ctx context.Context, plan *domain.WorkoutPlan, workoutType string) (bool, error)
}

// StorageDayOfWeek converts a calendar date to the persistence API's
// day-of-week convention. Go and the generation side count Sunday=0; the
// storage side counts Monday=0. The off-by-one translation lives here and
// nowhere else.
func StorageDayOfWeek(d domain.Date) int {
	return (int(d.Weekday()) + 6) % 7
}

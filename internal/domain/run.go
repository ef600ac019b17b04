package domain

import (
	"time"
)

// RunStatus tracks the lifecycle of one planning run record.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunKind distinguishes the two pipeline entry points.
type RunKind string

const (
	RunPhasePlanning RunKind = "phase_planning"
	RunWorkoutBatch  RunKind = "workout_batch"
)

// PlanningRun is the audit record of one pipeline invocation. It is stored
// keyed by RunID so a retried write never duplicates.
type PlanningRun struct {
	RunID     string    `bson:"_id" json:"run_id"`
	Kind      RunKind   `bson:"kind" json:"kind"`
	Status    RunStatus `bson:"status" json:"status"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`

	// Phase planning runs.
	GoalRaceDate time.Time `bson:"goalRaceDate,omitempty" json:"goal_race_date,omitempty"`
	WeeksToRace  int       `bson:"weeksToRace,omitempty" json:"weeks_to_race,omitempty"`
	PhaseCount   int       `bson:"phaseCount,omitempty" json:"phase_count,omitempty"`

	// Workout batch runs.
	PhaseID      string `bson:"phaseId,omitempty" json:"phase_id,omitempty"`
	WeekID       string `bson:"weekId,omitempty" json:"week_id,omitempty"`
	WorkoutCount int    `bson:"workoutCount,omitempty" json:"workout_count,omitempty"`
}

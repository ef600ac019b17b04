package api

import (
	"errors"
	"net/http"

	"github.com/fafnerzhang/codetrekking/internal/domain"
	"github.com/fafnerzhang/codetrekking/internal/generation"
	"github.com/fafnerzhang/codetrekking/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler exposes the two pipeline entry points.
type PlanHandler struct {
	phaseService   service.PhaseService
	weekService    service.WeekService
	workoutService service.WorkoutService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(phaseService service.PhaseService, weekService service.WeekService, workoutService service.WorkoutService) *PlanHandler {
	return &PlanHandler{
		phaseService:   phaseService,
		weekService:    weekService,
		workoutService: workoutService,
	}
}

// --- DTOs for API (Data Transfer Objects) ---

// RaceEventRequest is one race-schedule entry.
type RaceEventRequest struct {
	Date     string  `json:"date" binding:"required"`
	Priority string  `json:"priority" binding:"required,oneof=A B C"`
	Distance float64 `json:"distance" binding:"required,gt=0"`
	Name     string  `json:"name"`
}

// GeneratePhasesRequest defines the expected JSON for phase planning.
type GeneratePhasesRequest struct {
	RaceSchedule         []RaceEventRequest `json:"race_schedule" binding:"required,min=1"`
	TargetDistance       float64            `json:"target_distance" binding:"required,gt=0"`
	CurrentWeeklyMileage float64            `json:"current_weekly_mileage" binding:"required,gt=0"`
	ExperienceLevel      string             `json:"experience_level" binding:"required"`
	AvailableDaysPerWeek int                `json:"available_days_per_week" binding:"required,min=3,max=7"`

	ThresholdPaceMinKm float64 `json:"threshold_pace_min_km"`
	MaxHeartRate       int     `json:"max_heart_rate"`
}

// GeneratePhasesResponse wraps the generated phase list.
type GeneratePhasesResponse struct {
	Phases []domain.TrainingPhase `json:"phases"`
}

// GenerateWorkoutsRequest defines the expected JSON for detailed workout
// generation over one training week.
type GenerateWorkoutsRequest struct {
	TrainingWeek         domain.TrainingWeek `json:"training_week" binding:"required"`
	AvailableDaysPerWeek int                 `json:"available_days_per_week" binding:"required,min=3,max=7"`
	PhaseID              string              `json:"phase_id"`

	ExperienceLevel    string  `json:"experience_level"`
	ThresholdPaceMinKm float64 `json:"threshold_pace_min_km"`
	MaxHeartRate       int     `json:"max_heart_rate"`
}

// GenerateWorkoutsResponse maps workout ids to generated plans.
type GenerateWorkoutsResponse struct {
	Workouts map[string]*domain.WorkoutPlan `json:"workouts"`
}

// --- Handler Methods ---

// GeneratePhases handles POST /plans/phases.
func (h *PlanHandler) GeneratePhases(c *gin.Context) {
	var req GeneratePhasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	races := make([]domain.RaceEvent, 0, len(req.RaceSchedule))
	for _, r := range req.RaceSchedule {
		date, err := domain.ParseDate(r.Date)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		races = append(races, domain.RaceEvent{
			Date:       date,
			Priority:   domain.RacePriority(r.Priority),
			DistanceKm: r.Distance,
			Name:       r.Name,
		})
	}

	planReq := service.PlanRequest{
		Profile: domain.AthleteProfile{
			Experience:          domain.ExperienceLevel(req.ExperienceLevel),
			WeeklyMileageKm:     req.CurrentWeeklyMileage,
			TrainingDaysPerWeek: req.AvailableDaysPerWeek,
			ThresholdPaceMinKm:  req.ThresholdPaceMinKm,
			MaxHeartRate:        req.MaxHeartRate,
		},
		Races:            races,
		TargetDistanceKm: req.TargetDistance,
	}

	phases, err := h.phaseService.GeneratePhases(c.Request.Context(), planReq)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, GeneratePhasesResponse{Phases: phases})
}

// GenerateWorkouts handles POST /plans/workouts: week enhancement followed by
// the concurrent daily expansion.
func (h *PlanHandler) GenerateWorkouts(c *gin.Context) {
	var req GenerateWorkoutsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	week := req.TrainingWeek
	if req.PhaseID != "" {
		week.PhaseID = req.PhaseID
	}

	requests, err := h.weekService.EnhanceWeek(c.Request.Context(), week, req.AvailableDaysPerWeek)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	profile := domain.AthleteProfile{
		Experience:         domain.ExperienceLevel(req.ExperienceLevel),
		ThresholdPaceMinKm: req.ThresholdPaceMinKm,
		MaxHeartRate:       req.MaxHeartRate,
	}
	plans, err := h.workoutService.GenerateDetailedWorkouts(c.Request.Context(), requests, profile)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateWorkoutsResponse{Workouts: plans})
}

// respondPlanError maps pipeline failures onto HTTP statuses: precondition
// violations to 400, upstream generation trouble to 502, everything else 500.
func respondPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoRaces),
		errors.Is(err, domain.ErrNoGoalRace),
		errors.Is(err, domain.ErrInvalidExperience),
		errors.Is(err, domain.ErrInvalidTrainingDays),
		errors.Is(err, service.ErrRaceInPast),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, service.ErrBatchTooLarge),
		errors.Is(err, service.ErrDuplicateIDs):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case generation.IsKind(err, generation.Timeout),
		generation.IsKind(err, generation.TransportError),
		generation.IsKind(err, generation.NoStructuredOutput):
		abortWithError(c, http.StatusBadGateway, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, err.Error())
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/fafnerzhang/codetrekking/internal/config"
	"github.com/fafnerzhang/codetrekking/internal/domain"
	"github.com/fafnerzhang/codetrekking/internal/generation"
	"github.com/fafnerzhang/codetrekking/internal/planstore"
	"github.com/fafnerzhang/codetrekking/internal/prompt"
	"github.com/fafnerzhang/codetrekking/internal/service"
	"github.com/fafnerzhang/codetrekking/internal/storage"

	"github.com/spf13/cobra"
)

var (
	configPath string
	inputFile  string
)

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Run the training-plan generation pipeline from the command line",
	Long:  "planctl drives the phase planner and workout expander directly, without the HTTP server, reading its input from a JSON file and printing the result to stdout.",
}

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Generate periodized training phases from a plan request",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPhases(cmd.Context())
	},
}

var workoutsCmd = &cobra.Command{
	Use:   "workouts",
	Short: "Expand one training week into detailed daily workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkouts(cmd.Context())
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "input", "i", "", "JSON input file (defaults to stdin)")
	rootCmd.AddCommand(phasesCmd)
	rootCmd.AddCommand(workoutsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// pipeline bundles the wired services. The CLI skips the run repository; runs
// are only recorded when going through the server.
type pipeline struct {
	phases   service.PhaseService
	weeks    service.WeekService
	workouts service.WorkoutService
}

func buildPipeline() (*pipeline, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	genClient, err := generation.NewOpenAIClient(cfg.Generation)
	if err != nil {
		return nil, err
	}

	var archive storage.TranscriptArchive = storage.NopArchive{}
	if cfg.S3.BucketName != "" {
		archive, err = storage.NewS3Archive(cfg.S3)
		if err != nil {
			return nil, err
		}
	}

	store := planstore.NewHTTPStore(cfg.PlanStore)
	if cfg.PlanStore.Token == "" {
		log.Println("No planstore credential configured; results will not be persisted.")
	}

	composer := &prompt.Composer{Methodology: cfg.Planner.Methodology}
	return &pipeline{
		phases: service.NewPhaseService(genClient, composer, store, nil, archive),
		weeks:  service.NewWeekService(genClient, composer, archive),
		workouts: service.NewWorkoutService(genClient, composer, store, nil, archive, service.WorkoutServiceOptions{
			FanoutConcurrency: cfg.Planner.FanoutConcurrency,
			RetryAttempts:     cfg.Planner.RetryAttempts,
			BackoffBase:       cfg.Planner.BackoffBase,
		}),
	}, nil
}

// phasesInput mirrors the generate-phases entry point.
type phasesInput struct {
	RaceSchedule []struct {
		Date     string  `json:"date"`
		Priority string  `json:"priority"`
		Distance float64 `json:"distance"`
		Name     string  `json:"name"`
	} `json:"race_schedule"`
	TargetDistance       float64 `json:"target_distance"`
	CurrentWeeklyMileage float64 `json:"current_weekly_mileage"`
	ExperienceLevel      string  `json:"experience_level"`
	AvailableDaysPerWeek int     `json:"available_days_per_week"`
}

func runPhases(ctx context.Context) error {
	pipe, err := buildPipeline()
	if err != nil {
		return err
	}

	var in phasesInput
	if err := readInput(&in); err != nil {
		return err
	}

	races := make([]domain.RaceEvent, 0, len(in.RaceSchedule))
	for _, r := range in.RaceSchedule {
		date, err := domain.ParseDate(r.Date)
		if err != nil {
			return err
		}
		races = append(races, domain.RaceEvent{
			Date:       date,
			Priority:   domain.RacePriority(r.Priority),
			DistanceKm: r.Distance,
			Name:       r.Name,
		})
	}

	phases, err := pipe.phases.GeneratePhases(ctx, service.PlanRequest{
		Profile: domain.AthleteProfile{
			Experience:          domain.ExperienceLevel(in.ExperienceLevel),
			WeeklyMileageKm:     in.CurrentWeeklyMileage,
			TrainingDaysPerWeek: in.AvailableDaysPerWeek,
		},
		Races:            races,
		TargetDistanceKm: in.TargetDistance,
	})
	if err != nil {
		return err
	}
	return writeOutput(map[string]any{"phases": phases})
}

// workoutsInput mirrors the generate-detailed-workouts entry point.
type workoutsInput struct {
	TrainingWeek         domain.TrainingWeek `json:"training_week"`
	AvailableDaysPerWeek int                 `json:"available_days_per_week"`
	PhaseID              string              `json:"phase_id"`
}

func runWorkouts(ctx context.Context) error {
	pipe, err := buildPipeline()
	if err != nil {
		return err
	}

	var in workoutsInput
	if err := readInput(&in); err != nil {
		return err
	}
	week := in.TrainingWeek
	if in.PhaseID != "" {
		week.PhaseID = in.PhaseID
	}

	requests, err := pipe.weeks.EnhanceWeek(ctx, week, in.AvailableDaysPerWeek)
	if err != nil {
		return err
	}
	plans, err := pipe.workouts.GenerateDetailedWorkouts(ctx, requests, domain.AthleteProfile{})
	if err != nil {
		return err
	}
	return writeOutput(map[string]any{"workouts": plans})
}

func readInput(v any) error {
	reader := os.Stdin
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		reader = f
	}
	return json.NewDecoder(reader).Decode(v)
}

func writeOutput(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package domain

import (
	"encoding/json"
	"fmt"
)

// Range is a closed numeric interval used for distance (km) and time (minutes)
// targets.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate checks min <= max.
func (r Range) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("range min %.2f exceeds max %.2f", r.Min, r.Max)
	}
	return nil
}

// DailyWorkoutRequest is the bridge between a training week and a concrete
// workout plan. It is derived by the week enhancer (never authored by a caller)
// and consumed immediately by the daily expander; it is not persisted on its
// own.
type DailyWorkoutRequest struct {
	ID               string `json:"id"`
	Date             Date   `json:"date"`
	WorkoutType      string `json:"workout_type"`
	Target           string `json:"target"`
	DistanceKm       *Range `json:"distance_km,omitempty"`
	TimeMinutes      *Range `json:"time_minutes,omitempty"`
	ZoneDistribution string `json:"zone_distribution,omitempty"`
	TargetZone       string `json:"target_zone,omitempty"`

	// Referential tags attached by the week enhancer.
	PhaseID string `json:"phase_id,omitempty"`
	WeekID  string `json:"week_id,omitempty"`
}

// Validate checks the optional ranges when present.
func (d *DailyWorkoutRequest) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("daily workout request is missing an id")
	}
	if d.DistanceKm != nil {
		if err := d.DistanceKm.Validate(); err != nil {
			return fmt.Errorf("workout %s distance: %w", d.ID, err)
		}
	}
	if d.TimeMinutes != nil {
		if err := d.TimeMinutes.Validate(); err != nil {
			return fmt.Errorf("workout %s time: %w", d.ID, err)
		}
	}
	return nil
}

// IsRestDay reports whether the request describes a rest day. Rest days expand
// to an empty plan without touching the generation backend.
func (d *DailyWorkoutRequest) IsRestDay() bool {
	switch d.WorkoutType {
	case "rest", "rest day", "rest_day":
		return true
	}
	return false
}

// IntensityMetric is the measurement a segment target is expressed in.
type IntensityMetric string

const (
	MetricPace      IntensityMetric = "pace"
	MetricPower     IntensityMetric = "power"
	MetricHeartRate IntensityMetric = "heart_rate"
)

// WorkoutItemType tags the variants of a workout plan item.
type WorkoutItemType string

const (
	ItemSegment   WorkoutItemType = "segment"
	ItemLoopStart WorkoutItemType = "loop_start"
	ItemLoopEnd   WorkoutItemType = "loop_end"
)

// WorkoutSegment is one continuous effort inside a workout.
type WorkoutSegment struct {
	DurationMinutes float64         `json:"duration_minutes"`
	DistanceKm      *Range          `json:"distance_km,omitempty"`
	Intensity       IntensityMetric `json:"intensity_metric"`
	Target          Range           `json:"target"`
	Description     string          `json:"description"`
	PerceivedEffort float64         `json:"perceived_effort"`
}

// LoopMarker opens or closes a repeated block of segments. Repeat is only
// meaningful on the opening marker.
type LoopMarker struct {
	ID     string `json:"id"`
	Repeat int    `json:"repeat,omitempty"`
}

// WorkoutItem is a closed union: exactly one of Segment or Loop is set,
// according to Type.
type WorkoutItem struct {
	Type    WorkoutItemType
	Segment *WorkoutSegment
	Loop    *LoopMarker
}

// workoutItemWire is the flat JSON representation shared with the generation
// backend.
type workoutItemWire struct {
	Type            WorkoutItemType `json:"type"`
	DurationMinutes float64         `json:"duration_minutes,omitempty"`
	DistanceKm      *Range          `json:"distance_km,omitempty"`
	Intensity       IntensityMetric `json:"intensity_metric,omitempty"`
	Target          *Range          `json:"target,omitempty"`
	Description     string          `json:"description,omitempty"`
	PerceivedEffort float64         `json:"perceived_effort,omitempty"`
	ID              string          `json:"id,omitempty"`
	Repeat          int             `json:"repeat,omitempty"`
}

func (i WorkoutItem) MarshalJSON() ([]byte, error) {
	w := workoutItemWire{Type: i.Type}
	switch i.Type {
	case ItemSegment:
		if i.Segment == nil {
			return nil, fmt.Errorf("segment item has no segment payload")
		}
		w.DurationMinutes = i.Segment.DurationMinutes
		w.DistanceKm = i.Segment.DistanceKm
		w.Intensity = i.Segment.Intensity
		t := i.Segment.Target
		w.Target = &t
		w.Description = i.Segment.Description
		w.PerceivedEffort = i.Segment.PerceivedEffort
	case ItemLoopStart, ItemLoopEnd:
		if i.Loop == nil {
			return nil, fmt.Errorf("%s item has no loop payload", i.Type)
		}
		w.ID = i.Loop.ID
		w.Repeat = i.Loop.Repeat
	default:
		return nil, fmt.Errorf("unknown workout item type %q", i.Type)
	}
	return json.Marshal(w)
}

func (i *WorkoutItem) UnmarshalJSON(data []byte) error {
	var w workoutItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case ItemSegment:
		seg := &WorkoutSegment{
			DurationMinutes: w.DurationMinutes,
			DistanceKm:      w.DistanceKm,
			Intensity:       w.Intensity,
			Description:     w.Description,
			PerceivedEffort: w.PerceivedEffort,
		}
		if w.Target != nil {
			seg.Target = *w.Target
		}
		*i = WorkoutItem{Type: ItemSegment, Segment: seg}
	case ItemLoopStart, ItemLoopEnd:
		*i = WorkoutItem{Type: w.Type, Loop: &LoopMarker{ID: w.ID, Repeat: w.Repeat}}
	default:
		return fmt.Errorf("unknown workout item type %q", w.Type)
	}
	return nil
}

// WorkoutPlan is the terminal artifact of the pipeline: a fully segmented
// session ready for an athlete's calendar.
type WorkoutPlan struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Detail      []WorkoutItem `json:"detail"`

	EstimatedTSS    *float64 `json:"estimated_tss"`
	TotalTimeMin    *float64 `json:"total_time"`
	TotalDistanceKm *float64 `json:"total_distance"`

	// Identity attached after generation, before persistence.
	WorkoutID string `json:"workout_id,omitempty"`
	WeekID    string `json:"week_id,omitempty"`
	PhaseID   string `json:"phase_id,omitempty"`
	Date      Date   `json:"date,omitempty"`

	// Stored reports whether the persistence call succeeded. Workout detail is
	// regenerable, so a false value is not an error.
	Stored bool `json:"stored"`
}

// ValidateDetail enforces segment bounds and loop bracket matching with a
// single stack-based scan. Every loop_start must be closed by a loop_end with
// the same id, properly nested, and a loop_end must never appear without an
// open loop_start.
func (p *WorkoutPlan) ValidateDetail() error {
	var stack []*LoopMarker
	for idx, item := range p.Detail {
		switch item.Type {
		case ItemSegment:
			if item.Segment == nil {
				return fmt.Errorf("item %d: segment without payload", idx)
			}
			if item.Segment.DurationMinutes < 0.1 {
				return fmt.Errorf("item %d: segment duration %.3f below 0.1 minutes", idx, item.Segment.DurationMinutes)
			}
			if item.Segment.PerceivedEffort < 0 || item.Segment.PerceivedEffort > 10 {
				return fmt.Errorf("item %d: perceived effort %.1f outside 0-10", idx, item.Segment.PerceivedEffort)
			}
			if item.Segment.DistanceKm != nil {
				if err := item.Segment.DistanceKm.Validate(); err != nil {
					return fmt.Errorf("item %d: %w", idx, err)
				}
			}
			switch item.Segment.Intensity {
			case MetricPace, MetricPower, MetricHeartRate:
			default:
				return fmt.Errorf("item %d: unknown intensity metric %q", idx, item.Segment.Intensity)
			}
		case ItemLoopStart:
			if item.Loop == nil || item.Loop.ID == "" {
				return fmt.Errorf("item %d: loop_start without id", idx)
			}
			if item.Loop.Repeat < 1 {
				return fmt.Errorf("item %d: loop %s repeat %d below 1", idx, item.Loop.ID, item.Loop.Repeat)
			}
			stack = append(stack, item.Loop)
		case ItemLoopEnd:
			if item.Loop == nil || item.Loop.ID == "" {
				return fmt.Errorf("item %d: loop_end without id", idx)
			}
			if len(stack) == 0 {
				return fmt.Errorf("item %d: loop_end %s without open loop", idx, item.Loop.ID)
			}
			open := stack[len(stack)-1]
			if open.ID != item.Loop.ID {
				return fmt.Errorf("item %d: loop_end %s does not match open loop %s", idx, item.Loop.ID, open.ID)
			}
			stack = stack[:len(stack)-1]
		default:
			return fmt.Errorf("item %d: unknown item type %q", idx, item.Type)
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("loop %s is never closed", stack[len(stack)-1].ID)
	}
	return nil
}

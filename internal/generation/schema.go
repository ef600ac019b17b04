package generation

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a declared output shape: the raw JSON-Schema document sent to the
// backend plus its compiled form used to validate what comes back.
type Schema struct {
	Name     string
	raw      json.RawMessage
	compiled *jsonschema.Schema
}

// MustSchema compiles a JSON-Schema document, panicking on malformed input.
// Schemas are package-level constants, so a failure here is a programming
// error caught at init.
func MustSchema(name, doc string) *Schema {
	compiled, err := jsonschema.CompileString(name+".json", doc)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	return &Schema{Name: name, raw: json.RawMessage(doc), compiled: compiled}
}

// Raw returns the schema document for the request payload.
func (s *Schema) Raw() json.RawMessage { return s.raw }

// Check validates a decoded payload against the schema.
func (s *Schema) Check(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("payload is not JSON: %w", err)
	}
	if err := s.compiled.Validate(doc); err != nil {
		return fmt.Errorf("payload violates schema %s: %w", s.Name, err)
	}
	return nil
}

const rangeSchema = `{
  "type": "object",
  "properties": {
    "min": {"type": "number"},
    "max": {"type": "number"}
  },
  "required": ["min", "max"]
}`

const datePattern = `"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"`

// PhaseListSchema declares the phase-planner output: an object with a phases
// array of 3-5 periodized phases.
var PhaseListSchema = MustSchema("training_phases", `{
  "type": "object",
  "properties": {
    "phases": {
      "type": "array",
      "minItems": 3,
      "maxItems": 5,
      "items": {
        "type": "object",
        "properties": {
          "phase_id": {"type": "string"},
          "name": {"type": "string"},
          "tag": {"type": "string"},
          "description": {"type": "string"},
          "workout_focus": {"type": "array", "items": {"type": "string"}},
          "weeks": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "properties": {
                "week_id": {"type": "string"},
                "phase_id": {"type": "string"},
                "start_date": {`+datePattern+`},
                "end_date": {`+datePattern+`},
                "description": {"type": "string"},
                "weekly_mileage": {"type": ["number", "null"]},
                "critical_workouts": {
                  "type": "array",
                  "minItems": 2,
                  "maxItems": 3,
                  "items": {
                    "type": "object",
                    "properties": {
                      "id": {"type": "string"},
                      "description": {"type": "string"}
                    },
                    "required": ["id", "description"]
                  }
                }
              },
              "required": ["week_id", "phase_id", "start_date", "end_date", "description", "critical_workouts"]
            }
          }
        },
        "required": ["phase_id", "name", "tag", "description", "workout_focus", "weeks"]
      }
    }
  },
  "required": ["phases"]
}`)

// DailyScheduleSchema declares the week-enhancer output: the full day-by-day
// schedule for one week.
var DailyScheduleSchema = MustSchema("daily_schedule", `{
  "type": "object",
  "properties": {
    "workouts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "date": {`+datePattern+`},
          "workout_type": {"type": "string"},
          "target": {"type": "string"},
          "distance_km": {"anyOf": [`+rangeSchema+`, {"type": "null"}]},
          "time_minutes": {"anyOf": [`+rangeSchema+`, {"type": "null"}]},
          "zone_distribution": {"type": ["string", "null"]},
          "target_zone": {"type": ["string", "null"]}
        },
        "required": ["id", "date", "workout_type", "target"]
      }
    }
  },
  "required": ["workouts"]
}`)

// WorkoutPlanSchema declares the daily-expander output: one segmented workout.
var WorkoutPlanSchema = MustSchema("workout_plan", `{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "description": {"type": "string"},
    "detail": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "type": {"enum": ["segment", "loop_start", "loop_end"]},
          "duration_minutes": {"type": "number"},
          "distance_km": {"anyOf": [`+rangeSchema+`, {"type": "null"}]},
          "intensity_metric": {"enum": ["pace", "power", "heart_rate"]},
          "target": `+rangeSchema+`,
          "description": {"type": "string"},
          "perceived_effort": {"type": "number", "minimum": 0, "maximum": 10},
          "id": {"type": "string"},
          "repeat": {"type": "integer", "minimum": 1}
        },
        "required": ["type"]
      }
    },
    "estimated_tss": {"type": ["number", "null"]},
    "total_time": {"type": ["number", "null"]},
    "total_distance": {"type": ["number", "null"]}
  },
  "required": ["title", "description", "detail", "estimated_tss", "total_time", "total_distance"]
}`)

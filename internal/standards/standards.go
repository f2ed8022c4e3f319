// Package standards loads and caches the declarative definition of each
// assessment standard: its criteria and weights, the score-to-CEFR band
// table, rounding precision, and the JSON schema an external judgment must
// satisfy. Definitions are immutable once loaded.
package standards

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// Supported lists the standard ids every evaluation covers, in the fixed
// order results are reported in.
var Supported = []string{"toefl", "ielts"}

// ErrNotFound is returned when no definition exists for a standard id.
var ErrNotFound = errors.New("standard definition not found")

// SignalWeights mixes the heuristic scorer's three signals for one
// criterion. Each criterion uses two of the three; the unused weight is
// zero. Weights within a criterion sum to 1.
type SignalWeights struct {
	Base      float64 `yaml:"base"`
	Diversity float64 `yaml:"diversity"`
	Fluency   float64 `yaml:"fluency"`
}

// Criterion is one named scoring dimension of a standard.
type Criterion struct {
	ID      string        `yaml:"id"`
	Label   string        `yaml:"label"`
	Weight  float64       `yaml:"weight"`
	Signals SignalWeights `yaml:"signals"`
}

// Band is one inclusive [Min,Max] score range tagged with a CEFR label.
// The band list is ordered and the first containing range wins; ranges are
// not guaranteed disjoint and no overlap validation happens here.
type Band struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Label string  `yaml:"label"`
}

// Standard is a fully loaded assessment standard definition.
type Standard struct {
	ID             string         `yaml:"id"`
	Label          string         `yaml:"label"`
	ScaleMax       float64        `yaml:"scale_max"`
	Precision      int            `yaml:"precision"`
	HalfPointSnap  bool           `yaml:"half_point_snap"`
	Criteria       []Criterion    `yaml:"criteria"`
	Bands          []Band         `yaml:"bands"`
	JudgmentSchema map[string]any `yaml:"judgment_schema"`

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
}

// CriterionLabels returns the id -> display label map for the standard.
func (s *Standard) CriterionLabels() map[string]string {
	labels := make(map[string]string, len(s.Criteria))
	for _, c := range s.Criteria {
		labels[c.ID] = c.Label
	}
	return labels
}

// ValidateJudgment checks a decoded judgment document against the
// standard's declared schema: required fields must be present and array
// fields must respect their min/max item bounds.
func (s *Standard) ValidateJudgment(judgment any) error {
	s.schemaOnce.Do(func() {
		s.schema, s.schemaErr = compileSchema(s.JudgmentSchema)
	})
	if s.schemaErr != nil {
		return fmt.Errorf("standard %s: judgment schema: %w", s.ID, s.schemaErr)
	}
	if s.schema == nil {
		return nil
	}
	if err := s.schema.Validate(judgment); err != nil {
		return fmt.Errorf("judgment failed %s validation: %w", s.ID, err)
	}
	return nil
}

// compileSchema round-trips the YAML-decoded schema map through JSON so the
// compiler sees canonical types, then compiles it.
func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	if schemaMap == nil {
		return nil, nil
	}

	raw, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("serialize schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("judgment.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("judgment.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// parse decodes and sanity-checks one standard definition.
func parse(id string, data []byte) (*Standard, error) {
	var std Standard
	if err := yaml.Unmarshal(data, &std); err != nil {
		return nil, fmt.Errorf("parse standard %s: %w", id, err)
	}

	if std.ID == "" {
		std.ID = id
	}
	if std.ID != id {
		return nil, fmt.Errorf("standard %s: definition declares id %q", id, std.ID)
	}
	if std.ScaleMax <= 0 {
		return nil, fmt.Errorf("standard %s: scale_max must be positive", id)
	}
	if len(std.Criteria) == 0 {
		return nil, fmt.Errorf("standard %s: no criteria declared", id)
	}

	sum := 0.0
	for _, c := range std.Criteria {
		if c.ID == "" {
			return nil, fmt.Errorf("standard %s: criterion with empty id", id)
		}
		sum += c.Weight
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return nil, fmt.Errorf("standard %s: criterion weights sum to %.4f, want 1", id, sum)
	}

	return &std, nil
}

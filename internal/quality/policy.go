package quality

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy is the configurable business rule behind quality scoring. The tier
// boundaries are fixed; how a record earns its score is not, so the weighting
// lives in a YAML file rather than in code.
type Policy struct {
	Weights    Weights    `yaml:"weights" json:"weights"`
	Saturation Saturation `yaml:"saturation" json:"saturation"`
}

// Weights splits the score across the three coverage components. Must sum to 1.
type Weights struct {
	Completeness float64 `yaml:"completeness" json:"completeness"` // populated / possible figures
	Analysts     float64 `yaml:"analysts" json:"analysts"`         // analyst-count saturation
	Reports      float64 `yaml:"reports" json:"reports"`           // report-count saturation
}

// Saturation sets the counts at which a component earns full marks.
type Saturation struct {
	FullAnalysts int `yaml:"full_analysts" json:"full_analysts"`
	FullReports  int `yaml:"full_reports" json:"full_reports"`
}

// DefaultPolicy returns the weighting used when no policy file is configured.
func DefaultPolicy() Policy {
	return Policy{
		Weights: Weights{
			Completeness: 0.5,
			Analysts:     0.3,
			Reports:      0.2,
		},
		Saturation: Saturation{
			FullAnalysts: 15,
			FullReports:  4,
		},
	}
}

// LoadPolicy reads a policy YAML file. Unknown fields fail the load so a
// typo'd weight cannot silently fall back to zero.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, err
	}

	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("decode policy %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("policy %s: %w", path, err)
	}

	return p, nil
}

// ValidationError reports a policy constraint violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the policy's constraints.
func (p Policy) Validate() error {
	for _, w := range []struct {
		field string
		value float64
	}{
		{"weights.completeness", p.Weights.Completeness},
		{"weights.analysts", p.Weights.Analysts},
		{"weights.reports", p.Weights.Reports},
	} {
		if w.value < 0 || w.value > 1 {
			return ValidationError{w.field, fmt.Sprintf("must be in [0, 1], got %v", w.value)}
		}
	}

	sum := p.Weights.Completeness + p.Weights.Analysts + p.Weights.Reports
	if math.Abs(sum-1.0) > 1e-6 {
		return ValidationError{"weights", fmt.Sprintf("must sum to 1.0, got %v", sum)}
	}

	if p.Saturation.FullAnalysts < 1 {
		return ValidationError{"saturation.full_analysts", "must be >= 1"}
	}
	if p.Saturation.FullReports < 1 {
		return ValidationError{"saturation.full_reports", "must be >= 1"}
	}

	return nil
}

// Hash returns the SHA256 of the policy's canonical JSON form, so runs can
// log which weighting produced a given export.
func (p Policy) Hash() (string, error) {
	jsonBytes, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

package quality

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quality.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPolicy(t *testing.T) {
	path := writePolicy(t, `
weights:
  completeness: 0.6
  analysts: 0.25
  reports: 0.15
saturation:
  full_analysts: 20
  full_reports: 5
`)

	p, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, 0.6, p.Weights.Completeness)
	assert.Equal(t, 0.25, p.Weights.Analysts)
	assert.Equal(t, 0.15, p.Weights.Reports)
	assert.Equal(t, 20, p.Saturation.FullAnalysts)
	assert.Equal(t, 5, p.Saturation.FullReports)
}

func TestLoadPolicy_UnknownField(t *testing.T) {
	// A typo'd key must fail the load, not silently zero a weight.
	path := writePolicy(t, `
weights:
  completeness: 0.5
  analysts: 0.3
  reports: 0.2
  analyst: 0.3
saturation:
  full_analysts: 15
  full_reports: 4
`)

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}

func TestLoadPolicy_BadWeightSum(t *testing.T) {
	path := writePolicy(t, `
weights:
  completeness: 0.5
  analysts: 0.3
  reports: 0.3
saturation:
  full_analysts: 15
  full_reports: 4
`)

	_, err := LoadPolicy(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must sum to 1.0")
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{
			name:   "defaults",
			policy: DefaultPolicy(),
		},
		{
			name: "weight out of range",
			policy: Policy{
				Weights:    Weights{Completeness: 1.5, Analysts: -0.3, Reports: -0.2},
				Saturation: Saturation{FullAnalysts: 15, FullReports: 4},
			},
			wantErr: true,
		},
		{
			name: "zero saturation point",
			policy: Policy{
				Weights:    Weights{Completeness: 0.5, Analysts: 0.3, Reports: 0.2},
				Saturation: Saturation{FullAnalysts: 0, FullReports: 4},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_Hash(t *testing.T) {
	p := DefaultPolicy()

	hash, err := p.Hash()
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	again, err := p.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	p.Weights.Completeness = 0.6
	changed, err := p.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, hash, changed)
}

package biometric

import (
	"math"
	"testing"

	"github.com/jortega/verid/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dims int) MatcherConfig {
	cfg := DefaultMatcherConfig()
	cfg.Dimensions = dims
	return cfg
}

func makeVector(dims int, fill float64) []float64 {
	v := make([]float64, dims)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestMatcher_SelfMatchNearZero(t *testing.T) {
	m, err := NewMatcher(testConfig(4))
	require.NoError(t, err)

	probe := []float64{0.1, -0.2, 0.3, 0.4}
	result, err := m.Match(probe, [][]float64{probe})

	assert.NoError(t, err)
	assert.InDelta(t, 0.0, result.BestScore, 1e-9)
	assert.Equal(t, VerdictAcceptHigh, result.Verdict)
}

func TestMatcher_DistanceSymmetry(t *testing.T) {
	for _, metric := range []string{MetricEuclidean, MetricCosine} {
		cfg := testConfig(4)
		cfg.Metric = metric
		m, err := NewMatcher(cfg)
		require.NoError(t, err)

		a := []float64{0.5, -0.1, 0.7, 0.2}
		b := []float64{-0.3, 0.4, 0.1, 0.9}

		assert.Equal(t, m.distance(a, b), m.distance(b, a), "metric %s", metric)
	}
}

func TestMatcher_BestScoreIsMinimumAcrossReferences(t *testing.T) {
	m, err := NewMatcher(testConfig(2))
	require.NoError(t, err)

	probe := []float64{0.0, 0.1}
	refs := [][]float64{
		{3.0, 4.0}, // far capture
		{0.0, 0.2}, // close capture
		{1.0, 1.0},
	}

	result, err := m.Match(probe, refs)

	assert.NoError(t, err)
	assert.InDelta(t, 0.1, result.BestScore, 1e-9)
	assert.Equal(t, 1, result.BestIndex)
	assert.True(t, result.Verdict.Accepted())
}

func TestMatcher_Confidence(t *testing.T) {
	m, err := NewMatcher(DefaultMatcherConfig())
	require.NoError(t, err)

	tests := []struct {
		score float64
		want  float64
	}{
		{0.0, 1.0},
		{0.3, 0.5},
		{0.6, 0.0}, // at the boundary
		{0.9, 0.0}, // beyond it, clamped
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, m.Confidence(tt.score), 1e-9, "score %v", tt.score)
	}
}

func TestMatcher_MatchCarriesConfidence(t *testing.T) {
	m, err := NewMatcher(testConfig(2))
	require.NoError(t, err)

	probe := []float64{0.0, 0.1}
	result, err := m.Match(probe, [][]float64{{0.0, 0.4}})

	assert.NoError(t, err)
	assert.InDelta(t, 0.3, result.BestScore, 1e-9)
	assert.InDelta(t, 0.5, result.Confidence, 1e-9)
}

func TestMatcher_VerdictBands(t *testing.T) {
	m, err := NewMatcher(DefaultMatcherConfig())
	require.NoError(t, err)

	tests := []struct {
		score   float64
		verdict Verdict
	}{
		{0.0, VerdictAcceptHigh},
		{0.35, VerdictAcceptHigh},
		{0.4, VerdictAccept}, // inclusive lower bound
		{0.55, VerdictAccept},
		{0.6, VerdictAmbiguous},
		{0.72, VerdictAmbiguous},
		{0.8, VerdictReject},
		{0.91, VerdictReject},
		{17.5, VerdictReject},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.verdict, m.Classify(tt.score), "score %v", tt.score)
	}
}

func TestMatcher_EmptyReferenceSet(t *testing.T) {
	m, err := NewMatcher(testConfig(3))
	require.NoError(t, err)

	_, err = m.Match([]float64{0.1, 0.2, 0.3}, nil)

	assert.ErrorIs(t, err, models.ErrEmptyReferenceSet)
}

func TestMatcher_ProbeDimensionMismatch(t *testing.T) {
	m, err := NewMatcher(testConfig(4))
	require.NoError(t, err)

	_, err = m.Match([]float64{0.1, 0.2}, [][]float64{{0.1, 0.2, 0.3, 0.4}})

	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestMatcher_ReferenceDimensionMismatch(t *testing.T) {
	m, err := NewMatcher(testConfig(2))
	require.NoError(t, err)

	_, err = m.Match([]float64{0.1, 0.2}, [][]float64{{0.1, 0.2, 0.3}})

	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestMatcher_RejectsDegenerateProbes(t *testing.T) {
	m, err := NewMatcher(testConfig(3))
	require.NoError(t, err)

	tests := []struct {
		name  string
		probe []float64
	}{
		{"all zero", makeVector(3, 0)},
		{"nan component", []float64{0.1, math.NaN(), 0.3}},
		{"inf component", []float64{0.1, math.Inf(1), 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Match(tt.probe, [][]float64{{0.1, 0.2, 0.3}})
			assert.ErrorIs(t, err, models.ErrInvalidSignature)
		})
	}
}

func TestMatcher_CosineMetric(t *testing.T) {
	cfg := testConfig(3)
	cfg.Metric = MetricCosine
	m, err := NewMatcher(cfg)
	require.NoError(t, err)

	// Parallel vectors: cosine distance 0 regardless of magnitude
	result, err := m.Match([]float64{1, 2, 3}, [][]float64{{2, 4, 6}})
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, result.BestScore, 1e-9)

	// Orthogonal vectors: cosine distance 1 -> reject with defaults
	result, err = m.Match([]float64{1, 0, 0}, [][]float64{{0, 1, 0}})
	assert.NoError(t, err)
	assert.InDelta(t, 1.0, result.BestScore, 1e-9)
	assert.Equal(t, VerdictReject, result.Verdict)
}

func TestMatcherConfig_Validate(t *testing.T) {
	cfg := DefaultMatcherConfig()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Metric = "manhattan"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.DecisionBoundary = 0.3 // below high-confidence band
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Dimensions = 0
	assert.Error(t, bad.Validate())
}

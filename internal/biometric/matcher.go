package biometric

import (
	"fmt"
	"math"

	"github.com/jortega/verid/internal/models"
)

// Distance metrics supported at configuration time
const (
	MetricEuclidean = "euclidean"
	MetricCosine    = "cosine"
)

// Verdict is the classification of a probe against an account's references.
type Verdict string

const (
	VerdictAcceptHigh Verdict = "accept_high" // [0, high)
	VerdictAccept     Verdict = "accept"      // [high, boundary)
	VerdictAmbiguous  Verdict = "ambiguous"   // [boundary, reject)
	VerdictReject     Verdict = "reject"      // [reject, inf)
)

// Accepted reports whether the verdict grants authentication.
func (v Verdict) Accepted() bool {
	return v == VerdictAcceptHigh || v == VerdictAccept
}

// MatcherConfig holds the tunable thresholds and the distance metric.
// Thresholds are operator configuration, not constants: the decision
// boundary defaults to 0.6 (below it accepts).
type MatcherConfig struct {
	Dimensions       int     // fixed system-wide vector length
	Metric           string  // "euclidean" or "cosine"
	HighConfidence   float64 // upper bound of the high-confidence accept band
	DecisionBoundary float64 // accept below, ambiguous at or above
	RejectFloor      float64 // reject at or above
}

// DefaultMatcherConfig returns the shipped thresholds for 128-dimension
// encodings.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		Dimensions:       128,
		Metric:           MetricEuclidean,
		HighConfidence:   0.4,
		DecisionBoundary: 0.6,
		RejectFloor:      0.8,
	}
}

// Validate checks the config for internal consistency.
func (c MatcherConfig) Validate() error {
	if c.Dimensions <= 0 {
		return fmt.Errorf("matcher dimensions must be positive, got %d", c.Dimensions)
	}
	if c.Metric != MetricEuclidean && c.Metric != MetricCosine {
		return fmt.Errorf("unknown distance metric %q", c.Metric)
	}
	if !(c.HighConfidence < c.DecisionBoundary && c.DecisionBoundary < c.RejectFloor) {
		return fmt.Errorf("thresholds must be strictly ordered: high=%v boundary=%v reject=%v",
			c.HighConfidence, c.DecisionBoundary, c.RejectFloor)
	}
	return nil
}

// MatchResult carries the best (minimum) distance across all enrolled
// references, which reference produced it, its band classification, and
// a normalized confidence derived from the decision boundary.
type MatchResult struct {
	BestScore  float64
	BestIndex  int     // index into the reference set that scored best
	Confidence float64 // 1 - distance/boundary, clamped to [0, 1]
	Verdict    Verdict
}

// Matcher compares probe signatures against stored references.
type Matcher struct {
	config MatcherConfig
}

// NewMatcher creates a Matcher with the given config.
func NewMatcher(config MatcherConfig) (*Matcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Matcher{config: config}, nil
}

// Dimensions returns the configured vector length.
func (m *Matcher) Dimensions() int {
	return m.config.Dimensions
}

// ValidateProbe fails fast on vectors the capture collaborator should never
// hand us: wrong length, NaN or Inf components, or an all-zero vector.
func (m *Matcher) ValidateProbe(probe []float64) error {
	if len(probe) != m.config.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", models.ErrDimensionMismatch, len(probe), m.config.Dimensions)
	}
	allZero := true
	for _, v := range probe {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite component", models.ErrInvalidSignature)
		}
		if v != 0 {
			allZero = false
		}
	}
	if allZero {
		return fmt.Errorf("%w: degenerate all-zero vector", models.ErrInvalidSignature)
	}
	return nil
}

// Match computes the distance between probe and each reference, takes the
// minimum across the full reference set (a user may enroll several
// captures), and maps it to a verdict band.
func (m *Matcher) Match(probe []float64, references [][]float64) (MatchResult, error) {
	if err := m.ValidateProbe(probe); err != nil {
		return MatchResult{}, err
	}
	if len(references) == 0 {
		return MatchResult{}, models.ErrEmptyReferenceSet
	}

	best := math.Inf(1)
	bestIdx := 0
	for i, ref := range references {
		if len(ref) != m.config.Dimensions {
			return MatchResult{}, fmt.Errorf("%w: reference has %d components, want %d",
				models.ErrDimensionMismatch, len(ref), m.config.Dimensions)
		}
		d := m.distance(probe, ref)
		if d < best {
			best = d
			bestIdx = i
		}
	}

	return MatchResult{
		BestScore:  best,
		BestIndex:  bestIdx,
		Confidence: m.Confidence(best),
		Verdict:    m.Classify(best),
	}, nil
}

// Confidence normalizes a distance against the decision boundary: 1 at a
// perfect match, 0 at the boundary and beyond.
func (m *Matcher) Confidence(score float64) float64 {
	c := 1 - score/m.config.DecisionBoundary
	if c < 0 {
		return 0
	}
	return c
}

// Classify maps a distance to its verdict band, inclusive lower bound.
func (m *Matcher) Classify(score float64) Verdict {
	switch {
	case score < m.config.HighConfidence:
		return VerdictAcceptHigh
	case score < m.config.DecisionBoundary:
		return VerdictAccept
	case score < m.config.RejectFloor:
		return VerdictAmbiguous
	default:
		return VerdictReject
	}
}

func (m *Matcher) distance(a, b []float64) float64 {
	if m.config.Metric == MetricCosine {
		return cosineDistance(a, b)
	}
	return euclideanDistance(a, b)
}

func euclideanDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// cosineDistance is 1 - cosine similarity. Zero-norm references are treated
// as maximally distant rather than producing NaN.
func cosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

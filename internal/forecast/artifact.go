// Package forecast implements cost projection for matters: a trained
// regression artifact served read-only behind an atomically swapped
// reference, a deterministic fallback extrapolator, and the orchestrator
// that chooses between them and assembles the forecast payload.
package forecast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/calloway/matterwatch/internal/common"
	"github.com/calloway/matterwatch/internal/features"
	"github.com/calloway/matterwatch/internal/model"
)

// Artifact is a versioned, immutable trained-model artifact: linear
// regression coefficients over the named feature fields plus the calibration
// measured during offline training. Artifacts are produced by a separate
// training job and loaded read-only; nothing mutates one after load.
type Artifact struct {
	TrainedAt            time.Time          `json:"trained_at"`
	Version              string             `json:"version"`
	Algorithm            string             `json:"algorithm"`
	Weights              map[string]float64 `json:"weights"`
	Intercept            float64            `json:"intercept"`
	CategoryTableVersion int                `json:"category_table_version"`
	Calibration          Calibration        `json:"calibration"`
	Domain               Domain             `json:"domain"`
}

// Calibration is the model's quality signal from offline evaluation. The
// confidence value is reported verbatim with every model prediction.
type Calibration struct {
	RSquared   float64 `json:"r_squared"`
	Confidence float64 `json:"confidence"`
}

// Domain bounds the feature space the model was trained on. Features
// outside these bounds disqualify the model for that matter.
type Domain struct {
	MaxMatterAgeDays     float64 `json:"max_matter_age_days"`
	MaxBudgetUtilization float64 `json:"max_budget_utilization"`
}

// LoadArtifact reads and validates a model artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("%w: reading artifact %s: %v", common.ErrModelUnavailable, path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("%w: parsing artifact %s: %v", common.ErrModelUnavailable, path, err)
	}

	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Validate checks the artifact for structural soundness. Weights may only
// reference the canonical feature field names.
func (a *Artifact) Validate() error {
	if a.Version == "" {
		return fmt.Errorf("%w: artifact has no version", common.ErrModelUnavailable)
	}
	if len(a.Weights) == 0 {
		return fmt.Errorf("%w: artifact %s has no weights", common.ErrModelUnavailable, a.Version)
	}
	if a.CategoryTableVersion != features.CategoryTableVersion {
		return fmt.Errorf("%w: artifact %s trained against category table v%d, runtime is v%d",
			common.ErrModelUnavailable, a.Version, a.CategoryTableVersion, features.CategoryTableVersion)
	}

	known := model.FeatureVector{}.Fields()
	for name, w := range a.Weights {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: artifact %s references unknown feature %q", common.ErrModelUnavailable, a.Version, name)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: artifact %s has non-finite weight for %q", common.ErrModelUnavailable, a.Version, name)
		}
	}
	if math.IsNaN(a.Intercept) || math.IsInf(a.Intercept, 0) {
		return fmt.Errorf("%w: artifact %s has non-finite intercept", common.ErrModelUnavailable, a.Version)
	}
	if a.Calibration.Confidence <= 0 || a.Calibration.Confidence > 1 {
		return fmt.Errorf("%w: artifact %s confidence %.3f outside (0, 1]", common.ErrModelUnavailable, a.Version, a.Calibration.Confidence)
	}
	return nil
}

// Store holds the currently loaded artifact. The pointer is written once per
// deployment of a new model version and read on every forecast; the atomic
// swap guarantees readers observe either the old or the new artifact whole.
type Store struct {
	current atomic.Pointer[Artifact]
}

// NewStore creates an empty store. Until an artifact is loaded, every
// forecast takes the fallback path.
func NewStore() *Store {
	return &Store{}
}

// Load reads an artifact from disk and swaps it in.
func (s *Store) Load(path string) error {
	artifact, err := LoadArtifact(path)
	if err != nil {
		return err
	}
	s.Swap(artifact)
	return nil
}

// Swap atomically replaces the served artifact. A nil artifact disables the
// model, forcing the fallback path.
func (s *Store) Swap(artifact *Artifact) {
	old := s.current.Swap(artifact)
	switch {
	case artifact == nil:
		slog.Info("Forecast model disabled")
	case old == nil:
		slog.Info("Forecast model loaded", "version", artifact.Version, "algorithm", artifact.Algorithm)
	default:
		slog.Info("Forecast model swapped", "old_version", old.Version, "new_version", artifact.Version)
	}
}

// Current returns the served artifact, or nil when none is loaded.
func (s *Store) Current() *Artifact {
	return s.current.Load()
}

// Version returns the served artifact's version, or empty when unloaded.
func (s *Store) Version() string {
	if a := s.current.Load(); a != nil {
		return a.Version
	}
	return ""
}

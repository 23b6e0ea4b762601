package gridsearch

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ivimnet/ivimnet/internal/config"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest describes a grid search next to its results archive.
type Manifest struct {
	Session  string                 `yaml:"session"`
	Started  time.Time              `yaml:"started"`
	Updated  time.Time              `yaml:"updated"`
	Results  string                 `yaml:"results"`
	Hyper    config.Hyperparameters `yaml:"hyperparameters"`
	Complete int                    `yaml:"completed_cells"`
	Total    int                    `yaml:"total_cells"`
	Cells    []CellRecord           `yaml:"cells"`
}

// CellRecord is the manifest entry of one completed cell.
type CellRecord struct {
	Run       int     `yaml:"run"`
	Depth     int     `yaml:"depth"`
	Status    string  `yaml:"status"`
	BestLoss  float64 `yaml:"best_loss"`
	BestEpoch int     `yaml:"best_epoch"`
	Epochs    int     `yaml:"epochs"`
	Seconds   float64 `yaml:"seconds"`
}

// NewManifest starts a manifest with a fresh session id.
func NewManifest(h config.Hyperparameters) *Manifest {
	now := time.Now().UTC()
	return &Manifest{
		Session: uuid.NewString(),
		Started: now,
		Updated: now,
		Results: h.Output,
		Hyper:   h,
		Total:   h.Runs * h.MaxDepth,
	}
}

// Add appends a completed cell.
func (m *Manifest) Add(rec CellRecord) {
	m.Cells = append(m.Cells, rec)
	m.Complete = len(m.Cells)
	m.Updated = time.Now().UTC()
}

// ManifestPath returns the manifest file that accompanies a results file.
func ManifestPath(results string) string {
	return results + ".yaml"
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m *Manifest) error {
	content, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "encoding manifest")
	}
	return errors.Wrapf(os.WriteFile(path, content, 0o644), "writing manifest %q", path)
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %q", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %q", path)
	}
	return &m, nil
}

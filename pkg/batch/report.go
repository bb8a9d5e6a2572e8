package batch

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Image placement outcomes.
const (
	StatusPlaced   = "placed"
	StatusCentered = "centered"
	StatusFailed   = "failed"
)

// ImageResult records what happened to one image.
type ImageResult struct {
	Path        string `yaml:"path"`
	Status      string `yaml:"status"`
	Orientation string `yaml:"orientation,omitempty"`
	CellID      int    `yaml:"cell,omitempty"`
	Side        string `yaml:"side,omitempty"`
	Extended    bool   `yaml:"extended,omitempty"`
	OverlayFile string `yaml:"overlay,omitempty"`
	Error       string `yaml:"error,omitempty"`
}

// Report summarizes one batch run.
type Report struct {
	RunID    string        `yaml:"run_id"`
	Board    string        `yaml:"board"`
	Placed   int           `yaml:"placed"`
	Centered int           `yaml:"centered"`
	Failed   int           `yaml:"failed"`
	Canceled bool          `yaml:"canceled,omitempty"`
	Images   []ImageResult `yaml:"images"`
}

// tally recomputes the counters from the per-image results.
func (r *Report) tally() {
	r.Placed, r.Centered, r.Failed = 0, 0, 0
	for _, img := range r.Images {
		switch img.Status {
		case StatusPlaced:
			r.Placed++
		case StatusCentered:
			r.Centered++
		case StatusFailed:
			r.Failed++
		}
	}
}

// WriteYAML renders the report for scripting consumers.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r)
}

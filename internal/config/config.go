// Package config loads a JSON5 search-job description into a validated
// SearchJob, the wiring convenience around the core types that lets the
// CLI describe a search without touching Go source.
package config

import (
	"fmt"
	"os"

	json "github.com/KevinWang15/go-json5"

	"github.com/kbmod/kbmod/internal/search"
)

// FrameSpec names one frame's plane files, dimensions and timestamp.
type FrameSpec struct {
	Science  string  `json:"science"`
	Variance string  `json:"variance"`
	Mask     string  `json:"mask"`
	Time     float64 `json:"time"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// SearchJob is the resolved, validated job description the CLI runs.
type SearchJob struct {
	Frames             []FrameSpec      `json:"frames"`
	PSFSigma           float64          `json:"psf_sigma"`
	Search             search.SearchSpec
	Backend            string `json:"backend"`
	ResultsPath        string `json:"results_path"`
	PsiPhiDir          string `json:"psi_phi_dir"`
	LikelihoodPlotPath string `json:"likelihood_plot_path"`
}

// rawSearchSpec mirrors the JSON5 "search" block's field names, which
// use the velocity-grid's mathematical notation rather than Go's
// exported-field capitalization.
type rawSearchSpec struct {
	VMin         float64 `json:"v_min"`
	VMax         float64 `json:"v_max"`
	NV           int     `json:"n_v"`
	ThetaMin     float64 `json:"theta_min"`
	ThetaMax     float64 `json:"theta_max"`
	NTheta       int     `json:"n_theta"`
	MinObs       int     `json:"min_obs"`
	TopK         int     `json:"top_k"`
	KeepFraction float64 `json:"keep_fraction"`
}

type rawJob struct {
	Frames             []FrameSpec   `json:"frames"`
	PSFSigma           float64       `json:"psf_sigma"`
	Search             rawSearchSpec `json:"search"`
	Backend            string        `json:"backend"`
	ResultsPath        string        `json:"results_path"`
	PsiPhiDir          string        `json:"psi_phi_dir"`
	LikelihoodPlotPath string        `json:"likelihood_plot_path"`
}

// LoadJob parses a JSON5 job file at path and validates every field
// before any frame file is opened. A malformed job fails fast with a
// file-and-field error rather than deep inside the search call.
func LoadJob(path string) (*SearchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read job file: %w", path, err)
	}

	var raw rawJob
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: failed to parse job file: %w", path, err)
	}

	if len(raw.Frames) == 0 {
		return nil, fmt.Errorf("%s: job must list at least one frame", path)
	}
	for i, fr := range raw.Frames {
		if fr.Science == "" || fr.Variance == "" || fr.Mask == "" {
			return nil, fmt.Errorf("%s: frames[%d]: science, variance and mask paths are required", path, i)
		}
		if fr.Width <= 0 || fr.Height <= 0 {
			return nil, fmt.Errorf("%s: frames[%d]: width and height must be positive", path, i)
		}
	}
	if raw.PSFSigma <= 0 {
		return nil, fmt.Errorf("%s: psf_sigma must be positive", path)
	}
	if raw.ResultsPath == "" {
		return nil, fmt.Errorf("%s: results_path is required", path)
	}

	spec := search.SearchSpec{
		VMin: raw.Search.VMin, VMax: raw.Search.VMax, NV: raw.Search.NV,
		ThetaMin: raw.Search.ThetaMin, ThetaMax: raw.Search.ThetaMax, NTheta: raw.Search.NTheta,
		MinObs: raw.Search.MinObs, TopK: raw.Search.TopK, KeepFraction: raw.Search.KeepFraction,
	}
	if spec.TopK == 0 {
		spec.TopK = 1
	}
	if spec.KeepFraction == 0 {
		spec.KeepFraction = 1
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%s: search: %w", path, err)
	}

	return &SearchJob{
		Frames:             raw.Frames,
		PSFSigma:           raw.PSFSigma,
		Search:             spec,
		Backend:            raw.Backend,
		ResultsPath:        raw.ResultsPath,
		PsiPhiDir:          raw.PsiPhiDir,
		LikelihoodPlotPath: raw.LikelihoodPlotPath,
	}, nil
}

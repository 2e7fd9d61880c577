package model

// Star is the star metadata returned by the fitting service.
type Star struct {
	Name                string   `json:"name"`
	Version             int      `json:"version"`
	AbundanceNorm       string   `json:"abundance_norm"`
	InputDataFormat     string   `json:"input_data_format"`
	NCovariances        int      `json:"n_covariances"`
	Covariances         []string `json:"covariances"`
	DetectionThresholds []string `json:"detection_thresholds"`
	UpperLimits         []string `json:"upper_limits"`
	Elements            []string `json:"elements"`
	Measured            []string `json:"measured"`
	SolarRef            string   `json:"solar_ref"`
	Source              string   `json:"source"`
	Comment             string   `json:"comment"`
}

// EvalElement is one element the fit was evaluated against.
type EvalElement struct {
	Element    string    `json:"element"`
	Detection  float64   `json:"detection"`
	Covariance []float64 `json:"covariance"`
}

// FitResult is what the fitting service returns for one job. ID is the handle
// used to request plots of the result.
type FitResult struct {
	ID         string        `json:"id"`
	Star       Star          `json:"star"`
	TextResult string        `json:"text_result"` // best-fit table, HTML
	TextDB     [][]string    `json:"text_db"`
	EvalData   []EvalElement `json:"eval_data"`

	// ga
	Generations int     `json:"gen,omitempty"`
	Elapsed     float64 `json:"elapsed,omitempty"`

	// multi
	NCombinations int64   `json:"n_combinations,omitempty"`
	SolSize       int     `json:"sol_size,omitempty"`
	Group         [][]int `json:"group,omitempty"`
	GroupComb     []int64 `json:"group_comb,omitempty"`
	FullResults   string  `json:"full_results,omitempty"`
}

type PlotKind string

const (
	PlotAbundance   PlotKind = "abundance"
	PlotFitness     PlotKind = "fitness"
	PlotErrorMatrix PlotKind = "error_matrix"
)

type PlotRequest struct {
	Kind           PlotKind `json:"kind"`
	Format         string   `json:"format"`
	YScale         int      `json:"yscale,omitempty"`
	YNorm          string   `json:"ynorm,omitempty"`
	Multi          int      `json:"multi,omitempty"`
	ReturnPlotData bool     `json:"return_plot_data,omitempty"`
}

// Plot is a rendered image plus, for abundance plots, the plotted points.
type Plot struct {
	Image     []byte    `json:"image"`
	Labels    []string  `json:"labels,omitempty"`
	Z         []int     `json:"z,omitempty"`
	Abundance []float64 `json:"abundance,omitempty"`
}

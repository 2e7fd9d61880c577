package model

type Algorithm string

const (
	AlgorithmGA     Algorithm = "ga"
	AlgorithmSingle Algorithm = "single"
	AlgorithmMulti  Algorithm = "multi"
)

// Valid reports whether a is one of the supported search algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmGA, AlgorithmSingle, AlgorithmMulti:
		return true
	}
	return false
}

const (
	CombineNone = 0
	CombineCN   = 1
	CombineCNO  = 2
)

// StellarData points at the star file a job fits against.
type StellarData struct {
	Path     string `json:"path"`
	Filename string `json:"filename"` // name shown to the user and used for attachments
	Uploaded bool   `json:"uploaded"`
}

// JobConfig is the fully derived and validated configuration of one fitting job.
// It is built once per submission and never mutated afterwards.
type JobConfig struct {
	StartTime     string    `json:"start_time"` // scratch file namespace for this job
	Algorithm     Algorithm `json:"algorithm"`
	Email         string    `json:"email"`
	MailRequested bool      `json:"mail_requested"`

	StellarData   StellarData `json:"stellar_data"`
	Databases     []string    `json:"databases"`
	DatabasePaths []string    `json:"database_paths"`

	ZMin     int     `json:"z_min"`
	ZMax     int     `json:"z_max"`
	ZExclude []int   `json:"z_exclude"`
	ZLolim   []int   `json:"z_lolim"`
	Combine  [][]int `json:"combine"`

	CombineMode int `json:"combine_mode"`

	SolSize  int     `json:"sol_size"`
	SolSizes []int   `json:"sol_sizes,omitempty"` // multi only, one entry per group
	Groups   [][]int `json:"groups,omitempty"`    // nil for ga means one group per database
	Pin      []int   `json:"pin,omitempty"`

	PopSize            int     `json:"pop_size"`
	Gen                int     `json:"gen"`
	TourSize           int     `json:"tour_size"`
	TimeLimit          int     `json:"time_limit"`
	FracMatingPool     float64 `json:"frac_mating_pool"`
	FracElite          float64 `json:"frac_elite"`
	MutRateIndex       float64 `json:"mut_rate_index"`
	MutRateOffset      float64 `json:"mut_rate_offset"`
	MutOffsetMagnitude float64 `json:"mut_offset_magnitude"`

	Fixed         bool `json:"fixed"`
	UpperLim      bool `json:"upper_lim"`
	CDF           bool `json:"cdf"`
	Det           bool `json:"det"`
	Cov           bool `json:"cov"`
	LimitSolution bool `json:"limit_solution"`
	LimitSolver   bool `json:"limit_solver"`
	Spread        bool `json:"spread"`
	LocalSearch   bool `json:"local_search"`
	ShowIndex     bool `json:"show_index"`
	PlotCov       bool `json:"plot_cov"`

	PlotFormat string `json:"plot_format"`
	YScale     int    `json:"yscale"`
	Multi      int    `json:"multi"`
}

// GroupCount is the number of database groups solutions are drawn from.
func (c *JobConfig) GroupCount() int {
	if c.Groups == nil {
		return len(c.Databases)
	}
	return len(c.Groups)
}

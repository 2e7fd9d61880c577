package model

// FitRequest is the parameter bundle sent to the fitting service. Fields after
// the common block only apply to some algorithms and are omitted otherwise.
type FitRequest struct {
	Algorithm     Algorithm `json:"algorithm"`
	Filename      string    `json:"filename"`
	DB            []string  `json:"db"`
	Silent        bool      `json:"silent"`
	Combine       [][]int   `json:"combine"`
	ZMin          int       `json:"z_min"`
	ZMax          int       `json:"z_max"`
	ZExclude      []int     `json:"z_exclude"`
	ZLolim        []int     `json:"z_lolim"`
	UpperLim      bool      `json:"upper_lim"`
	CDF           bool      `json:"cdf"`
	Det           bool      `json:"det"`
	Cov           bool      `json:"cov"`
	LimitSolution bool      `json:"limit_solution"`
	LimitSolver   bool      `json:"limit_solver"`
	ShowIndex     bool      `json:"show_index"`

	// ga and multi
	FixedOffsets *bool   `json:"fixed_offsets,omitempty"`
	Group        [][]int `json:"group,omitempty"`

	// ga
	TimeLimit          *int     `json:"time_limit,omitempty"`
	SolSize            *int     `json:"sol_size,omitempty"`
	Pin                []int    `json:"pin,omitempty"`
	Gen                *int     `json:"gen,omitempty"`
	PopSize            *int     `json:"pop_size,omitempty"`
	Spread             *bool    `json:"spread,omitempty"`
	TourSize           *int     `json:"tour_size,omitempty"`
	FracMatingPool     *float64 `json:"frac_mating_pool,omitempty"`
	FracElite          *float64 `json:"frac_elite,omitempty"`
	MutRateIndex       *float64 `json:"mut_rate_index,omitempty"`
	MutRateOffset      *float64 `json:"mut_rate_offset,omitempty"`
	MutOffsetMagnitude *float64 `json:"mut_offset_magnitude,omitempty"`
	LocalSearch        *bool    `json:"local_search,omitempty"`

	// multi
	SolSizes []int  `json:"sol_sizes,omitempty"`
	NTop     int    `json:"n_top,omitempty"`
	Save     bool   `json:"save,omitempty"`
	WebFile  string `json:"webfile,omitempty"`
}

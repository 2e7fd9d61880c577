package jobconfig

import (
	"context"
	"net"
)

// gaForm is a complete genetic algorithm submission as the web form posts it.
func gaForm() map[string][]string {
	return map[string][]string{
		"email":                {""},
		"algorithm":            {"ga"},
		"sol_size":             {"3"},
		"sol_sizes":            {""},
		"z_min":                {"H"},
		"z_max":                {"Zn"},
		"combine_mode":         {"1"},
		"pop_size":             {"200"},
		"yscale":               {"2"},
		"time_limit":           {"20"},
		"gen":                  {"1000"},
		"tour_size":            {"2"},
		"frac_mating_pool":     {"100"},
		"frac_elite":           {"50"},
		"mut_rate_index":       {"20"},
		"mut_rate_offset":      {"10"},
		"mut_offset_magnitude": {"1"},
		"plotformat":           {"png"},
		"stardefault":          {"HE1327-2326.dat"},
		"z_exclude":            {"Li, Sc"},
		"z_lolim":              {""},
		"group_ga":             {""},
		"group_multi":          {""},
		"pin":                  {""},
		"multi":                {"0"},
		"database":             {"znuc2012.S4.star.el.y.stardb.gz", "rproc.just15.0.star.el.y.stardb.xz"},
	}
}

func rawFields(algorithm string, databases ...string) *RawFields {
	return &RawFields{
		Algorithm:   algorithm,
		SolSize:     3,
		ZMin:        "H",
		ZMax:        "U",
		CombineMode: 0,
		PopSize:     200,
		TimeLimit:   20,
		Gen:         1000,
		PlotFormat:  "png",
		StarDefault: "HE1327-2326.dat",
		Databases:   databases,
		Upload:      &Upload{},
	}
}

var testEnv = Env{StartTime: "2024-05-06-07-08-09", DataDir: "/data", ScratchDir: "/scratch"}

type fakeStars struct {
	err   error
	paths []string
}

func (f *fakeStars) CheckStar(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

type fakeEmails struct{ err error }

func (f fakeEmails) Verify(_ context.Context, address string) error {
	if f.err != nil {
		return &EmailError{Address: address, Reason: f.err.Error()}
	}
	return nil
}

type fakeResolver struct {
	mx       map[string][]*net.MX
	hosts    map[string][]string
	mxErr    error
	mxLookup int
}

func (r *fakeResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	r.mxLookup++
	if r.mxErr != nil {
		return nil, r.mxErr
	}
	if mx, ok := r.mx[name]; ok {
		return mx, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func (r *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if addrs, ok := r.hosts[host]; ok {
		return addrs, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

package jobconfig

import (
	"sort"
	"strconv"
	"strings"
)

const maxGroupSize = 10

// parseGroups reads "0,1;2" style nested lists. Empty groups are dropped; a blank
// string yields nil.
func parseGroups(s string, ndb int) ([][]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var groups [][]int
	for _, part := range strings.Split(s, ";") {
		var group []int
		for _, item := range strings.Split(part, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			v, err := strconv.Atoi(item)
			if err != nil {
				return nil, configurationError(msgGroupParse, s)
			}
			group = append(group, v)
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}

	seen := make(map[int]bool)
	for _, g := range groups {
		if len(g) >= maxGroupSize {
			return nil, configurationError(msgGroupSize)
		}
	}
	for _, g := range groups {
		for _, v := range g {
			if seen[v] {
				return nil, configurationError(msgGroupUnique)
			}
			seen[v] = true
		}
	}
	for _, g := range groups {
		for _, v := range g {
			if v < 0 {
				return nil, configurationError(msgGroupPositive)
			}
		}
	}
	for _, g := range groups {
		for _, v := range g {
			if v >= ndb {
				return nil, configurationError(msgGroupRange)
			}
		}
	}
	return groups, nil
}

// parseIntList reads a ";" separated list of integers, skipping blanks.
func parseIntList(s string) ([]int, bool) {
	var out []int
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		v, err := strconv.Atoi(item)
		if err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// omittedIndices returns the database indices in [0, ndb) not covered by groups.
func omittedIndices(ndb int, groups [][]int) []int {
	used := make(map[int]bool)
	for _, g := range groups {
		for _, v := range g {
			used[v] = true
		}
	}
	var out []int
	for i := 0; i < ndb; i++ {
		if !used[i] {
			out = append(out, i)
		}
	}
	return out
}

// ReconcileGroups turns the user's multi-star grouping and per-group sizes into a
// partition of [0, ndb) with exactly one size per group.
func ReconcileGroups(ndb int, groups [][]int, sizes []int) ([][]int, []int) {
	groups = cloneGroups(groups)
	sizes = append([]int(nil), sizes...)

	if len(groups) == 0 {
		return ungroupedLayout(ndb, sizes)
	}

	if remaining := omittedIndices(ndb, groups); len(remaining) > 0 {
		ngroup, nsizes, total := len(groups), len(sizes), sum(sizes)
		switch {
		case nsizes == ngroup+1 || (nsizes == 1 && total == ngroup+1):
			groups = append(groups, remaining)
		case nsizes == ngroup+len(remaining) || (nsizes == 1 && total == ngroup+len(remaining)):
			for _, idx := range remaining {
				groups = append(groups, []int{idx})
			}
		default:
			groups = append(groups, remaining)
		}
	}

	ngroup := len(groups)
	if len(sizes) == 0 || (len(sizes) == 1 && sizes[0] == ngroup) {
		sizes = ones(ngroup)
	}
	return groups, fitLength(sizes, ngroup)
}

// ungroupedLayout handles a submission without explicit groups.
func ungroupedLayout(ndb int, sizes []int) ([][]int, []int) {
	switch n := len(sizes); {
	case n == 0:
		return singletons(0, ndb), ones(ndb)
	case n == 1:
		all := make([]int, ndb)
		for i := range all {
			all[i] = i
		}
		return [][]int{all}, sizes
	case n >= ndb:
		return singletons(0, ndb), sizes[:ndb]
	default:
		// Fewer sizes than databases: leading databases stand alone and the
		// rest share the last size.
		groups := singletons(0, n-1)
		rest := make([]int, 0, ndb-n+1)
		for i := n - 1; i < ndb; i++ {
			rest = append(rest, i)
		}
		return append(groups, rest), sizes
	}
}

// completeGAGroups appends every database index the user left out as its own
// group. No groups means one group per database, represented as nil.
func completeGAGroups(ndb int, groups [][]int) [][]int {
	if len(groups) == 0 {
		return nil
	}
	out := cloneGroups(groups)
	for _, idx := range omittedIndices(ndb, groups) {
		out = append(out, []int{idx})
	}
	return out
}

// derivePins keeps pins that name an existing group, at most solSize of them.
func derivePins(pins []int, ngroup, solSize int) []int {
	var out []int
	for _, p := range pins {
		if p >= 0 && p < ngroup {
			out = append(out, p)
		}
	}
	if solSize < 0 {
		solSize = 0
	}
	if len(out) > solSize {
		out = out[:solSize]
	}
	return out
}

// IsPartition reports whether groups cover [0, n) exactly once.
func IsPartition(groups [][]int, n int) bool {
	var all []int
	for _, g := range groups {
		all = append(all, g...)
	}
	if len(all) != n {
		return false
	}
	sort.Ints(all)
	for i, v := range all {
		if v != i {
			return false
		}
	}
	return true
}

func singletons(from, to int) [][]int {
	out := make([][]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, []int{i})
	}
	return out
}

func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// fitLength truncates sizes to n or pads it with ones.
func fitLength(sizes []int, n int) []int {
	if len(sizes) >= n {
		return sizes[:n]
	}
	for len(sizes) < n {
		sizes = append(sizes, 1)
	}
	return sizes
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func cloneGroups(groups [][]int) [][]int {
	if groups == nil {
		return nil
	}
	out := make([][]int, len(groups))
	for i, g := range groups {
		out[i] = append([]int(nil), g...)
	}
	return out
}

package jobconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/element"
	"github.com/2sn/starfit-server/internal/domain/model"
)

var algorithmDescriptions = map[model.Algorithm]string{
	model.AlgorithmGA:     "Genetic Algorithm (approximate best solution)",
	model.AlgorithmSingle: "Complete search: single stars",
	model.AlgorithmMulti:  "Complete multistar search",
}

// Describe renders the human readable strings shown on result pages. It only
// reads cfg.
func Describe(cfg *model.JobConfig) model.Description {
	d := model.Description{
		Algorithm:        algorithmDescriptions[cfg.Algorithm],
		CombinedElements: combinedElements(cfg.Combine),
		ZMin:             element.Symbol(cfg.ZMin),
		ZMax:             element.Symbol(cfg.ZMax),
		Databases:        strings.Join(cfg.Databases, ", "),
		NDatabase:        strconv.Itoa(len(cfg.Databases)),
		Group:            joinGroups(cfg.Groups),
		Pin:              joinInts(cfg.Pin, "; "),
		Pinning:          pinning(cfg.Pin),
		TimeETA:          TimeETA(cfg.TimeLimit),
	}
	if cfg.Algorithm == model.AlgorithmMulti {
		d.SolSizes = joinInts(cfg.SolSizes, "; ")
		d.Grouping = grouping(cfg.Groups, cfg.SolSizes)
	}
	return d
}

// TimeETA says when results are expected for a run time limit in seconds.
func TimeETA(seconds int) string {
	switch {
	case seconds < 1:
		return "now"
	case seconds > 600:
		return "in more than 10 minutes"
	}
	return "in " + common.Time2Human(float64(seconds))
}

func combinedElements(combine [][]int) string {
	parts := make([]string, 0, len(combine))
	for _, group := range combine {
		symbols := make([]string, len(group))
		for i, z := range group {
			symbols[i] = element.Symbol(z)
		}
		parts = append(parts, strings.Join(symbols, "+"))
	}
	return strings.Join(parts, ", ")
}

func joinGroups(groups [][]int) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = joinInts(g, ", ")
	}
	return strings.Join(parts, "; ")
}

// grouping reads like "2 of (0, 1); 1 of (2)".
func grouping(groups [][]int, sizes []int) string {
	parts := make([]string, 0, len(groups))
	for i, g := range groups {
		if i >= len(sizes) {
			break
		}
		parts = append(parts, fmt.Sprintf("%d of (%s)", sizes[i], joinInts(g, ", ")))
	}
	return strings.Join(parts, "; ")
}

// pinning counts how often each group is pinned, in first-seen order.
func pinning(pins []int) string {
	counts := make(map[int]int)
	var order []int
	for _, p := range pins {
		if counts[p] == 0 {
			order = append(order, p)
		}
		counts[p]++
	}
	parts := make([]string, len(order))
	for i, p := range order {
		parts[i] = fmt.Sprintf("%d:%d", p, counts[p])
	}
	return strings.Join(parts, "; ")
}

func joinInts(xs []int, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, sep)
}

// Package element maps chemical element symbols to charge numbers (Z) for the
// range H..U supported by the fitting databases.
package element

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const (
	// MinZ is hydrogen.
	MinZ = 1
	// MaxZ is uranium.
	MaxZ = 92
)

var symbols = [MaxZ + 1]string{
	"",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba",
	"La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U",
}

var bySymbol = func() map[string]int {
	m := make(map[string]int, MaxZ)
	for z := MinZ; z <= MaxZ; z++ {
		m[strings.ToLower(symbols[z])] = z
	}
	return m
}()

// Symbol returns the element symbol for z, or "" when z is out of range.
func Symbol(z int) string {
	if z < MinZ || z > MaxZ {
		return ""
	}
	return symbols[z]
}

// Parse resolves an element symbol ("Fe", "fe"), an isotope name ("Fe56",
// "56Fe") or a bare charge number ("26") to its charge number.
// The second return value is false when s names no element in H..U.
func Parse(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if z, err := strconv.Atoi(s); err == nil {
		if z < MinZ || z > MaxZ {
			return 0, false
		}
		return z, true
	}
	letters := strings.TrimFunc(s, unicode.IsDigit)
	if letters == "" || strings.IndexFunc(letters, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
		return 0, false
	}
	z, ok := bySymbol[strings.ToLower(letters)]
	return z, ok
}

// ParseOr is Parse with a fallback charge number for unknown input.
func ParseOr(s string, fallback int) int {
	if z, ok := Parse(s); ok {
		return z
	}
	return fallback
}

// ParseSet parses a comma separated list of elements and element ranges
// ("C, O-Ne, Fe-") into a sorted set of charge numbers. Missing or unknown range
// bounds default to MinZ and MaxZ; unknown single entries are dropped.
func ParseSet(s string) []int {
	seen := map[int]struct{}{}
	for _, token := range strings.Split(s, ",") {
		if strings.Contains(token, "-") {
			bounds := strings.SplitN(token, "-", 2)
			lo := ParseOr(bounds[0], MinZ)
			hi := ParseOr(bounds[1], MaxZ)
			if lo > hi {
				lo, hi = hi, lo
			}
			for z := lo; z <= hi; z++ {
				seen[z] = struct{}{}
			}
			continue
		}
		if z, ok := Parse(token); ok {
			seen[z] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for z := range seen {
		out = append(out, z)
	}
	sort.Ints(out)
	return out
}

// ParseNames resolves element names, dropping the ones that are not elements.
func ParseNames(names []string) []int {
	out := make([]int, 0, len(names))
	for _, n := range names {
		if z, ok := Parse(n); ok {
			out = append(out, z)
		}
	}
	return out
}

// Compress renders a set of charge numbers as a short human list: runs of three
// or more consecutive elements collapse to a range, shorter runs are listed.
func Compress(zs []int) string {
	if len(zs) == 0 {
		return ""
	}
	sorted := append([]int(nil), zs...)
	sort.Ints(sorted)

	var out []string
	flush := func(z0, z1 int) {
		switch {
		case z0 == z1:
			out = append(out, Symbol(z0))
		case z1 == z0+1:
			out = append(out, Symbol(z0), Symbol(z1))
		default:
			out = append(out, Symbol(z0)+" — "+Symbol(z1))
		}
	}

	z0, z1 := sorted[0], sorted[0]
	for _, z := range sorted[1:] {
		if z == z1 {
			continue
		}
		if z == z1+1 {
			z1 = z
			continue
		}
		flush(z0, z1)
		z0, z1 = z, z
	}
	flush(z0, z1)
	return strings.Join(out, ", ")
}

// Contains reports whether z is in zs.
func Contains(zs []int, z int) bool {
	for _, v := range zs {
		if v == z {
			return true
		}
	}
	return false
}

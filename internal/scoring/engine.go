// Package scoring computes pattern totals, percentages and the ranked
// top three from the 25 raw points an analyst enters on the body
// scoring table. Everything here is a pure function of its inputs.
package scoring

import (
	"math"
	"sort"
)

// Pattern is one of the five emotional pattern categories.
type Pattern string

const (
	Criativo    Pattern = "criativo"
	Conectivo   Pattern = "conectivo"
	Forte       Pattern = "forte"
	Lider       Pattern = "lider"
	Competitivo Pattern = "competitivo"
)

// Patterns lists the five patterns in declaration order. Ranking ties
// resolve in this order.
var Patterns = []Pattern{Criativo, Conectivo, Forte, Lider, Competitivo}

// Region is one of the five scored body regions.
type Region string

const (
	Cabeca Region = "cabeca"
	Peito  Region = "peito"
	Ombros Region = "ombros"
	Costas Region = "costas"
	Pernas Region = "pernas"
)

// Regions lists the five body regions in scoring order.
var Regions = []Region{Cabeca, Peito, Ombros, Costas, Pernas}

var labels = map[Pattern]string{
	Criativo:    "Criativo",
	Conectivo:   "Conectivo",
	Forte:       "Forte",
	Lider:       "Líder",
	Competitivo: "Competitivo",
}

// Label returns the display name of the pattern.
func (p Pattern) Label() string {
	return labels[p]
}

// Points holds the raw analyst-entered points per pattern per region.
type Points map[Pattern]map[Region]int

// NewPoints returns a Points table with every cell initialized to zero.
func NewPoints() Points {
	points := make(Points, len(Patterns))
	for _, p := range Patterns {
		points[p] = make(map[Region]int, len(Regions))
		for _, r := range Regions {
			points[p][r] = 0
		}
	}
	return points
}

// Result is the full derived output of a scoring table.
type Result struct {
	Totals      map[Pattern]int
	Percentages map[Pattern]int
	Primary     Pattern
	Secondary   Pattern
	Tertiary    Pattern
	// Considered lists the patterns whose narratives are shown,
	// filtered by the inclusion rule. Primary first.
	Considered []Pattern
}

// Compute derives totals, percentages and the ranked top three from the
// raw points. When every point is zero all percentages are zero and the
// considered list is empty; the rank labels then follow declaration order.
func Compute(points Points) Result {
	totals := make(map[Pattern]int, len(Patterns))
	grand := 0
	for _, p := range Patterns {
		for _, r := range Regions {
			totals[p] += points[p][r]
		}
		grand += totals[p]
	}

	percentages := make(map[Pattern]int, len(Patterns))
	for _, p := range Patterns {
		if grand > 0 {
			percentages[p] = int(math.Round(float64(totals[p]) * 100 / float64(grand)))
		} else {
			percentages[p] = 0
		}
	}

	ranked := make([]Pattern, len(Patterns))
	copy(ranked, Patterns)
	sort.SliceStable(ranked, func(i, j int) bool {
		return percentages[ranked[i]] > percentages[ranked[j]]
	})

	return Result{
		Totals:      totals,
		Percentages: percentages,
		Primary:     ranked[0],
		Secondary:   ranked[1],
		Tertiary:    ranked[2],
		Considered:  considered(percentages, ranked, grand),
	}
}

// considered applies the inclusion rule for the secondary and tertiary
// patterns. A dominant primary (>= 50%) only pulls in patterns that hold
// at least 15% on their own; a weaker primary pulls in the secondary
// unconditionally and the tertiary until the cumulative share passes 50%.
func considered(percentages map[Pattern]int, ranked []Pattern, grand int) []Pattern {
	if grand == 0 {
		return nil
	}

	p1 := percentages[ranked[0]]
	p2 := percentages[ranked[1]]
	p3 := percentages[ranked[2]]

	out := []Pattern{ranked[0]}

	if p1 >= 50 {
		if p2 >= 15 {
			out = append(out, ranked[1])
			if p3 >= 15 {
				out = append(out, ranked[2])
			}
		}
		return out
	}

	if p2 == 0 {
		return out
	}
	out = append(out, ranked[1])

	if p1+p2 < 50 {
		if p3 > 0 {
			out = append(out, ranked[2])
		}
	} else if p3 >= 15 {
		out = append(out, ranked[2])
	}
	return out
}

// Ambition is the mean of the leader and competitive percentages,
// rounded to one decimal place.
func Ambition(percentages map[Pattern]int) float64 {
	return round1(float64(percentages[Lider]+percentages[Competitivo]) / 2)
}

// Dependency is the mean of the connective and strong percentages,
// rounded to one decimal place.
func Dependency(percentages map[Pattern]int) float64 {
	return round1(float64(percentages[Conectivo]+percentages[Forte]) / 2)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

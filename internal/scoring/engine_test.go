package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointsWithTotals puts each pattern's whole total in a single region, so
// the per-pattern totals are exactly the values given.
func pointsWithTotals(totals map[Pattern]int) Points {
	points := NewPoints()
	for p, total := range totals {
		points[p][Cabeca] = total
	}
	return points
}

func TestComputeRankingFixture(t *testing.T) {
	points := pointsWithTotals(map[Pattern]int{
		Criativo:    10,
		Conectivo:   20,
		Forte:       5,
		Lider:       40,
		Competitivo: 25,
	})

	res := Compute(points)

	assert.Equal(t, 10, res.Percentages[Criativo])
	assert.Equal(t, 20, res.Percentages[Conectivo])
	assert.Equal(t, 5, res.Percentages[Forte])
	assert.Equal(t, 40, res.Percentages[Lider])
	assert.Equal(t, 25, res.Percentages[Competitivo])

	assert.Equal(t, Lider, res.Primary)
	assert.Equal(t, Competitivo, res.Secondary)
	assert.Equal(t, Conectivo, res.Tertiary)

	assert.Equal(t, 32.5, Ambition(res.Percentages))
	assert.Equal(t, 12.5, Dependency(res.Percentages))
}

func TestComputeAllZeros(t *testing.T) {
	res := Compute(NewPoints())

	for _, p := range Patterns {
		assert.Equal(t, 0, res.Totals[p])
		assert.Equal(t, 0, res.Percentages[p])
	}
	assert.Empty(t, res.Considered)

	// Rank labels fall back to declaration order.
	assert.Equal(t, Criativo, res.Primary)
	assert.Equal(t, Conectivo, res.Secondary)
	assert.Equal(t, Forte, res.Tertiary)

	assert.Equal(t, 0.0, Ambition(res.Percentages))
	assert.Equal(t, 0.0, Dependency(res.Percentages))
}

func TestComputeSumsRegions(t *testing.T) {
	points := NewPoints()
	points[Criativo][Cabeca] = 1
	points[Criativo][Peito] = 2
	points[Criativo][Ombros] = 3
	points[Criativo][Costas] = 4
	points[Criativo][Pernas] = 5

	res := Compute(points)
	assert.Equal(t, 15, res.Totals[Criativo])
	assert.Equal(t, 100, res.Percentages[Criativo])
}

func TestPercentagesSumToRoughly100(t *testing.T) {
	tables := []map[Pattern]int{
		{Criativo: 1, Conectivo: 1, Forte: 1, Lider: 1, Competitivo: 1},
		{Criativo: 3, Conectivo: 7, Forte: 11, Lider: 13, Competitivo: 17},
		{Criativo: 1, Conectivo: 2, Forte: 4, Lider: 8, Competitivo: 16},
		{Criativo: 0, Conectivo: 0, Forte: 1, Lider: 0, Competitivo: 0},
		{Criativo: 33, Conectivo: 33, Forte: 33, Lider: 0, Competitivo: 1},
		{Criativo: 6, Conectivo: 6, Forte: 6, Lider: 6, Competitivo: 7},
	}

	for _, totals := range tables {
		res := Compute(pointsWithTotals(totals))
		sum := 0
		for _, p := range Patterns {
			sum += res.Percentages[p]
		}
		assert.GreaterOrEqual(t, sum, 99, "totals %v", totals)
		assert.LessOrEqual(t, sum, 101, "totals %v", totals)
	}
}

func TestTieBreakUsesDeclarationOrder(t *testing.T) {
	res := Compute(pointsWithTotals(map[Pattern]int{
		Criativo: 20, Conectivo: 20, Forte: 20, Lider: 20, Competitivo: 20,
	}))

	assert.Equal(t, Criativo, res.Primary)
	assert.Equal(t, Conectivo, res.Secondary)
	assert.Equal(t, Forte, res.Tertiary)
}

func TestInclusionDominantPrimaryExcludesWeakSecondary(t *testing.T) {
	// primary 60%, secondary 10%: secondary out, tertiary irrelevant.
	res := Compute(pointsWithTotals(map[Pattern]int{
		Lider: 60, Criativo: 10, Conectivo: 10, Forte: 10, Competitivo: 10,
	}))

	require.Equal(t, Lider, res.Primary)
	assert.Equal(t, []Pattern{Lider}, res.Considered)
}

func TestInclusionDominantPrimaryKeepsStrongSecondaryOnly(t *testing.T) {
	// primary 60%, secondary 20%, tertiary 10%: secondary in, tertiary out.
	res := Compute(pointsWithTotals(map[Pattern]int{
		Lider: 60, Competitivo: 20, Criativo: 10, Conectivo: 10,
	}))

	require.Equal(t, Lider, res.Primary)
	require.Equal(t, Competitivo, res.Secondary)
	assert.Equal(t, []Pattern{Lider, Competitivo}, res.Considered)
}

func TestInclusionWeakPrimaryKeepsStrongTertiary(t *testing.T) {
	// primary 30%, secondary 25%, tertiary 20%: cumulative passes 50 with
	// the secondary, tertiary still included because it holds >= 15%.
	res := Compute(pointsWithTotals(map[Pattern]int{
		Lider: 30, Competitivo: 25, Conectivo: 20, Criativo: 15, Forte: 10,
	}))

	require.Equal(t, Lider, res.Primary)
	assert.Equal(t, []Pattern{Lider, Competitivo, Conectivo}, res.Considered)
}

func TestInclusionWeakPrimaryDropsWeakTertiaryPast50(t *testing.T) {
	// primary 45%, secondary 40%: cumulative 85, tertiary 9% < 15 is dropped.
	res := Compute(pointsWithTotals(map[Pattern]int{
		Lider: 45, Criativo: 40, Conectivo: 9, Forte: 4, Competitivo: 2,
	}))

	require.Equal(t, Lider, res.Primary)
	require.Equal(t, Criativo, res.Secondary)
	assert.Equal(t, []Pattern{Lider, Criativo}, res.Considered)
}

func TestInclusionTertiaryPushesCumulativePast50(t *testing.T) {
	// Flat 20% spread: primary+secondary is 40 < 50, so the tertiary comes
	// in to push the cumulative share past 50.
	res := Compute(pointsWithTotals(map[Pattern]int{
		Criativo: 20, Conectivo: 20, Forte: 20, Lider: 20, Competitivo: 20,
	}))

	assert.Equal(t, []Pattern{Criativo, Conectivo, Forte}, res.Considered)
}

func TestInclusionBoundaryExactlyFifty(t *testing.T) {
	// primary exactly 50 uses the dominant branch: 15 threshold applies.
	res := Compute(pointsWithTotals(map[Pattern]int{
		Lider: 50, Forte: 16, Conectivo: 14, Criativo: 10, Competitivo: 10,
	}))

	require.Equal(t, 50, res.Percentages[Lider])
	require.Equal(t, Forte, res.Secondary)
	assert.Equal(t, []Pattern{Lider, Forte}, res.Considered)
}

func TestInclusionBoundaryExactlyFifteen(t *testing.T) {
	// Secondary and tertiary at exactly 15 both survive the threshold.
	// The 15/15 tie resolves in declaration order: conectivo before forte.
	res := Compute(pointsWithTotals(map[Pattern]int{
		Lider: 50, Conectivo: 15, Forte: 15, Criativo: 10, Competitivo: 10,
	}))

	require.Equal(t, Conectivo, res.Secondary)
	require.Equal(t, Forte, res.Tertiary)
	assert.Equal(t, []Pattern{Lider, Conectivo, Forte}, res.Considered)
}

func TestCompositeRounding(t *testing.T) {
	percentages := map[Pattern]int{Lider: 33, Competitivo: 22, Conectivo: 11, Forte: 12}

	assert.Equal(t, 27.5, Ambition(percentages))
	assert.Equal(t, 11.5, Dependency(percentages))
}

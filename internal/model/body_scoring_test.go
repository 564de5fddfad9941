package model

import (
	"testing"

	"analysis-service/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyScoringRoundTrip(t *testing.T) {
	points := scoring.NewPoints()
	points[scoring.Lider][scoring.Cabeca] = 8
	points[scoring.Lider][scoring.Pernas] = 2
	points[scoring.Criativo][scoring.Peito] = 5

	var table BodyScoringTable
	table.SetPoints(points)

	assert.Equal(t, 8, table.LiderCabeca)
	assert.Equal(t, 2, table.LiderPernas)
	assert.Equal(t, 5, table.CriativoPeito)
	assert.Equal(t, points, table.Points())
}

func TestBodyScoringRecomputeFillsDerivedColumns(t *testing.T) {
	points := scoring.NewPoints()
	points[scoring.Criativo][scoring.Cabeca] = 10
	points[scoring.Conectivo][scoring.Cabeca] = 20
	points[scoring.Forte][scoring.Cabeca] = 5
	points[scoring.Lider][scoring.Cabeca] = 40
	points[scoring.Competitivo][scoring.Cabeca] = 25

	var table BodyScoringTable
	table.SetPoints(points)
	res := table.Recompute()

	assert.Equal(t, 40, table.TotalLider)
	assert.Equal(t, 40, table.PercentLider)
	assert.Equal(t, 25, table.PercentCompetitivo)
	assert.Equal(t, "lider", table.PatternPrimary)
	assert.Equal(t, "competitivo", table.PatternSecondary)
	assert.Equal(t, "conectivo", table.PatternTertiary)
	assert.Equal(t, scoring.Lider, res.Primary)
}

func TestBodyScoringRecomputeOverwritesStaleDerivedColumns(t *testing.T) {
	var table BodyScoringTable
	table.LiderCabeca = 10
	table.Recompute()
	require.Equal(t, "lider", table.PatternPrimary)
	require.Equal(t, 100, table.PercentLider)

	// Mutating the raw points and recomputing must replace every
	// derived value; there is no path where they diverge.
	table.LiderCabeca = 0
	table.ForteCostas = 6
	table.Recompute()

	assert.Equal(t, "forte", table.PatternPrimary)
	assert.Equal(t, 0, table.PercentLider)
	assert.Equal(t, 100, table.PercentForte)
	assert.Equal(t, 6, table.TotalForte)
}

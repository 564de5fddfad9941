package model

import (
	"time"

	"analysis-service/internal/scoring"
)

// BodyScoringTable holds the 25 raw points the analyst enters for one
// analysis request, plus the derived totals, percentages and rank labels.
// The derived columns are a cache of Recompute's output and are never
// written by any other path.
type BodyScoringTable struct {
	ID                uint `json:"id" gorm:"primaryKey"`
	AnalysisRequestID uint `json:"analysis_request_id" gorm:"uniqueIndex"`

	CriativoCabeca int `json:"criativo_cabeca"`
	CriativoPeito  int `json:"criativo_peito"`
	CriativoOmbros int `json:"criativo_ombros"`
	CriativoCostas int `json:"criativo_costas"`
	CriativoPernas int `json:"criativo_pernas"`

	ConectivoCabeca int `json:"conectivo_cabeca"`
	ConectivoPeito  int `json:"conectivo_peito"`
	ConectivoOmbros int `json:"conectivo_ombros"`
	ConectivoCostas int `json:"conectivo_costas"`
	ConectivoPernas int `json:"conectivo_pernas"`

	ForteCabeca int `json:"forte_cabeca"`
	FortePeito  int `json:"forte_peito"`
	ForteOmbros int `json:"forte_ombros"`
	ForteCostas int `json:"forte_costas"`
	FortePernas int `json:"forte_pernas"`

	LiderCabeca int `json:"lider_cabeca"`
	LiderPeito  int `json:"lider_peito"`
	LiderOmbros int `json:"lider_ombros"`
	LiderCostas int `json:"lider_costas"`
	LiderPernas int `json:"lider_pernas"`

	CompetitivoCabeca int `json:"competitivo_cabeca"`
	CompetitivoPeito  int `json:"competitivo_peito"`
	CompetitivoOmbros int `json:"competitivo_ombros"`
	CompetitivoCostas int `json:"competitivo_costas"`
	CompetitivoPernas int `json:"competitivo_pernas"`

	// Derived columns, written only by Recompute
	TotalCriativo    int `json:"total_criativo"`
	TotalConectivo   int `json:"total_conectivo"`
	TotalForte       int `json:"total_forte"`
	TotalLider       int `json:"total_lider"`
	TotalCompetitivo int `json:"total_competitivo"`

	PercentCriativo    int `json:"percent_criativo"`
	PercentConectivo   int `json:"percent_conectivo"`
	PercentForte       int `json:"percent_forte"`
	PercentLider       int `json:"percent_lider"`
	PercentCompetitivo int `json:"percent_competitivo"`

	PatternPrimary   string `json:"pattern_primary" gorm:"type:varchar(16)"`
	PatternSecondary string `json:"pattern_secondary" gorm:"type:varchar(16)"`
	PatternTertiary  string `json:"pattern_tertiary" gorm:"type:varchar(16)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// cells maps every raw point column to its pattern/region coordinate.
func (t *BodyScoringTable) cells() map[scoring.Pattern]map[scoring.Region]*int {
	return map[scoring.Pattern]map[scoring.Region]*int{
		scoring.Criativo: {
			scoring.Cabeca: &t.CriativoCabeca,
			scoring.Peito:  &t.CriativoPeito,
			scoring.Ombros: &t.CriativoOmbros,
			scoring.Costas: &t.CriativoCostas,
			scoring.Pernas: &t.CriativoPernas,
		},
		scoring.Conectivo: {
			scoring.Cabeca: &t.ConectivoCabeca,
			scoring.Peito:  &t.ConectivoPeito,
			scoring.Ombros: &t.ConectivoOmbros,
			scoring.Costas: &t.ConectivoCostas,
			scoring.Pernas: &t.ConectivoPernas,
		},
		scoring.Forte: {
			scoring.Cabeca: &t.ForteCabeca,
			scoring.Peito:  &t.FortePeito,
			scoring.Ombros: &t.ForteOmbros,
			scoring.Costas: &t.ForteCostas,
			scoring.Pernas: &t.FortePernas,
		},
		scoring.Lider: {
			scoring.Cabeca: &t.LiderCabeca,
			scoring.Peito:  &t.LiderPeito,
			scoring.Ombros: &t.LiderOmbros,
			scoring.Costas: &t.LiderCostas,
			scoring.Pernas: &t.LiderPernas,
		},
		scoring.Competitivo: {
			scoring.Cabeca: &t.CompetitivoCabeca,
			scoring.Peito:  &t.CompetitivoPeito,
			scoring.Ombros: &t.CompetitivoOmbros,
			scoring.Costas: &t.CompetitivoCostas,
			scoring.Pernas: &t.CompetitivoPernas,
		},
	}
}

// Points returns the raw point columns as a scoring table.
func (t *BodyScoringTable) Points() scoring.Points {
	points := scoring.NewPoints()
	for pattern, regions := range t.cells() {
		for region, cell := range regions {
			points[pattern][region] = *cell
		}
	}
	return points
}

// SetPoints copies a scoring table into the raw point columns.
func (t *BodyScoringTable) SetPoints(points scoring.Points) {
	for pattern, regions := range t.cells() {
		for region, cell := range regions {
			*cell = points[pattern][region]
		}
	}
}

// Percentages returns the derived percentage columns keyed by pattern.
func (t *BodyScoringTable) Percentages() map[scoring.Pattern]int {
	return map[scoring.Pattern]int{
		scoring.Criativo:    t.PercentCriativo,
		scoring.Conectivo:   t.PercentConectivo,
		scoring.Forte:       t.PercentForte,
		scoring.Lider:       t.PercentLider,
		scoring.Competitivo: t.PercentCompetitivo,
	}
}

// Recompute rewrites every derived column from the 25 raw points and
// returns the full scoring result. Every path that mutates the raw
// points must call this before saving.
func (t *BodyScoringTable) Recompute() scoring.Result {
	res := scoring.Compute(t.Points())

	t.TotalCriativo = res.Totals[scoring.Criativo]
	t.TotalConectivo = res.Totals[scoring.Conectivo]
	t.TotalForte = res.Totals[scoring.Forte]
	t.TotalLider = res.Totals[scoring.Lider]
	t.TotalCompetitivo = res.Totals[scoring.Competitivo]

	t.PercentCriativo = res.Percentages[scoring.Criativo]
	t.PercentConectivo = res.Percentages[scoring.Conectivo]
	t.PercentForte = res.Percentages[scoring.Forte]
	t.PercentLider = res.Percentages[scoring.Lider]
	t.PercentCompetitivo = res.Percentages[scoring.Competitivo]

	t.PatternPrimary = string(res.Primary)
	t.PatternSecondary = string(res.Secondary)
	t.PatternTertiary = string(res.Tertiary)

	return res
}

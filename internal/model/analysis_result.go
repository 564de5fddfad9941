package model

import "time"

// AreaNarrative is the pain/resource text pair of one pattern in one life area.
type AreaNarrative struct {
	Area     string `json:"area"`
	Pain     string `json:"pain"`
	Resource string `json:"resource"`
}

// PatternNarrative is the assembled narrative block of one considered pattern.
type PatternNarrative struct {
	Pattern string          `json:"pattern"`
	Label   string          `json:"label"`
	Percent int             `json:"percent"`
	Areas   []AreaNarrative `json:"areas"`
}

// AnalysisResult is the report generated for one analysis request when
// the analyst submits the scoring.
type AnalysisResult struct {
	ID                uint `json:"id" gorm:"primaryKey"`
	AnalysisRequestID uint `json:"analysis_request_id" gorm:"uniqueIndex"`

	PrimaryPattern   string `json:"primary_pattern" gorm:"type:varchar(16)"`
	SecondaryPattern string `json:"secondary_pattern" gorm:"type:varchar(16)"`
	TertiaryPattern  string `json:"tertiary_pattern" gorm:"type:varchar(16)"`

	PrimaryPercent   int `json:"primary_percent"`
	SecondaryPercent int `json:"secondary_percent"`
	TertiaryPercent  int `json:"tertiary_percent"`

	// Composite summary metrics, one decimal place
	Ambition   float64 `json:"ambition"`
	Dependency float64 `json:"dependency"`

	// Narrative blocks for the considered patterns only
	Narratives []PatternNarrative `json:"narratives" gorm:"serializer:json"`

	// Legacy free-text fields kept for backward compatibility
	Summary         string `json:"summary" gorm:"type:text"`
	Recommendations string `json:"recommendations" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

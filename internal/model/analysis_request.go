package model

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisRequest is the aggregate root of one analysis submission. The
// external-facing identifier is the RequestID UUID, never the numeric ID.
type AnalysisRequest struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	RequestID string `json:"request_id" gorm:"type:varchar(36);uniqueIndex"`
	UserID    uint   `json:"user_id" gorm:"index"`

	// Questionnaire answers
	MainComplaint     string `json:"main_complaint" gorm:"type:text"`
	ComplaintDuration string `json:"complaint_duration" gorm:"type:varchar(100)"`
	EmotionalState    string `json:"emotional_state" gorm:"type:text"`
	PhysicalPain      string `json:"physical_pain" gorm:"type:text"`
	Expectations      string `json:"expectations" gorm:"type:text"`

	// Stored photo paths
	PhotoFront string `json:"photo_front" gorm:"type:varchar(255)"`
	PhotoBack  string `json:"photo_back" gorm:"type:varchar(255)"`
	PhotoLeft  string `json:"photo_left" gorm:"type:varchar(255)"`
	PhotoRight string `json:"photo_right" gorm:"type:varchar(255)"`

	Status    Status     `json:"status" gorm:"type:varchar(32);index"`
	HasResult bool       `json:"has_result"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	AnalystID *uint      `json:"analyst_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAnalysisRequest returns a fresh request for the user: a new UUID,
// awaiting payment, no result.
func NewAnalysisRequest(userID uint) AnalysisRequest {
	return AnalysisRequest{
		RequestID: uuid.New().String(),
		UserID:    userID,
		Status:    StatusAwaitingPayment,
		HasResult: false,
	}
}

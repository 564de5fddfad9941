package model

import "time"

// Photo types accepted on an analysis request.
const (
	PhotoFront = "front"
	PhotoBack  = "back"
	PhotoLeft  = "left"
	PhotoRight = "right"
)

// PhotoTypes lists the four required photo slots in intake order.
var PhotoTypes = []string{PhotoFront, PhotoBack, PhotoLeft, PhotoRight}

// PhotoUpload records one stored photo file for an analysis request.
type PhotoUpload struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	AnalysisRequestID uint      `json:"analysis_request_id" gorm:"index"`
	PhotoType         string    `json:"photo_type" gorm:"type:varchar(16)"`
	Path              string    `json:"path" gorm:"type:varchar(255)"`
	Size              int64     `json:"size"`
	ContentType       string    `json:"content_type" gorm:"type:varchar(100)"`
	CreatedAt         time.Time `json:"created_at"`
}

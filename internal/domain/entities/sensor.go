package entities

import (
	"time"
)

// SensorRecord is one stored sensor reading. The raw values map is kept as
// JSON so heterogeneous measurements survive storage unchanged.
type SensorRecord struct {
	ID         uint      `gorm:"primaryKey"`
	SensorID   string    `gorm:"size:255;index"`
	SensorType string    `gorm:"size:255;index"`
	Timestamp  time.Time `gorm:"index"`
	Location   string    `gorm:"size:255"`
	RawData    []byte    `gorm:"type:jsonb"`
	IsAnomaly  bool

	// Relations
	Anomalies []AnomalyRecord `gorm:"foreignKey:SensorRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time
}

// AnomalyRecord - one threshold violation attached to a stored record
type AnomalyRecord struct {
	ID             uint   `gorm:"primaryKey"`
	SensorRecordID uint   `gorm:"index"`
	Description    string `gorm:"size:512"`
	DetectedAt     time.Time
}

package interfaces

import (
	"context"
	"time"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
)

type SensorRepository interface {
	// Save durably stores the record together with its anomaly descriptions
	// as one logical unit.
	Save(ctx context.Context, data *models.SensorData, analysis *models.AnalysisResult) error
	FindBySensor(ctx context.Context, sensorID string, start, end time.Time) ([]models.SensorData, error)
}

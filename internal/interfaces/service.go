package interfaces

import (
	"context"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
)

type SensorAnalyzer interface {
	// Analyze evaluates the record against the per-type threshold table.
	// It never fails; unknown types and non-numeric values pass through.
	Analyze(data *models.SensorData) models.AnalysisResult
}

type EventPublisher interface {
	PublishSensorData(ctx context.Context, data *models.SensorData) error
	Close() error
}

type AlertNotifier interface {
	// SendAnomalyAlert delivery is best effort; the pipeline logs and
	// swallows failures.
	SendAnomalyAlert(ctx context.Context, analysis *models.AnalysisResult) error
}

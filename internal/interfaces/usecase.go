package interfaces

import (
	"context"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
)

type SensorPipeline interface {
	// Process runs analyze -> persist -> notify-if-anomaly -> publish.
	// Safe for concurrent invocation from any ingress channel.
	Process(ctx context.Context, data *models.SensorData) (*models.ProcessResult, error)
}

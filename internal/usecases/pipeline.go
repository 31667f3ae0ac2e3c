package usecases

import (
	"context"
	"fmt"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/Lucartis/PrecisionAgriculture/internal/interfaces"
	"github.com/Lucartis/PrecisionAgriculture/internal/observability"
	"go.uber.org/zap"
)

type sensorPipeline struct {
	analyzer  interfaces.SensorAnalyzer
	repo      interfaces.SensorRepository
	notifier  interfaces.AlertNotifier
	publisher interfaces.EventPublisher
	metrics   *observability.Metrics
	log       *zap.Logger
}

func NewSensorPipeline(
	analyzer interfaces.SensorAnalyzer,
	repo interfaces.SensorRepository,
	notifier interfaces.AlertNotifier,
	publisher interfaces.EventPublisher,
	metrics *observability.Metrics,
	log *zap.Logger,
) interfaces.SensorPipeline {
	return &sensorPipeline{
		analyzer:  analyzer,
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
	}
}

// Process runs the fixed sequence: analyze, persist, notify on anomaly,
// publish. Persistence must complete before publishing so a failed call never
// acknowledges data that was not durably recorded.
func (p *sensorPipeline) Process(ctx context.Context, data *models.SensorData) (*models.ProcessResult, error) {
	analysis := p.analyzer.Analyze(data)

	if err := p.repo.Save(ctx, data, &analysis); err != nil {
		return nil, fmt.Errorf("persist sensor data: %w", err)
	}

	if analysis.IsAnomaly {
		p.metrics.AnomaliesDetected.Inc()
		if err := p.notifier.SendAnomalyAlert(ctx, &analysis); err != nil {
			// Alert delivery is best effort relative to data durability.
			p.log.Warn("anomaly alert delivery failed",
				zap.Error(err),
				zap.String("sensor_id", data.SensorID))
		}
	}

	if err := p.publisher.PublishSensorData(ctx, data); err != nil {
		// The record is already persisted; the caller can retry the
		// downstream publish without data loss.
		p.metrics.PublishFailures.Inc()
		return nil, fmt.Errorf("publish sensor data: %w", err)
	}

	return &models.ProcessResult{Analysis: analysis, Published: true}, nil
}

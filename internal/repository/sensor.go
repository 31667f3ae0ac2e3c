package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/entities"
	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/Lucartis/PrecisionAgriculture/internal/interfaces"
	"gorm.io/gorm"
)

type sensorRepository struct {
	db *gorm.DB
}

func NewSensorRepository(db *gorm.DB) interfaces.SensorRepository {
	return &sensorRepository{db: db}
}

// Save writes the record row and its anomaly child rows in one transaction.
func (r *sensorRepository) Save(ctx context.Context, data *models.SensorData, analysis *models.AnalysisResult) error {
	raw, err := json.Marshal(data.Values)
	if err != nil {
		return fmt.Errorf("marshal sensor values: %w", err)
	}

	record := entities.SensorRecord{
		SensorID:   data.SensorID,
		SensorType: data.SensorType,
		Timestamp:  data.Timestamp,
		Location:   data.Location,
		RawData:    raw,
		IsAnomaly:  analysis.IsAnomaly,
	}

	if analysis.IsAnomaly {
		detectedAt := time.Now().UTC()
		for _, description := range analysis.Anomalies {
			record.Anomalies = append(record.Anomalies, entities.AnomalyRecord{
				Description: description,
				DetectedAt:  detectedAt,
			})
		}
	}

	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *sensorRepository) FindBySensor(ctx context.Context, sensorID string, start, end time.Time) ([]models.SensorData, error) {
	var rows []entities.SensorRecord
	err := r.db.WithContext(ctx).
		Where("sensor_id = ? AND timestamp BETWEEN ? AND ?", sensorID, start, end).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]models.SensorData, 0, len(rows))
	for _, row := range rows {
		values := map[string]models.Value{}
		if len(row.RawData) > 0 {
			if err := json.Unmarshal(row.RawData, &values); err != nil {
				return nil, fmt.Errorf("decode stored values: %w", err)
			}
		}
		result = append(result, models.SensorData{
			SensorID:   row.SensorID,
			SensorType: row.SensorType,
			Timestamp:  row.Timestamp,
			Location:   row.Location,
			Values:     values,
		})
	}
	return result, nil
}

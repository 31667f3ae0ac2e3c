package services

import (
	"fmt"
	"os"
	"sort"
	"strings"

	datahub "github.com/Lucartis/PrecisionAgriculture"
	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/Lucartis/PrecisionAgriculture/internal/interfaces"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Thresholds is the inclusive operating range for one sensor type.
type Thresholds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DefaultThresholds returns the built-in per-type operating ranges.
func DefaultThresholds() map[string]Thresholds {
	return map[string]Thresholds{
		"temperature":   {Min: -10, Max: 50},
		"humidity":      {Min: 0, Max: 100},
		"soil_moisture": {Min: 0, Max: 100},
		"light":         {Min: 0, Max: 100000},
	}
}

// LoadThresholds merges the YAML file at path over the defaults. Keys are
// lowercased so lookups stay case-insensitive.
func LoadThresholds(path string) (map[string]Thresholds, error) {
	table := DefaultThresholds()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thresholds file: %w", err)
	}

	var overrides map[string]Thresholds
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse thresholds file: %w", err)
	}
	for sensorType, th := range overrides {
		table[strings.ToLower(sensorType)] = th
	}
	return table, nil
}

type sensorAnalyzer struct {
	thresholds map[string]Thresholds
	log        *zap.Logger
}

func NewSensorAnalyzer(cfg *datahub.Config, log *zap.Logger) (interfaces.SensorAnalyzer, error) {
	table, err := LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return nil, err
	}
	return &sensorAnalyzer{thresholds: table, log: log}, nil
}

func (a *sensorAnalyzer) Analyze(data *models.SensorData) models.AnalysisResult {
	result := models.AnalysisResult{
		SensorID:   data.SensorID,
		SensorType: data.SensorType,
		Timestamp:  data.Timestamp,
		Anomalies:  []string{},
	}

	th, ok := a.thresholds[strings.ToLower(data.SensorType)]
	if !ok {
		// Unknown types are never flagged.
		a.log.Info("no thresholds configured for sensor type",
			zap.String("sensor_type", data.SensorType))
		return result
	}

	// Sorted keys keep the anomaly ordering reproducible.
	keys := make([]string, 0, len(data.Values))
	for key := range data.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := data.Values[key].Float()
		if !ok {
			a.log.Warn("measurement is not numeric, skipping",
				zap.String("measurement", key),
				zap.String("sensor_id", data.SensorID))
			continue
		}
		if value < th.Min || value > th.Max {
			result.IsAnomaly = true
			msg := fmt.Sprintf("value %s: %g is outside the normal range (%g..%g)",
				key, value, th.Min, th.Max)
			result.Anomalies = append(result.Anomalies, msg)
			a.log.Warn("anomaly detected",
				zap.String("sensor_type", data.SensorType),
				zap.String("sensor_id", data.SensorID),
				zap.String("anomaly", msg))
		}
	}

	return result
}

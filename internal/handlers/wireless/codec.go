package wireless

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
)

// ErrNotNumeric marks a canonical value that cannot be carried on the wire,
// which only holds float readings.
var ErrNotNumeric = errors.New("measurement value is not numeric")

// The wire format carries no device identity, so inbound payloads collapse
// onto a placeholder sensor.
const (
	fallbackSensorID   = "mobile_sensor"
	fallbackSensorType = "multi_sensor"
)

// ToWireFormat converts a canonical record into the per-reading wireless
// payload. Readings are emitted in sorted key order so the output is
// deterministic. A non-coercible value fails the whole conversion.
func ToWireFormat(data *models.SensorData) (*models.SensorPayload, error) {
	ts := data.Timestamp.UnixMilli()
	payload := &models.SensorPayload{
		Sensors:   []models.SensorReading{},
		Timestamp: ts,
	}

	keys := make([]string, 0, len(data.Values))
	for key := range data.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := data.Values[key].Float()
		if !ok {
			return nil, fmt.Errorf("measurement %q: %w", key, ErrNotNumeric)
		}
		payload.Sensors = append(payload.Sensors, models.SensorReading{
			Type:      readingType(key),
			Value:     value,
			Unit:      extractUnit(key),
			Location:  data.Location,
			Timestamp: ts,
		})
	}

	return payload, nil
}

// FromWireFormat collapses the reading list into one canonical record keyed by
// type, or type_unit when the unit is set. Colliding keys overwrite, last
// write wins. Sensor identity defaults to the placeholder; the location comes
// from the first reading.
func FromWireFormat(payload *models.SensorPayload) *models.SensorData {
	data := &models.SensorData{
		SensorID:   fallbackSensorID,
		SensorType: fallbackSensorType,
		Timestamp:  time.UnixMilli(payload.Timestamp).UTC(),
		Values:     make(map[string]models.Value, len(payload.Sensors)),
	}

	if len(payload.Sensors) > 0 {
		data.Location = payload.Sensors[0].Location
	}

	for _, reading := range payload.Sensors {
		key := reading.Type
		if reading.Unit != "" {
			key = reading.Type + "_" + reading.Unit
		}
		data.Values[key] = models.Number(reading.Value)
	}

	return data
}

// extractUnit takes everything after the first underscore as the unit, with
// keyword fallbacks for un-suffixed keys.
func extractUnit(key string) string {
	if i := strings.Index(key, "_"); i >= 0 {
		return key[i+1:]
	}

	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "temp"):
		return "°C"
	case strings.Contains(lower, "hum"):
		return "%"
	case strings.Contains(lower, "ph"):
		return ""
	}
	return ""
}

func readingType(key string) string {
	if i := strings.Index(key, "_"); i >= 0 {
		return key[:i]
	}
	return key
}

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Lucartis/PrecisionAgriculture/internal/domain/entities"
	"github.com/Lucartis/PrecisionAgriculture/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.SensorRecord{}, &entities.AnomalyRecord{}))
	return db
}

func storedRecord(id string, ts time.Time) *models.SensorData {
	return &models.SensorData{
		SensorID:   id,
		SensorType: "temperature",
		Timestamp:  ts,
		Location:   "field-1",
		Values: map[string]models.Value{
			"reading": models.Number(75),
			"status":  models.Text("ok"),
		},
	}
}

func TestSaveStoresRecordWithAnomalies(t *testing.T) {
	db := newTestDB(t)
	repo := NewSensorRepository(db)

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	analysis := &models.AnalysisResult{
		SensorID:   "T1",
		SensorType: "temperature",
		Timestamp:  ts,
		IsAnomaly:  true,
		Anomalies:  []string{"v1", "v2"},
	}

	require.NoError(t, repo.Save(context.Background(), storedRecord("T1", ts), analysis))

	var row entities.SensorRecord
	require.NoError(t, db.Preload("Anomalies").First(&row, "sensor_id = ?", "T1").Error)

	assert.Equal(t, "temperature", row.SensorType)
	assert.Equal(t, "field-1", row.Location)
	assert.True(t, row.IsAnomaly)
	require.Len(t, row.Anomalies, 2)
	assert.Equal(t, "v1", row.Anomalies[0].Description)
	assert.NotEmpty(t, row.RawData)
}

func TestSaveWithoutAnomalies(t *testing.T) {
	db := newTestDB(t)
	repo := NewSensorRepository(db)

	ts := time.Now().UTC()
	analysis := &models.AnalysisResult{SensorID: "H1", SensorType: "humidity", Timestamp: ts, Anomalies: []string{}}

	require.NoError(t, repo.Save(context.Background(), storedRecord("H1", ts), analysis))

	var count int64
	require.NoError(t, db.Model(&entities.AnomalyRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFindBySensorOrdersAndFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewSensorRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	noAnomaly := &models.AnalysisResult{Anomalies: []string{}}

	require.NoError(t, repo.Save(ctx, storedRecord("T1", base.Add(1*time.Hour)), noAnomaly))
	require.NoError(t, repo.Save(ctx, storedRecord("T1", base.Add(3*time.Hour)), noAnomaly))
	require.NoError(t, repo.Save(ctx, storedRecord("T1", base.Add(48*time.Hour)), noAnomaly)) // outside window
	require.NoError(t, repo.Save(ctx, storedRecord("T2", base.Add(2*time.Hour)), noAnomaly))  // other sensor

	records, err := repo.FindBySensor(ctx, "T1", base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.True(t, records[0].Timestamp.After(records[1].Timestamp))
	for _, r := range records {
		assert.Equal(t, "T1", r.SensorID)
	}

	// Heterogeneous values survive the round trip through storage.
	value, ok := records[0].Values["reading"].Float()
	require.True(t, ok)
	assert.Equal(t, 75.0, value)
	assert.Equal(t, "ok", records[0].Values["status"].String())
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SensorData is the canonical sensor record. Every ingress channel converts
// into this shape before the record enters the pipeline, and it is never
// mutated afterwards.
type SensorData struct {
	SensorID   string           `json:"sensorId"`
	SensorType string           `json:"sensorType"`
	Timestamp  time.Time        `json:"timestamp"`
	Location   string           `json:"location"`
	Values     map[string]Value `json:"values"`
}

// Validate checks the required identity fields. Records failing validation are
// rejected at the ingress boundary and never reach the pipeline.
func (d *SensorData) Validate() error {
	if d.SensorID == "" || d.SensorType == "" {
		return errors.New("sensorId and sensorType are required")
	}
	return nil
}

// Value is a single measurement value: either a number or free text.
// Non-numeric entries are carried through storage and publishing untouched
// but are skipped during analysis.
type Value struct {
	num   float64
	text  string
	isNum bool
}

func Number(v float64) Value { return Value{num: v, isNum: true} }

func Text(s string) Value { return Value{text: s} }

func (v Value) IsNumber() bool { return v.isNum }

// Float returns the numeric reading. Text values are accepted when they parse
// as a float; anything else reports false.
func (v Value) Float() (float64, bool) {
	if v.isNum {
		return v.num, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		*v = Number(t)
	case string:
		*v = Text(t)
	default:
		return fmt.Errorf("unsupported measurement value type %T", raw)
	}
	return nil
}

// AnalysisResult is produced once per pipeline run by the analyzer and
// consumed by the storage and alerting sinks.
type AnalysisResult struct {
	SensorID   string    `json:"sensorId"`
	SensorType string    `json:"sensorType"`
	Timestamp  time.Time `json:"timestamp"`
	IsAnomaly  bool      `json:"isAnomaly"`
	Anomalies  []string  `json:"anomalies"`
}

// Severity grades an anomalous result by the number of violated bounds.
func (r *AnalysisResult) Severity() string {
	if len(r.Anomalies) > 2 {
		return "high"
	}
	return "medium"
}

// ProcessResult summarizes one pipeline run for the ingress adapter building
// its acknowledgement.
type ProcessResult struct {
	Analysis  AnalysisResult
	Published bool
}

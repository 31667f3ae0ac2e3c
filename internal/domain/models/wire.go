package models

// SensorReading is one measurement in the wireless wire payload, denormalized
// with its own unit, location and timestamp (epoch milliseconds).
type SensorReading struct {
	Type      string  `json:"type"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Location  string  `json:"location"`
	Timestamp int64   `json:"timestamp"`
}

// SensorPayload is the wireless wire format: an ordered list of readings plus
// a payload-level timestamp. It carries no device identity.
type SensorPayload struct {
	Sensors   []SensorReading `json:"sensors"`
	Timestamp int64           `json:"timestamp"`
}

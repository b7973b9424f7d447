package measurement

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Used for separating substrings in database and cache keys. The octothorpe is
// fine for this because device IDs and timestamps, the two things most likely
// to be used in keys, can't contain it.
const keySep = "#"

// Value names used by ValueMap and the stats functions.
const (
	KeyTemp              = "temp"
	KeyPressure          = "pressure"
	KeyReferencePressure = "ref_pressure"
)

var deviceIDRegex = regexp.MustCompile("^[a-z][a-z0-9+.%~_-]{2,254}$")

// StorableMeasurement is one reading from a device. Pointer fields are nil when
// the device's sensors don't provide that value.
type StorableMeasurement struct {
	DeviceID        string    `json:"device_id,omitempty"`
	Timestamp       time.Time `json:"timestamp,omitempty"`
	UploadTimestamp time.Time `json:"upload_timestamp,omitempty"`

	// Temp is in °C.
	Temp *float32 `json:"temp,omitempty"`
	// Pressure is in hPa.
	Pressure *float32 `json:"pressure,omitempty"`
	// ReferencePressure is the sensor's autozero reference in hPa, if set.
	ReferencePressure *float32 `json:"ref_pressure,omitempty"`
}

// Validate checks the device ID and timestamp.
func (m *StorableMeasurement) Validate() error {
	if !deviceIDRegex.MatchString(m.DeviceID) {
		return fmt.Errorf("measurement: device ID %q does not match %s", m.DeviceID, deviceIDRegex)
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("measurement: missing timestamp")
	}
	return nil
}

// DBKey returns a string key suitable for a database. It promotes Device ID and timestamp into the key.
func (m *StorableMeasurement) DBKey() string {
	return strings.Join([]string{m.DeviceID, m.Timestamp.Format(time.RFC3339)}, keySep)
}

// ValueMap returns the set values keyed by KeyTemp, KeyPressure and
// KeyReferencePressure.
func (m *StorableMeasurement) ValueMap() map[string]float32 {
	vals := make(map[string]float32)
	if m.Temp != nil {
		vals[KeyTemp] = *m.Temp
	}
	if m.Pressure != nil {
		vals[KeyPressure] = *m.Pressure
	}
	if m.ReferencePressure != nil {
		vals[KeyReferencePressure] = *m.ReferencePressure
	}
	return vals
}

func (m StorableMeasurement) String() string {
	var vals []string
	if m.Pressure != nil {
		vals = append(vals, fmt.Sprintf("%.2fhPa", *m.Pressure))
	}
	if m.Temp != nil {
		vals = append(vals, fmt.Sprintf("%.3f°C", *m.Temp))
	}
	if len(vals) == 0 {
		vals = append(vals, "[unknown]")
	}

	delay := ""
	if !m.UploadTimestamp.IsZero() {
		delay = fmt.Sprintf(" (%v upload delay)", m.UploadTimestamp.Sub(m.Timestamp))
	}

	return fmt.Sprintf("%s %s %s%s", m.DeviceID, strings.Join(vals, " "), m.Timestamp.Format(time.RFC3339), delay)
}

// CacheKeyLatest returns the cache key of the latest measurement for the given device ID.
func CacheKeyLatest(deviceID string) string {
	return strings.Join([]string{deviceID, "latest"}, keySep)
}

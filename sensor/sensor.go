package sensor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mtraver/lps2x/measurement"
)

var (
	sensorsMu sync.Mutex
	sensors   map[string]Sensor
)

// Sensor is one source of values for a StorableMeasurement.
type Sensor interface {
	// Init performs any sensor-specific initialization.
	Init() error
	// Sense queries the sensor for measurements and sets the appropriate
	// field(s) in the given Measurement. This is so that the same Measurement
	// may be passed to a series of sensors that each measure different things.
	Sense(m *measurement.StorableMeasurement) error
	// Shutdown performs an sensor-specific shutdown or cleanup operations.
	Shutdown() error
}

// Register adds a Sensor to the set of available sensors.
func Register(name string, s Sensor) {
	sensorsMu.Lock()
	defer sensorsMu.Unlock()

	if sensors == nil {
		sensors = make(map[string]Sensor)
	}
	sensors[name] = s
}

// Get looks up a sensor by name. It returns an error if no sensor with
// the given name is found.
func Get(name string) (Sensor, error) {
	sensorsMu.Lock()
	defer sensorsMu.Unlock()

	if sensors == nil {
		sensors = make(map[string]Sensor)
	}

	if _, ok := sensors[name]; !ok {
		return nil, fmt.Errorf("sensor: unknown sensor %q", name)
	}
	return sensors[name], nil
}

// Names returns the registered sensor names, sorted.
func Names() []string {
	sensorsMu.Lock()
	defer sensorsMu.Unlock()

	names := make([]string, 0, len(sensors))
	for k := range sensors {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

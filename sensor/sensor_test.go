package sensor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mtraver/lps2x/measurement"
)

type nopSensor struct{}

func (nopSensor) Init() error                                    { return nil }
func (nopSensor) Sense(m *measurement.StorableMeasurement) error { return nil }
func (nopSensor) Shutdown() error                                { return nil }

func TestRegistry(t *testing.T) {
	Register("b", nopSensor{})
	Register("a", nopSensor{})

	if _, err := Get("a"); err != nil {
		t.Errorf("Get(%q): %v", "a", err)
	}
	if _, err := Get("missing"); err == nil {
		t.Errorf("Get(%q): got nil error", "missing")
	}
	if diff := cmp.Diff(Names(), []string{"a", "b"}); diff != "" {
		t.Errorf("Unexpected names (-got +want):\n%s", diff)
	}
}

package measurement

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var cmpFloats = cmpopts.EquateApprox(0, 0.0001)

var (
	oneMeasurement = []StorableMeasurement{
		{
			Temp:     floatPtr(18.3),
			Pressure: floatPtr(1012.1),
		},
	}

	fourMeasurements = []StorableMeasurement{
		{
			Temp:     floatPtr(18.3),
			Pressure: floatPtr(1012.0),
		},
		{
			Temp:     floatPtr(19.0),
			Pressure: floatPtr(1014.0),
		},
		{
			Temp:     floatPtr(25.85),
			Pressure: floatPtr(1010.0),
		},
		{
			// Reference pressure only appears here.
			Temp:              floatPtr(12.2),
			Pressure:          floatPtr(1016.0),
			ReferencePressure: floatPtr(1000.0),
		},
	}
)

func TestMean(t *testing.T) {
	cases := []struct {
		name string
		sms  []StorableMeasurement
		want map[string]float32
	}{
		{
			name: "empty",
			sms:  []StorableMeasurement{},
			want: map[string]float32{},
		},
		{
			name: "single_measurement",
			sms:  oneMeasurement,
			want: map[string]float32{
				"temp":     18.3,
				"pressure": 1012.1,
			},
		},
		{
			name: "multiple_measurements",
			sms:  fourMeasurements,
			want: map[string]float32{
				"temp":         18.8375,
				"pressure":     1013.0,
				"ref_pressure": 1000.0,
			},
		},
		{
			name: "no_values",
			sms:  []StorableMeasurement{{DeviceID: "foo"}},
			want: map[string]float32{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Mean(tc.sms)
			if diff := cmp.Diff(got, tc.want, cmpFloats); diff != "" {
				t.Errorf("Unexpected result (-got +want):\n%s", diff)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	cases := []struct {
		name string
		sms  []StorableMeasurement
		want map[string]float32
	}{
		{
			name: "empty",
			sms:  []StorableMeasurement{},
			want: map[string]float32{},
		},
		{
			name: "single_measurement",
			sms:  oneMeasurement,
			want: map[string]float32{
				"temp":     0.0,
				"pressure": 0.0,
			},
		},
		{
			name: "multiple_measurements",
			sms:  fourMeasurements,
			want: map[string]float32{
				"temp":         4.83598,
				"pressure":     2.23607,
				"ref_pressure": 0.0,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StdDev(tc.sms)
			if diff := cmp.Diff(got, tc.want, cmpFloats); diff != "" {
				t.Errorf("Unexpected result (-got +want):\n%s", diff)
			}
		})
	}
}

func TestMin(t *testing.T) {
	cases := []struct {
		name string
		sms  []StorableMeasurement
		want map[string]float32
	}{
		{
			name: "empty",
			sms:  []StorableMeasurement{},
			want: map[string]float32{},
		},
		{
			name: "multiple_measurements",
			sms:  fourMeasurements,
			want: map[string]float32{
				"temp":         12.2,
				"pressure":     1010.0,
				"ref_pressure": 1000.0,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Min(tc.sms)
			if diff := cmp.Diff(got, tc.want, cmpFloats); diff != "" {
				t.Errorf("Unexpected result (-got +want):\n%s", diff)
			}
		})
	}
}

func TestMax(t *testing.T) {
	cases := []struct {
		name string
		sms  []StorableMeasurement
		want map[string]float32
	}{
		{
			name: "empty",
			sms:  []StorableMeasurement{},
			want: map[string]float32{},
		},
		{
			name: "multiple_measurements",
			sms:  fourMeasurements,
			want: map[string]float32{
				"temp":         25.85,
				"pressure":     1016.0,
				"ref_pressure": 1000.0,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Max(tc.sms)
			if diff := cmp.Diff(got, tc.want, cmpFloats); diff != "" {
				t.Errorf("Unexpected result (-got +want):\n%s", diff)
			}
		})
	}
}

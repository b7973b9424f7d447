package main

import (
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/mtraver/lps2x/measurement"
)

func floatPtr(f float32) *float32 {
	return &f
}

var (
	testTimestamp = time.Date(2018, time.March, 25, 0, 0, 0, 0, time.UTC)

	testMeasurement = measurement.StorableMeasurement{
		DeviceID:          "foo",
		Timestamp:         testTimestamp,
		Temp:              floatPtr(18.5),
		Pressure:          floatPtr(1013.5),
		ReferencePressure: floatPtr(1000.0),
	}
)

func TestNewInfluxDBPoints(t *testing.T) {
	cases := []struct {
		name string
		m    measurement.StorableMeasurement
		want []*write.Point
	}{
		{
			name: "many",
			m:    testMeasurement,
			want: []*write.Point{
				influxdb2.NewPointWithMeasurement("stat").AddTag("device", "foo").AddField("temp", float32(18.5)).SetTime(testTimestamp),
				influxdb2.NewPointWithMeasurement("stat").AddTag("device", "foo").AddField("pressure", float32(1013.5)).SetTime(testTimestamp),
				influxdb2.NewPointWithMeasurement("stat").AddTag("device", "foo").AddField("ref_pressure", float32(1000.0)).SetTime(testTimestamp),
			},
		},
		{
			name: "none",
			m:    measurement.StorableMeasurement{DeviceID: "foo", Timestamp: testTimestamp},
			want: []*write.Point{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := newInfluxDBPoints(&c.m)

			// Sort slices before comparing them. Sort by the key of the first field, which is
			// brittle, but since in this case we only have one field per Point it works.
			sort.Slice(got, func(i, j int) bool {
				return got[i].FieldList()[0].Key < got[j].FieldList()[0].Key
			})
			sort.Slice(c.want, func(i, j int) bool {
				return c.want[i].FieldList()[0].Key < c.want[j].FieldList()[0].Key
			})

			if diff := cmp.Diff(got, c.want, cmp.AllowUnexported(write.Point{})); diff != "" {
				t.Errorf("Unexpected result (-got +want):\n%s", diff)
			}
		})
	}
}

package main

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/mtraver/lps2x/measurement"
)

const influxMeasurement = "stat"

func newInfluxDBPoints(m *measurement.StorableMeasurement) []*write.Point {
	vm := m.ValueMap()
	points := make([]*write.Point, 0, len(vm))
	for name, v := range vm {
		p := influxdb2.NewPointWithMeasurement(influxMeasurement).
			AddTag("device", m.DeviceID).
			AddField(name, v).
			SetTime(m.Timestamp)
		points = append(points, p)
	}

	return points
}

// InfluxDB writes each measurement as one point per value.
type InfluxDB struct {
	client influxdb2.Client
	org    string
	bucket string
}

func NewInfluxDB(serverURL, token, org, bucket string) *InfluxDB {
	return &InfluxDB{
		client: influxdb2.NewClient(serverURL, token),
		org:    org,
		bucket: bucket,
	}
}

func (db *InfluxDB) Name() string {
	return "influxdb"
}

func (db *InfluxDB) Publish(ctx context.Context, m *measurement.StorableMeasurement) error {
	points := newInfluxDBPoints(m)
	if len(points) == 0 {
		return nil
	}

	writeAPI := db.client.WriteAPIBlocking(db.org, db.bucket)
	if err := writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influxdb: %v", err)
	}
	return nil
}

func (db *InfluxDB) Close() {
	db.client.Close()
}

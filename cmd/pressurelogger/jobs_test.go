package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mtraver/lps2x/cache"
	"github.com/mtraver/lps2x/measurement"
	"github.com/mtraver/lps2x/sensor"
	"github.com/mtraver/lps2x/sensor/dummy"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakePublisher struct {
	name string
	err  error

	mu  sync.Mutex
	got []measurement.StorableMeasurement
}

func (p *fakePublisher) Name() string { return p.name }

func (p *fakePublisher) Publish(ctx context.Context, m *measurement.StorableMeasurement) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, *m)
	return p.err
}

type failingSensor struct{}

func (failingSensor) Init() error                                    { return nil }
func (failingSensor) Sense(m *measurement.StorableMeasurement) error { return errors.New("no ack") }
func (failingSensor) Shutdown() error                                { return nil }

func init() {
	sensor.Register("test-dummy", dummy.Dummy{})
	sensor.Register("test-failing", failingSensor{})
}

func TestSenseJob(t *testing.T) {
	ok := &fakePublisher{name: "ok"}
	bad := &fakePublisher{name: "bad", err: errors.New("broker down")}
	met := newMetrics()
	latest := cache.New[measurement.StorableMeasurement]()

	j := SenseJob{
		DeviceID:   "baro-1",
		Sensors:    []string{"test-dummy", "test-failing", "nonexistent"},
		Publishers: []Publisher{ok, bad},
		Latest:     latest,
		Metrics:    met,
		now:        func() time.Time { return testTimestamp },
	}
	j.Run()

	p, temp := dummy.Pressure, dummy.Temp
	want := measurement.StorableMeasurement{
		DeviceID:  "baro-1",
		Timestamp: testTimestamp,
		Pressure:  &p,
		Temp:      &temp,
	}

	for _, pub := range []*fakePublisher{ok, bad} {
		if diff := cmp.Diff(pub.got, []measurement.StorableMeasurement{want}); diff != "" {
			t.Errorf("[%s] Unexpected publishes (-got +want):\n%s", pub.name, diff)
		}
	}

	got, found := latest.Get(measurement.CacheKeyLatest("baro-1"))
	if !found {
		t.Fatalf("latest measurement not cached")
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Unexpected cached measurement (-got +want):\n%s", diff)
	}

	if got := testutil.ToFloat64(met.pressure); got != float64(dummy.Pressure) {
		t.Errorf("pressure gauge = %v, want %v", got, dummy.Pressure)
	}
	if got := testutil.ToFloat64(met.senseFailures.WithLabelValues("test-failing")); got != 1 {
		t.Errorf("sense failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(met.publishFailures.WithLabelValues("bad")); got != 1 {
		t.Errorf("publish failures for bad = %v, want 1", got)
	}
	if got := testutil.ToFloat64(met.publishFailures.WithLabelValues("ok")); got != 0 {
		t.Errorf("publish failures for ok = %v, want 0", got)
	}
}

func TestSenseJobNoMeasurements(t *testing.T) {
	pub := &fakePublisher{name: "ok"}
	latest := cache.New[measurement.StorableMeasurement]()

	SenseJob{
		DeviceID:   "baro-1",
		Sensors:    []string{"test-failing"},
		Publishers: []Publisher{pub},
		Latest:     latest,
	}.Run()

	if len(pub.got) != 0 {
		t.Errorf("published %d measurements, want 0", len(pub.got))
	}
	if _, found := latest.Get(measurement.CacheKeyLatest("baro-1")); found {
		t.Errorf("measurement cached despite no successful sensor")
	}
}

func TestSenseJobDryrun(t *testing.T) {
	pub := &fakePublisher{name: "ok"}

	SenseJob{
		DeviceID:   "baro-1",
		Sensors:    []string{"test-dummy"},
		Publishers: []Publisher{pub},
		Dryrun:     true,
	}.Run()

	if len(pub.got) != 0 {
		t.Errorf("published %d measurements in dry run, want 0", len(pub.got))
	}
}

func TestPublishJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	j := SenseJob{
		Publishers: []Publisher{
			&fakePublisher{name: "a", err: errA},
			&fakePublisher{name: "b", err: errB},
			&fakePublisher{name: "c"},
		},
	}

	m := testMeasurement
	err := j.publish(&m)
	if err == nil {
		t.Fatalf("publish: got nil error, want error")
	}
	for _, s := range []string{"[a] a failed", "[b] b failed"} {
		if !strings.Contains(err.Error(), s) {
			t.Errorf("error %q does not mention %q", err, s)
		}
	}

	if err := (SenseJob{Publishers: []Publisher{&fakePublisher{name: "c"}}}).publish(&m); err != nil {
		t.Errorf("publish: got %v, want nil", err)
	}
}

// slowSensor takes as long as a default multi-sample reading and records how
// many Sense calls were in flight at once.
type slowSensor struct {
	d time.Duration

	mu      sync.Mutex
	active  int
	maxSeen int
	calls   int
}

func (s *slowSensor) Init() error     { return nil }
func (s *slowSensor) Shutdown() error { return nil }

func (s *slowSensor) Sense(m *measurement.StorableMeasurement) error {
	s.mu.Lock()
	s.active++
	s.calls++
	if s.active > s.maxSeen {
		s.maxSeen = s.active
	}
	s.mu.Unlock()

	time.Sleep(s.d)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()

	p := float32(1013.25)
	m.Pressure = &p
	return nil
}

func TestSchedulerSerializesSenseJobs(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for several cron firings")
	}

	s := &slowSensor{d: 2500 * time.Millisecond}
	sensor.Register("test-slow", s)

	cr := newScheduler()
	if _, err := cr.AddJob("@every 1s", SenseJob{
		DeviceID: "baro-1",
		Sensors:  []string{"test-slow"},
		Dryrun:   true,
	}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	cr.Start()
	time.Sleep(4500 * time.Millisecond)
	<-cr.Stop().Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == 0 {
		t.Fatalf("Sense never ran")
	}
	if s.maxSeen != 1 {
		t.Errorf("%d Sense calls ran at once, want 1", s.maxSeen)
	}
	if s.active != 0 {
		t.Errorf("%d Sense calls still running after Stop", s.active)
	}
}

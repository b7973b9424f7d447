package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mtraver/lps2x/cache"
	"github.com/mtraver/lps2x/cmd/pressurelogger/pending"
	"github.com/mtraver/lps2x/measurement"
	"github.com/mtraver/lps2x/sensor"
	cron "github.com/robfig/cron/v3"
)

// latestTTL is how long the web index shows a measurement.
const latestTTL = time.Hour

// Publisher sends a measurement somewhere.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, m *measurement.StorableMeasurement) error
}

// newScheduler returns a cron scheduler that skips a firing while the
// previous run of the same job is still going. Sensors own their device
// exclusively, so SenseJobs must not overlap.
func newScheduler() *cron.Cron {
	return cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
}

type SetupJob struct {
	Sensors []string
}

func (j SetupJob) Run() {
	for _, name := range j.Sensors {
		s, err := sensor.Get(name)
		if err != nil {
			log.Printf("Error getting sensor %q: %v", name, err)
			continue
		}
		if err := s.Init(); err != nil {
			log.Printf("Failed to init %q: %v", name, err)
			continue
		}
	}
}

type SenseJob struct {
	DeviceID   string
	Sensors    []string
	Publishers []Publisher
	Dryrun     bool

	// Latest, if set, receives each measurement under
	// measurement.CacheKeyLatest.
	Latest  *cache.Cache[measurement.StorableMeasurement]
	History *history
	Metrics *metrics

	// PendingDir is where publishers save measurements they failed to send.
	// Its size is exported as a metric.
	PendingDir string

	now func() time.Time
}

func (j SenseJob) Run() {
	now := time.Now
	if j.now != nil {
		now = j.now
	}

	// Create a Measurement that we'll pass along to each sensor.
	m := measurement.StorableMeasurement{
		DeviceID:  j.DeviceID,
		Timestamp: now().UTC(),
	}

	count := 0
	for _, name := range j.Sensors {
		s, err := sensor.Get(name)
		if err != nil {
			log.Printf("Error getting sensor %q: %v", name, err)
			continue
		}
		if err := s.Sense(&m); err != nil {
			log.Printf("Failed to take measurement from %q: %v", name, err)
			if j.Metrics != nil {
				j.Metrics.senseFailures.WithLabelValues(name).Inc()
			}
			continue
		}
		count++
	}

	if count <= 0 {
		log.Print("Took no measurements, will not publish")
		return
	}

	if j.Metrics != nil {
		j.Metrics.observe(&m)
	}
	if j.Latest != nil {
		j.Latest.Set(measurement.CacheKeyLatest(m.DeviceID), m, latestTTL)
	}
	if j.History != nil {
		j.History.add(m)
	}

	if j.Dryrun {
		log.Print(m)
	} else if err := j.publish(&m); err != nil {
		log.Printf("Failed to publish measurement: %v", err)
	}

	if j.Metrics != nil && j.PendingDir != "" {
		if paths, err := pending.List(j.PendingDir); err == nil {
			j.Metrics.pending.Set(float64(len(paths)))
		}
	}
}

func (j SenseJob) publish(m *measurement.StorableMeasurement) error {
	var wg sync.WaitGroup

	errs := make(chan error, len(j.Publishers))

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	for _, p := range j.Publishers {
		wg.Add(1)
		go func(p Publisher) {
			defer wg.Done()

			// Each publisher gets its own copy.
			mc := *m
			if err := p.Publish(ctx, &mc); err != nil {
				if j.Metrics != nil {
					j.Metrics.publishFailures.WithLabelValues(p.Name()).Inc()
				}
				errs <- fmt.Errorf("[%s] %v", p.Name(), err)
				return
			}
			log.Printf("[%s] successful publish\n", p.Name())
		}(p)
	}

	wg.Wait()
	close(errs)

	errSlice := []error{}
	for e := range errs {
		errSlice = append(errSlice, e)
	}

	return errors.Join(errSlice...)
}

type ShutdownJob struct {
	Sensors []string
}

func (j ShutdownJob) Run() {
	for _, name := range j.Sensors {
		s, err := sensor.Get(name)
		if err != nil {
			log.Printf("Error getting sensor %q: %v", name, err)
			continue
		}
		if err := s.Shutdown(); err != nil {
			log.Printf("Failed to shut down %q: %v", name, err)
			continue
		}
	}
}

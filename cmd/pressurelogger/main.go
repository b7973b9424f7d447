// Program pressurelogger reads barometric pressure from an LPS22HB or LPS25HB
// on a schedule and publishes it over MQTT and, optionally, to InfluxDB.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/mtraver/lps2x/cache"
	"github.com/mtraver/lps2x/lps2x"
	"github.com/mtraver/lps2x/measurement"
	"github.com/mtraver/lps2x/sensor"
	"github.com/mtraver/lps2x/sensor/dummy"
	sensorlps2x "github.com/mtraver/lps2x/sensor/lps2x"
	"github.com/mtraver/lps2x/sensor/mcp9808"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Flags.
var (
	deviceID  string
	cronSpec  string
	port      int
	dryrun    bool
	useDummy  bool
	modelName string

	// Bus selection.
	i2cBus   string
	addrHigh bool
	spiPort  string
	csPin    string

	// Sampling.
	samples   int
	reference bool
	withMCP   bool

	// MQTT.
	broker   string
	topic    string
	username string
	password string
	caCerts  string

	// InfluxDB.
	influxURL    string
	influxToken  string
	influxOrg    string
	influxBucket string
)

var (
	// This directory is where we'll store anything the program needs to persist, like
	// measurements that are pending upload. This is joined with the user's home directory in init.
	dotDir = ".pressurelogger"

	// Backing store for the MQTT client's in-flight messages.
	mqttStoreDir = path.Join(dotDir, "mqtt_store")

	// Measurements that failed to publish, e.g. because the network went down.
	pendingDir = path.Join(dotDir, "pending")
)

const (
	sensorName = "lps2x"

	// Span of the summary stats on the index page.
	historyWindow = 24 * time.Hour
)

func init() {
	flag.StringVar(&deviceID, "device", "", "ID of this device, included in every measurement")
	flag.StringVar(&cronSpec, "cronspec", "", "cron spec that specifies when to take and publish measurements")
	flag.IntVar(&port, "port", 8080, "port on which the device's web server should listen")
	flag.BoolVar(&dryrun, "dryrun", false, "set to true to print rather than publish measurements")
	flag.BoolVar(&useDummy, "dummy", false, "use a fake sensor instead of hardware")
	flag.StringVar(&modelName, "model", "", "sensor model, LPS22HB or LPS25HB; detected from WHO_AM_I if empty")

	flag.StringVar(&i2cBus, "bus", "", "I²C bus name; empty for the default bus")
	flag.BoolVar(&addrHigh, "addrhigh", false, "set if the sensor's SA0 pin is tied high")
	flag.StringVar(&spiPort, "spi", "", "SPI port name; if set the sensor is read over SPI instead of I²C")
	flag.StringVar(&csPin, "cs", "", "GPIO pin driving the sensor's chip select (SPI only)")

	flag.IntVar(&samples, "samples", sensorlps2x.DefaultOpts.Samples, "conversions averaged per measurement")
	flag.BoolVar(&reference, "reference", false, "also report the autozero reference pressure")
	flag.BoolVar(&withMCP, "mcp9808", false, "read temperature from an MCP9808 on the same I²C bus")

	flag.StringVar(&broker, "broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	flag.StringVar(&topic, "topic", "", "MQTT topic; defaults to devices/<device>/events")
	flag.StringVar(&username, "username", "", "MQTT username")
	flag.StringVar(&password, "password", "", "MQTT password")
	flag.StringVar(&caCerts, "cacerts", "", "path to a set of trustworthy CA certs for a TLS broker")

	flag.StringVar(&influxURL, "influxurl", "", "InfluxDB server URL; if empty measurements are not written to InfluxDB")
	flag.StringVar(&influxToken, "influxtoken", "", "InfluxDB auth token")
	flag.StringVar(&influxOrg, "influxorg", "", "InfluxDB organization")
	flag.StringVar(&influxBucket, "influxbucket", "", "InfluxDB bucket")

	// Update directory and file paths by joining them to the user's home directory.
	home, err := homedir.Dir()
	if err != nil {
		log.Fatalf("Failed to get home dir: %v", err)
	}
	dotDir = path.Join(home, dotDir)
	mqttStoreDir = path.Join(home, mqttStoreDir)
	pendingDir = path.Join(home, pendingDir)

	// Make all directories required by the program.
	dirs := []string{dotDir, mqttStoreDir, pendingDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			log.Fatalf("Failed to make dir %s: %v", dir, err)
		}
	}
}

func parseFlags() error {
	flag.Parse()

	if deviceID == "" {
		return fmt.Errorf("device flag must be given")
	}
	m := measurement.StorableMeasurement{DeviceID: deviceID, Timestamp: time.Now()}
	if err := m.Validate(); err != nil {
		return err
	}

	if cronSpec == "" {
		return fmt.Errorf("cronspec flag must be given")
	}

	if !dryrun && broker == "" {
		return fmt.Errorf("broker flag must be given unless dryrun is set")
	}

	if spiPort != "" && csPin == "" {
		return fmt.Errorf("cs flag must be given with spi")
	}

	if samples < 1 {
		return fmt.Errorf("samples must be at least 1")
	}

	if influxURL != "" && (influxOrg == "" || influxBucket == "") {
		return fmt.Errorf("influxorg and influxbucket flags must be given with influxurl")
	}

	if topic == "" {
		topic = fmt.Sprintf("devices/%s/events", deviceID)
	}

	return nil
}

// openInterface opens the bus selected by the flags. The returned closer
// releases the bus.
func openInterface() (lps2x.Interface, func() error, error) {
	if spiPort != "" {
		p, err := spireg.Open(spiPort)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SPI port: %w", err)
		}
		c, err := lps2x.OpenSPI(p)
		if err != nil {
			p.Close()
			return nil, nil, err
		}
		cs := gpioreg.ByName(csPin)
		if cs == nil {
			p.Close()
			return nil, nil, fmt.Errorf("no GPIO pin named %q", csPin)
		}

		m, err := resolveModel(func(m lps2x.Model) (lps2x.Interface, error) { return lps2x.NewSPI(c, cs, m) })
		if err != nil {
			p.Close()
			return nil, nil, err
		}
		i, err := lps2x.NewSPI(c, cs, m)
		if err != nil {
			p.Close()
			return nil, nil, err
		}
		return i, p.Close, nil
	}

	bus, err := i2creg.Open(i2cBus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open I²C bus: %w", err)
	}
	i, err := newI2C(bus)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return i, bus.Close, nil
}

func newI2C(bus i2c.Bus) (*lps2x.I2C, error) {
	addr := lps2x.AddrSA0Low
	if addrHigh {
		addr = lps2x.AddrSA0High
	}
	m, err := resolveModel(func(m lps2x.Model) (lps2x.Interface, error) { return lps2x.NewI2C(bus, addr, m) })
	if err != nil {
		return nil, err
	}
	return lps2x.NewI2C(bus, addr, m)
}

// resolveModel returns the model named by the model flag, or detects it by
// probing with each model's framing.
func resolveModel(open func(lps2x.Model) (lps2x.Interface, error)) (lps2x.Model, error) {
	if modelName != "" {
		return lps2x.ParseModel(modelName)
	}

	var errs []error
	for _, m := range []lps2x.Model{lps2x.LPS22HB, lps2x.LPS25HB} {
		i, err := open(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got, _, err := lps2x.Detect(i)
		if err == nil && got == m {
			return m, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return 0, fmt.Errorf("no LPS22HB or LPS25HB found: %w", errors.Join(errs...))
}

func main() {
	if err := parseFlags(); err != nil {
		fmt.Printf("argument error: %v\n", err)
		os.Exit(2)
	}

	// Initialize periph.
	if _, err := host.Init(); err != nil {
		log.Fatalf("Failed to initialize periph: %v", err)
	}

	model := "dummy"
	sensors := []string{sensorName}
	if useDummy {
		sensor.Register(sensorName, dummy.Dummy{})
	} else {
		i, closeBus, err := openInterface()
		if err != nil {
			log.Fatalf("Failed to open sensor: %v", err)
		}
		defer closeBus()

		opts := sensorlps2x.DefaultOpts
		opts.Samples = samples
		opts.Reference = reference
		s, err := sensorlps2x.New(i, &opts)
		if err != nil {
			log.Fatalf("Failed to initialize %s: %v", i.Model(), err)
		}
		sensor.Register(sensorName, s)
		model = s.Dev().String()

		if withMCP {
			if spiPort != "" {
				log.Fatal("mcp9808 flag requires the sensor to be on I²C")
			}
			bus := i.(*lps2x.I2C).Bus()
			t, err := mcp9808.New(bus)
			if err != nil {
				log.Fatalf("Failed to initialize MCP9808: %v", err)
			}
			sensor.Register("mcp9808", t)
			sensors = append(sensors, "mcp9808")
		}
	}

	met := newMetrics()
	met.register(prometheus.DefaultRegisterer)

	latest := cache.New[measurement.StorableMeasurement]()
	hist := newHistory(historyWindow)

	var publishers []Publisher
	if !dryrun {
		client, err := NewMQTT(mqttConfig{
			Broker:     broker,
			ClientID:   deviceID,
			Username:   username,
			Password:   password,
			CACerts:    caCerts,
			Topic:      topic,
			StoreDir:   mqttStoreDir,
			PendingDir: pendingDir,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		publishers = append(publishers, client)

		if influxURL != "" {
			db := NewInfluxDB(influxURL, influxToken, influxOrg, influxBucket)
			defer db.Close()
			publishers = append(publishers, db)
		}
	}

	SetupJob{Sensors: sensors}.Run()

	// Schedule the measurement publication routine.
	cr := newScheduler()
	log.Printf("Starting cron scheduler with spec %q", cronSpec)
	if _, err := cr.AddJob(cronSpec, SenseJob{
		DeviceID:   deviceID,
		Sensors:    sensors,
		Publishers: publishers,
		Dryrun:     dryrun,
		Latest:     latest,
		History:    hist,
		Metrics:    met,
		PendingDir: pendingDir,
	}); err != nil {
		log.Fatalf("Invalid cron spec: %v", err)
	}
	cr.Start()

	// If the program is killed, shut down the sensors and disconnect.
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Cleaning up...")

		// Let a running SenseJob finish before the sensors are powered down.
		<-cr.Stop().Done()
		ShutdownJob{Sensors: sensors}.Run()
		for _, p := range publishers {
			if cl, ok := p.(interface{ Close() }); ok {
				cl.Close()
			}
		}
		time.Sleep(500 * time.Millisecond)
		os.Exit(1)
	}()

	// Start up a web server that provides basic info about the device.
	http.Handle("/", indexHandler{
		deviceID: deviceID,
		model:    model,
		latest:   latest,
		history:  hist,
	})
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(fmt.Sprintf(":%v", port), nil); err != nil {
		log.Fatal(err)
	}
}

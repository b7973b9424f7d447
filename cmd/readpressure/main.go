// Program readpressure takes one reading from an LPS22HB or LPS25HB and prints
// it as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mtraver/lps2x/lps2x"
	"github.com/mtraver/lps2x/measurement"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Flags.
var (
	modelName string
	i2cBus    string
	addrHigh  bool
	spiPort   string
	csPin     string
)

func init() {
	flag.StringVar(&modelName, "model", "LPS22HB", "sensor model, LPS22HB or LPS25HB")
	flag.StringVar(&i2cBus, "bus", "", "I²C bus name; empty for the default bus")
	flag.BoolVar(&addrHigh, "addrhigh", false, "set if the sensor's SA0 pin is tied high")
	flag.StringVar(&spiPort, "spi", "", "SPI port name; if set the sensor is read over SPI instead of I²C")
	flag.StringVar(&csPin, "cs", "", "GPIO pin driving the sensor's chip select (SPI only)")
}

func fatal(format string, a ...interface{}) {
	fmt.Printf(format+"\n", a...)
	os.Exit(1)
}

func toJSON(e physic.Env) (string, error) {
	p := float32(float64(e.Pressure) / float64(100*physic.Pascal))
	t := float32(float64(e.Temperature-physic.ZeroCelsius) / float64(physic.Celsius))
	m := measurement.StorableMeasurement{
		DeviceID:  "none",
		Timestamp: time.Now().UTC(),
		Pressure:  &p,
		Temp:      &t,
	}

	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func open(m lps2x.Model) (lps2x.Interface, func() error, error) {
	if spiPort != "" {
		p, err := spireg.Open(spiPort)
		if err != nil {
			return nil, nil, err
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
		i, err := lps2x.NewSPI(c, cs, m)
		if err != nil {
			p.Close()
			return nil, nil, err
		}
		return i, p.Close, nil
	}

	bus, err := i2creg.Open(i2cBus)
	if err != nil {
		return nil, nil, err
	}
	addr := lps2x.AddrSA0Low
	if addrHigh {
		addr = lps2x.AddrSA0High
	}
	i, err := lps2x.NewI2C(bus, addr, m)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	return i, bus.Close, nil
}

func main() {
	flag.Parse()

	model, err := lps2x.ParseModel(modelName)
	if err != nil {
		fmt.Printf("argument error: %v\n", err)
		os.Exit(2)
	}
	if spiPort != "" && csPin == "" {
		fmt.Printf("argument error: cs flag must be given with spi\n")
		os.Exit(2)
	}

	if _, err := host.Init(); err != nil {
		fatal("Failed to initialize periph: %v", err)
	}

	i, closeBus, err := open(model)
	if err != nil {
		fatal("Error connecting to sensor: %v", err)
	}
	defer closeBus()

	got, id, err := lps2x.Detect(i)
	if err != nil {
		fatal("Failed to read WHO_AM_I: %v", err)
	}
	if got != model {
		fmt.Fprintf(os.Stderr, "WHO_AM_I is %#02x, expected %#02x for %s\n", id, model.WhoAmI(), model)
	}

	dev, err := lps2x.New(i)
	if err != nil {
		fatal("Error connecting to sensor: %v", err)
	}
	defer dev.Halt()

	if err := dev.EnableSensor(true); err != nil {
		fatal("Failed to power up sensor: %v", err)
	}

	var e physic.Env
	if err := dev.Sense(&e); err != nil {
		fatal("Failed to read pressure: %v", err)
	}

	s, err := toJSON(e)
	if err != nil {
		fatal("Failed to encode reading: %v", err)
	}
	fmt.Println(s)
}

package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/mtraver/lps2x/cmd/pressurelogger/pending"
	"github.com/mtraver/lps2x/measurement"
)

var publishTimeout = 10 * time.Second

type mqttConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	CACerts  string
	Topic    string

	// StoreDir backs the client's in-flight message store.
	StoreDir string

	// PendingDir holds measurements that could not be published. They are
	// sent on every (re)connect.
	PendingDir string
}

// MQTT publishes measurements as JSON to a single topic.
type MQTT struct {
	client     mqtt.Client
	topic      string
	pendingDir string
}

func (p *MQTT) Name() string {
	return "mqtt"
}

// Publish sends m. If the publish fails m is saved to the pending directory.
func (p *MQTT) Publish(ctx context.Context, m *measurement.StorableMeasurement) error {
	err := publishJSON(ctx, p.client, p.topic, m)
	if err == nil {
		return nil
	}

	if p.pendingDir != "" {
		if serr := pending.Save(m, p.pendingDir); serr != nil {
			log.Printf("[mqtt] Failed to save measurement for later: %v", serr)
		}
	}
	return err
}

func (p *MQTT) Close() {
	p.client.Disconnect(250)
}

func publishJSON(ctx context.Context, client mqtt.Client, topic string, m *measurement.StorableMeasurement) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}

	waitDur := publishTimeout
	if d, ok := ctx.Deadline(); ok {
		waitDur = time.Until(d)
	}

	token := client.Publish(topic, 1, false, b)
	if ok := token.WaitTimeout(waitDur); !ok {
		// Timed out.
		return fmt.Errorf("publish timed out after %v", waitDur)
	} else if token.Error() != nil {
		// Finished before timeout but failed to publish.
		return fmt.Errorf("failed to publish: %v", token.Error())
	}

	return nil
}

func tlsConfig(caCertsPath string) (*tls.Config, error) {
	b, err := os.ReadFile(caCertsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certs file: %v", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(b) {
		return nil, fmt.Errorf("no certs found in %s", caCertsPath)
	}

	return &tls.Config{RootCAs: pool}, nil
}

func newClientOptions(c mqttConfig) (*mqtt.ClientOptions, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(c.ClientID).
		SetAutoReconnect(true).
		SetStore(mqtt.NewFileStore(c.StoreDir))

	if c.Username != "" {
		opts.SetUsername(c.Username)
		opts.SetPassword(c.Password)
	}

	if c.CACerts != "" {
		tc, err := tlsConfig(c.CACerts)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tc)
	}

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("[mqtt] Connected to MQTT broker")

		if c.PendingDir == "" {
			return
		}
		if err := pending.PublishAll(client, c.Topic, c.PendingDir); err != nil {
			log.Printf("[mqtt] Failed to publish pending measurements: %v", err)
		}
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("[mqtt] Connection to MQTT broker lost: %v", err)
	})

	return opts, nil
}

func NewMQTT(c mqttConfig) (*MQTT, error) {
	opts, err := newClientOptions(c)
	if err != nil {
		return nil, err
	}

	client := mqtt.NewClient(opts)

	// Connect to the MQTT server.
	waitDur := 10 * time.Second
	if token := client.Connect(); !token.WaitTimeout(waitDur) {
		return nil, fmt.Errorf("MQTT connection attempt timed out after %v", waitDur)
	} else if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}

	return &MQTT{
		client:     client,
		topic:      c.Topic,
		pendingDir: c.PendingDir,
	}, nil
}

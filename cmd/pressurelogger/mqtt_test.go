package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/go-cmp/cmp"
	"github.com/mtraver/lps2x/cmd/pressurelogger/pending"
	"github.com/mtraver/lps2x/measurement"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
func (t *fakeToken) Error() error { return t.err }

// fakeClient records publishes. Methods other than Publish are not used.
type fakeClient struct {
	mqtt.Client
	topic   string
	payload []byte
	err     error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if c.err != nil {
		return &fakeToken{err: c.err}
	}
	c.topic = topic
	c.payload = payload.([]byte)
	return &fakeToken{}
}

func TestMQTTPublish(t *testing.T) {
	client := &fakeClient{}
	p := &MQTT{client: client, topic: "devices/foo/events", pendingDir: t.TempDir()}

	m := testMeasurement
	if err := p.Publish(context.Background(), &m); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if client.topic != "devices/foo/events" {
		t.Errorf("topic = %q, want %q", client.topic, "devices/foo/events")
	}

	var got measurement.StorableMeasurement
	if err := json.Unmarshal(client.payload, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(got, testMeasurement); diff != "" {
		t.Errorf("Unexpected payload (-got +want):\n%s", diff)
	}

	if paths, _ := pending.List(p.pendingDir); len(paths) != 0 {
		t.Errorf("successful publish saved to pending: %v", paths)
	}
}

func TestMQTTPublishSavesPending(t *testing.T) {
	p := &MQTT{
		client:     &fakeClient{err: errors.New("not connected")},
		topic:      "devices/foo/events",
		pendingDir: t.TempDir(),
	}

	m := testMeasurement
	if err := p.Publish(context.Background(), &m); err == nil {
		t.Fatalf("Publish: got nil error, want error")
	}

	paths, err := pending.List(p.pendingDir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 1 {
		t.Errorf("List returned %d paths, want 1", len(paths))
	}
}

// Package pending keeps measurements that failed to publish on disk until
// they can be sent.
package pending

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/mtraver/lps2x/measurement"
)

const fileExt = ".json"

var waitDur = 10 * time.Second

// Save converts the given Measurement to JSON and saves it to disk.
func Save(m *measurement.StorableMeasurement, dir string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%x%s", sha256.Sum256(b), fileExt)
	return os.WriteFile(path.Join(dir, filename), b, 0644)
}

// List returns the paths of the saved measurements, oldest name first.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), fileExt) {
			paths = append(paths, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// PublishAll reads any Measurements saved to disk and attempts to publish
// them using the given MQTT client. Each one is removed once published. It
// returns the first error encountered, or nil if all publishes succeed.
func PublishAll(client mqtt.Client, topic string, dir string) error {
	paths, err := List(dir)
	if err != nil {
		return err
	}

	for _, p := range paths {
		if err := publish(client, topic, p); err != nil {
			return err
		}
		if err := os.Remove(p); err != nil {
			return err
		}
	}

	return nil
}

func publish(client mqtt.Client, topic string, filepath string) error {
	b, err := os.ReadFile(filepath)
	if err != nil {
		return err
	}

	var m measurement.StorableMeasurement
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("pending: %s: %v", filepath, err)
	}

	// Set the upload timestamp, since this is a delayed upload.
	m.UploadTimestamp = time.Now().UTC()

	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}

	token := client.Publish(topic, 1, false, payload)
	if ok := token.WaitTimeout(waitDur); !ok {
		return fmt.Errorf("pending: publish timed out after %v", waitDur)
	} else if token.Error() != nil {
		return fmt.Errorf("pending: publish failed: %v", token.Error())
	}

	return nil
}

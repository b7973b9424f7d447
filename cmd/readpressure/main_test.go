package main

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/physic"
)

func TestToJSON(t *testing.T) {
	e := physic.Env{
		Pressure:    101325 * physic.Pascal,
		Temperature: 18*physic.Celsius + physic.ZeroCelsius,
	}
	want := map[string]any{
		"device_id": "none",
		"pressure":  1013.25,
		"temp":      18.0,
	}

	gotStr, err := toJSON(e)
	if err != nil {
		t.Errorf("Got error, expected nil: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(gotStr), &got); err != nil {
		t.Errorf("Got error, expected nil: %v", err)
	}

	ignore := cmpopts.IgnoreMapEntries(func(k string, v any) bool { return k == "timestamp" || k == "upload_timestamp" })
	if diff := cmp.Diff(got, want, ignore); diff != "" {
		t.Errorf("Unexpected result (-got +want):\n%s", diff)
	}
}

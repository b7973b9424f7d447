package cache

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache() (*Cache[float32], *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
	c := New[float32]()
	c.now = clk.now
	return c, clk
}

func TestGet(t *testing.T) {
	c, clk := newTestCache()
	c.Set("foo", 1013.25, time.Minute)

	got, ok := c.Get("foo")
	if !ok || got != 1013.25 {
		t.Errorf("Get before expiry = (%v, %v), want (1013.25, true)", got, ok)
	}

	clk.t = clk.t.Add(time.Minute)
	got, ok = c.Get("foo")
	if ok || got != 0 {
		t.Errorf("Get after expiry = (%v, %v), want (0, false)", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Errorf("Get of missing key reported a value")
	}
}

func TestKeys(t *testing.T) {
	c, clk := newTestCache()
	c.Set("b", 1, time.Hour)
	c.Set("a", 2, time.Hour)
	c.Set("old", 3, time.Second)

	clk.t = clk.t.Add(time.Minute)
	if diff := cmp.Diff(c.Keys(), []string{"a", "b"}); diff != "" {
		t.Errorf("Unexpected keys (-got +want):\n%s", diff)
	}
	if len(c.entries) != 2 {
		t.Errorf("expired entry not removed: %d entries", len(c.entries))
	}
}

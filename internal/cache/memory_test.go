package cache

import (
	"strings"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(val) != "v" {
		t.Errorf("expected v, got %s", val)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 20*time.Millisecond)

	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected entry to expire")
	}
}

func TestMemoryCache_DeleteClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	_ = c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be deleted")
	}

	_ = c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("expected cache to be cleared")
	}
}

func TestKey(t *testing.T) {
	k1 := Key("analysis", "a", "bc")
	k2 := Key("analysis", "ab", "c")
	if k1 == k2 {
		t.Error("expected part boundaries to change the key")
	}
	if !strings.HasPrefix(k1, "reliefdesk:v1:analysis:") {
		t.Errorf("unexpected key prefix: %s", k1)
	}
	if Key("analysis", "a", "bc") != k1 {
		t.Error("expected key to be deterministic")
	}
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	buf := []byte("abc")
	_ = c.Set("k", buf, 0)
	buf[0] = 'x'

	got, _ := c.Get("k")
	if string(got) != "abc" {
		t.Fatalf("stored value changed with caller buffer: %s", got)
	}
	got[1] = 'y'
	again, _ := c.Get("k")
	if string(again) != "abc" {
		t.Errorf("stored value changed through returned slice: %s", again)
	}
}

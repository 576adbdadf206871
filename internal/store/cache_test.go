package store

import (
	"sync"
	"testing"
)

func TestCacheFirstWriterWins(t *testing.T) {
	c := NewCache()

	if !c.populateIfEmpty("profile", []profile{{Key: 1}}) {
		t.Fatal("first populate rejected")
	}
	// A later decode must not clobber the warmed entry.
	if c.populateIfEmpty("profile", []profile{{Key: 2}}) {
		t.Error("second populate accepted, want first-writer-wins")
	}
	v, ok := c.get("profile")
	if !ok {
		t.Fatal("entry missing")
	}
	rows := v.([]profile)
	if len(rows) != 1 || rows[0].Key != 1 {
		t.Errorf("entry = %+v, want first writer's value", rows)
	}
}

func TestCacheSetOverrides(t *testing.T) {
	c := NewCache()
	c.populateIfEmpty("profile", []profile{{Key: 1}})
	c.set("profile", []profile{{Key: 1}, {Key: 2}})
	v, _ := c.get("profile")
	if rows := v.([]profile); len(rows) != 2 {
		t.Errorf("entry = %+v, want post-mutation value", rows)
	}
}

func TestCacheNamesIndependent(t *testing.T) {
	c := NewCache()
	c.populateIfEmpty("profile", []profile{{Key: 1}})
	if _, ok := c.get("entry"); ok {
		t.Error("unrelated name resolved")
	}
}

func TestCacheConcurrentPopulate(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup
	wins := make([]bool, 16)
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins[i] = c.populateIfEmpty("profile", []profile{{Key: i}})
		}()
	}
	wg.Wait()

	n := 0
	for _, w := range wins {
		if w {
			n++
		}
	}
	if n != 1 {
		t.Errorf("winners = %d, want exactly 1", n)
	}
}

func TestCacheLockSerializes(t *testing.T) {
	c := NewCache()
	counter := 0
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := c.lock("profile")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}

package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sub", "history.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAddAndList(t *testing.T) {
	db := openTemp(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	runs := []Record{
		{Program: "counter", Started: start, Duration: 3 * time.Millisecond, Output: "2\n", Vars: map[string]string{"c": "Counter{}"}},
		{Program: "shapes", Started: start.Add(time.Minute), Error: "TypeMismatch: bad"},
		{Program: "counter", Started: start.Add(2 * time.Minute)},
	}
	for i, r := range runs {
		id, err := db.Add(r)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if id != uint64(i+1) {
			t.Fatalf("tests[%d] - expected id %d, got %d", i, i+1, id)
		}
	}

	all, err := db.List("", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 || all[0].ID != 3 || all[2].ID != 1 {
		t.Fatalf("expected newest first, got %+v", all)
	}

	counter, err := db.List("counter", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counter) != 1 || counter[0].ID != 3 {
		t.Fatalf("expected latest counter run, got %+v", counter)
	}

	first, ok, err := db.Get(1)
	if err != nil || !ok {
		t.Fatalf("expected record 1, got ok=%v err=%v", ok, err)
	}
	if first.Output != "2\n" || first.Duration != 3*time.Millisecond || !first.Started.Equal(start) {
		t.Fatalf("record changed in storage: %+v", first)
	}
	if first.Vars["c"] != "Counter{}" || !first.OK() {
		t.Fatalf("unexpected vars or status: %+v", first)
	}
	if second, _, _ := db.Get(2); second.OK() {
		t.Fatalf("record 2 should be a failure")
	}
}

func TestGetMissing(t *testing.T) {
	db := openTemp(t)
	if _, ok, err := db.Get(42); ok || err != nil {
		t.Fatalf("expected not found, got ok=%v err=%v", ok, err)
	}
}

func TestClearKeepsSequence(t *testing.T) {
	db := openTemp(t)
	if _, err := db.Add(Record{Program: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, err := db.List("", 0)
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty history, got %d (%v)", len(all), err)
	}
	id, err := db.Add(Record{Program: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if id != 2 {
		t.Fatalf("expected id 2 after clear, got %d", id)
	}
}

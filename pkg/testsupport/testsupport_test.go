package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFixtureJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, []byte(`{"name":"test","items":["a","b"]}`), 0o644); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}

	var got struct {
		Name  string   `json:"name"`
		Items []string `json:"items"`
	}
	LoadFixtureJSON(t, path, &got)

	if got.Name != "test" || len(got.Items) != 2 {
		t.Errorf("unexpected fixture contents: %+v", got)
	}
}

func TestCompareWithGoldenJSON_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "out.json")

	CompareWithGoldenJSON(t, path, map[string]int{"a": 1})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected golden file to be written: %v", err)
	}
	if string(data) != "{\n  \"a\": 1\n}\n" {
		t.Errorf("unexpected golden contents: %q", data)
	}

	// second run compares against the file just written
	CompareWithGoldenJSON(t, path, map[string]int{"a": 1})
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start)

	if !clock.Now().Equal(start) {
		t.Fatalf("expected %v, got %v", start, clock.Now())
	}

	clock.Advance(time.Minute)
	if want := start.Add(time.Minute); !clock.Now().Equal(want) {
		t.Errorf("expected %v, got %v", want, clock.Now())
	}
}

func TestSequentialIDs(t *testing.T) {
	ids := NewSequentialIDs("user")

	for _, want := range []string{"user-1", "user-2", "user-3"} {
		if got := ids.NewID(); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}

// Package testutil provides shared test infrastructure for the simulator:
// mission fixtures under testdata/ and a tolerance assertion for vectors.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// MissionPath returns the path of a mission fixture in the repo-level
// testdata/missions directory. The path is resolved relative to this source
// file: sim/internal/testutil/ → testdata/.
func MissionPath(t *testing.T, name string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "missions", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("mission fixture %s: %v", name, err)
	}
	return path
}

// WriteYAML writes body to a file in a per-test temp dir and returns its path.
func WriteYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mission.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// AssertVecNear fails when got is further than tol from want.
func AssertVecNear(t *testing.T, name string, want, got r3.Vec, tol float64) {
	t.Helper()
	if d := r3.Norm(r3.Sub(want, got)); d > tol || math.IsNaN(d) {
		t.Errorf("%s: got %v, want %v (distance %v > %v)", name, got, want, d, tol)
	}
}

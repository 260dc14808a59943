package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/source"
)

func newTestGrid() *grid.Grid {
	g := grid.New()
	g.Title = "test"
	g.Nx, g.Ny, g.Nz = 8, 8, 8
	g.Dx, g.Dy, g.Dz = 1e-3, 1e-3, 1e-3
	g.Dt = 1e-12
	g.Iterations = 4
	g.InitialiseFieldArrays()
	g.Rxs = append(g.Rxs, &source.Rx{ID: "rx1", X: 4, Y: 4, Z: 4})
	return g
}

func TestRunFileName(t *testing.T) {
	if got := RunFileName("/tmp/model.in", 1, 1, ".out"); got != "/tmp/model.out" {
		t.Errorf("single run name = %q", got)
	}
	if got := RunFileName("/tmp/model.in", 3, 5, ".out"); got != "/tmp/model3.out" {
		t.Errorf("multi run name = %q", got)
	}
}

func TestTraceRoundTrip(t *testing.T) {
	g := newTestGrid()
	path := filepath.Join(t.TempDir(), "model.out")

	f := Create(path, g)
	for i := 0; i < g.Iterations; i++ {
		g.Ez.Set(4, 4, 4, float64(i))
		f.WriteIteration(g)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close error: %s", err)
	}

	trace, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %s", err)
	}

	if trace.Header.Title != "test" || trace.Header.Iterations != 4 {
		t.Errorf("header = %+v", trace.Header)
	}
	if len(trace.Header.Rxs) != 1 || trace.Header.Rxs[0].ID != "rx1" {
		t.Fatalf("receivers = %+v", trace.Header.Rxs)
	}

	values, err := trace.RxTrace("rx1", "Ez")
	if err != nil {
		t.Fatalf("RxTrace error: %s", err)
	}
	if len(values) != 4 {
		t.Fatalf("got %d samples, want 4", len(values))
	}
	for i, v := range values {
		if v != float64(i) {
			t.Errorf("sample %d = %g, want %d", i, v, i)
		}
	}

	if _, err := trace.RxTrace("rx1", "Bogus"); err == nil {
		t.Error("expected error for unknown component")
	}
	if _, err := trace.RxTrace("rx9", "Ez"); err == nil {
		t.Error("expected error for unknown receiver")
	}
}

func TestReadRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-trace")
	if err := os.WriteFile(path, []byte("PNG\x89 something else entirely"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Read(path); err == nil {
		t.Error("expected error for foreign file")
	}
}

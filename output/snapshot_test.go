package output

import (
	"path/filepath"
	"testing"

	"github.com/emwave/emwave/grid"
)

func TestSnapshotRoundTrip(t *testing.T) {
	for _, codec := range []string{CodecNone, CodecGzip, CodecZstd, CodecBrotli} {
		t.Run(codec, func(t *testing.T) {
			g := newTestGrid()
			g.Ez.Set(2, 3, 4, 7.5)

			snap := &grid.Snapshot{
				XS: 0, YS: 0, ZS: 0,
				XF: 7, YF: 7, ZF: 7,
				DX: 1, DY: 1, DZ: 1,
				Time:     2,
				FileName: "snap",
			}
			path := filepath.Join(t.TempDir(), "model.snap")

			if err := WriteSnapshot(g, snap, path, codec); err != nil {
				t.Fatalf("WriteSnapshot error: %s", err)
			}

			vol, err := ReadSnapshot(path)
			if err != nil {
				t.Fatalf("ReadSnapshot error: %s", err)
			}

			if vol.NX != 8 || vol.NY != 8 || vol.NZ != 8 {
				t.Fatalf("sampled extent = %dx%dx%d", vol.NX, vol.NY, vol.NZ)
			}
			if vol.Header.Codec != codec {
				t.Errorf("codec = %q, want %q", vol.Header.Codec, codec)
			}

			// Ez is component 2; samples are x-major.
			ez := vol.Data[2]
			if got := ez[(2*8+3)*8+4]; got != 7.5 {
				t.Errorf("Ez sample = %g, want 7.5", got)
			}
			if got := ez[0]; got != 0 {
				t.Errorf("origin sample = %g, want 0", got)
			}
		})
	}
}

func TestSnapshotStride(t *testing.T) {
	g := newTestGrid()
	snap := &grid.Snapshot{
		XS: 0, YS: 0, ZS: 0,
		XF: 7, YF: 7, ZF: 7,
		DX: 2, DY: 2, DZ: 2,
		Time:     1,
		FileName: "snap",
	}
	path := filepath.Join(t.TempDir(), "model.snap")

	if err := WriteSnapshot(g, snap, path, CodecNone); err != nil {
		t.Fatalf("WriteSnapshot error: %s", err)
	}
	vol, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot error: %s", err)
	}

	if vol.NX != 4 || vol.NY != 4 || vol.NZ != 4 {
		t.Errorf("sampled extent = %dx%dx%d, want 4x4x4", vol.NX, vol.NY, vol.NZ)
	}
}

func TestIsKnownCodec(t *testing.T) {
	for _, codec := range []string{CodecNone, CodecGzip, CodecZstd, CodecBrotli} {
		if !IsKnownCodec(codec) {
			t.Errorf("codec %q should be known", codec)
		}
	}
	if IsKnownCodec("lz4") {
		t.Error("lz4 should not be known")
	}
}

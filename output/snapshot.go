package output

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andybalholm/brotli"
	"github.com/emwave/emwave/grid"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const snapshotMagic = "EMWS"

// Snapshot volume codecs.
const (
	CodecNone   = "none"
	CodecGzip   = "gzip"
	CodecZstd   = "zstd"
	CodecBrotli = "brotli"
)

// IsKnownCodec reports whether name selects a supported snapshot codec.
func IsKnownCodec(name string) bool {
	switch name {
	case CodecNone, CodecGzip, CodecZstd, CodecBrotli:
		return true
	}
	return false
}

// SnapshotHeader is the JSON metadata block of a snapshot file.
type SnapshotHeader struct {
	Title      string  `json:"title"`
	Time       int     `json:"time"`
	Dt         float64 `json:"dt"`
	XS, YS, ZS int
	XF, YF, ZF int
	DX, DY, DZ int
	Codec      string   `json:"codec"`
	Components []string `json:"components"`
}

// WriteSnapshot dumps the six field components over the requested volume,
// sampled at the snapshot's cell strides, compressed with the given codec.
func WriteSnapshot(g *grid.Grid, s *grid.Snapshot, path, codec string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file %s: %s", path, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)

	header := SnapshotHeader{
		Title: g.Title,
		Time:  s.Time,
		Dt:    g.Dt,
		XS:    s.XS, YS: s.YS, ZS: s.ZS,
		XF: s.XF, YF: s.YF, ZF: s.ZF,
		DX: s.DX, DY: s.DY, DZ: s.DZ,
		Codec:      codec,
		Components: Components[:6],
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot header: %s", err)
	}

	if _, err := w.WriteString(snapshotMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(headerBytes))); err != nil {
		return err
	}
	if _, err := w.Write(headerBytes); err != nil {
		return err
	}

	body, closeBody, err := compressingWriter(w, codec)
	if err != nil {
		return err
	}

	fields := []*grid.Array3{g.Ex, g.Ey, g.Ez, g.Hx, g.Hy, g.Hz}
	for _, field := range fields {
		for i := s.XS; i <= s.XF; i += s.DX {
			for j := s.YS; j <= s.YF; j += s.DY {
				for k := s.ZS; k <= s.ZF; k += s.DZ {
					v := field.At(clamp(i, field.NX-1), clamp(j, field.NY-1), clamp(k, field.NZ-1))
					if err := binary.Write(body, binary.LittleEndian, v); err != nil {
						return fmt.Errorf("failed to write snapshot block: %s", err)
					}
				}
			}
		}
	}

	if err := closeBody(); err != nil {
		return fmt.Errorf("failed to finish snapshot compression: %s", err)
	}
	return w.Flush()
}

// compressingWriter wraps w with the requested codec. The returned close
// function flushes the codec but leaves w open.
func compressingWriter(w io.Writer, codec string) (io.Writer, func() error, error) {
	switch codec {
	case "", CodecNone:
		return w, func() error { return nil }, nil
	case CodecGzip:
		zw := gzip.NewWriter(w)
		return zw, zw.Close, nil
	case CodecZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %s", err)
		}
		return zw, zw.Close, nil
	case CodecBrotli:
		bw := brotli.NewWriter(w)
		return bw, bw.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown snapshot codec %q", codec)
}

// decompressingReader wraps r according to the codec recorded in a snapshot
// header.
func decompressingReader(r io.Reader, codec string) (io.Reader, error) {
	switch codec {
	case "", CodecNone:
		return r, nil
	case CodecGzip:
		return gzip.NewReader(r)
	case CodecZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case CodecBrotli:
		return brotli.NewReader(r), nil
	}
	return nil, fmt.Errorf("unknown snapshot codec %q", codec)
}

// SnapshotVolume is a fully loaded snapshot file.
type SnapshotVolume struct {
	Header SnapshotHeader
	// Data[component][sample], components in header order, samples in
	// x-major order over the sampled volume.
	Data [][]float64
	// Sampled extent per axis.
	NX, NY, NZ int
}

// ReadSnapshot loads a snapshot file written by WriteSnapshot.
func ReadSnapshot(path string) (*SnapshotVolume, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file %s: %s", path, err)
	}
	defer in.Close()

	r := bufio.NewReader(in)

	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read snapshot magic: %s", err)
	}
	if string(magic) != snapshotMagic {
		return nil, fmt.Errorf("%s is not an emwave snapshot file", path)
	}

	var headerLen uint32
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header length: %s", err)
	}
	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read snapshot header: %s", err)
	}

	vol := &SnapshotVolume{}
	if err := json.Unmarshal(headerBytes, &vol.Header); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot header: %s", err)
	}

	h := vol.Header
	vol.NX = sampleCount(h.XS, h.XF, h.DX)
	vol.NY = sampleCount(h.YS, h.YF, h.DY)
	vol.NZ = sampleCount(h.ZS, h.ZF, h.DZ)

	body, err := decompressingReader(r, h.Codec)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot body: %s", err)
	}

	n := vol.NX * vol.NY * vol.NZ
	vol.Data = make([][]float64, len(h.Components))
	for c := range vol.Data {
		block := make([]float64, n)
		if err := binary.Read(body, binary.LittleEndian, block); err != nil {
			return nil, fmt.Errorf("failed to read snapshot block: %s", err)
		}
		vol.Data[c] = block
	}

	return vol, nil
}

func sampleCount(start, end, step int) int {
	if step <= 0 {
		step = 1
	}
	return (end-start)/step + 1
}

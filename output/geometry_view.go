package output

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/emwave/emwave/grid"
	"github.com/klauspost/compress/gzip"
)

const geometryMagic = "EMWG"

// GeometryHeader is the JSON metadata block of a geometry view file.
type GeometryHeader struct {
	Title      string `json:"title"`
	XS, YS, ZS int
	XF, YF, ZF int
	DX, DY, DZ int
	Materials  []string `json:"materials"`
}

// WriteGeometryView dumps the per-cell material IDs over the requested
// volume. The body is always gzip compressed, geometry volumes are uniform
// and compress extremely well.
func WriteGeometryView(g *grid.Grid, v *grid.GeometryView, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create geometry file %s: %s", path, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)

	header := GeometryHeader{
		Title: g.Title,
		XS:    v.XS, YS: v.YS, ZS: v.ZS,
		XF: v.XF, YF: v.YF, ZF: v.ZF,
		DX: v.DX, DY: v.DY, DZ: v.DZ,
	}
	for _, m := range g.Materials {
		header.Materials = append(header.Materials, m.ID)
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to encode geometry header: %s", err)
	}

	if _, err := w.WriteString(geometryMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(headerBytes))); err != nil {
		return err
	}
	if _, err := w.Write(headerBytes); err != nil {
		return err
	}

	zw := gzip.NewWriter(w)
	for i := v.XS; i <= v.XF; i += v.DX {
		for j := v.YS; j <= v.YF; j += v.DY {
			for k := v.ZS; k <= v.ZF; k += v.DZ {
				if err := binary.Write(zw, binary.LittleEndian, g.Solid.At(i, j, k)); err != nil {
					return fmt.Errorf("failed to write geometry block: %s", err)
				}
			}
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish geometry compression: %s", err)
	}

	return w.Flush()
}

// GeometryVolume is a fully loaded geometry view file.
type GeometryVolume struct {
	Header     GeometryHeader
	Data       []uint32
	NX, NY, NZ int
}

// ReadGeometryView loads a geometry view file written by WriteGeometryView.
func ReadGeometryView(path string) (*GeometryVolume, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geometry file %s: %s", path, err)
	}
	defer in.Close()

	r := bufio.NewReader(in)

	magic := make([]byte, len(geometryMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read geometry magic: %s", err)
	}
	if string(magic) != geometryMagic {
		return nil, fmt.Errorf("%s is not an emwave geometry file", path)
	}

	var headerLen uint32
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("failed to read geometry header length: %s", err)
	}
	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read geometry header: %s", err)
	}

	vol := &GeometryVolume{}
	if err := json.Unmarshal(headerBytes, &vol.Header); err != nil {
		return nil, fmt.Errorf("failed to decode geometry header: %s", err)
	}

	h := vol.Header
	vol.NX = sampleCount(h.XS, h.XF, h.DX)
	vol.NY = sampleCount(h.YS, h.YF, h.DY)
	vol.NZ = sampleCount(h.ZS, h.ZF, h.DZ)

	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open geometry body: %s", err)
	}
	defer zr.Close()

	vol.Data = make([]uint32, vol.NX*vol.NY*vol.NZ)
	if err := binary.Read(zr, binary.LittleEndian, vol.Data); err != nil {
		return nil, fmt.Errorf("failed to read geometry block: %s", err)
	}

	return vol, nil
}

// Package output writes and reads the simulation artefacts: receiver trace
// files, field snapshots and geometry views.
//
// The trace container is self-describing: a four byte magic, a JSON header
// with the model parameters and receiver list, then one little-endian
// float64 block per receiver and component.
package output

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emwave/emwave/grid"
)

const traceMagic = "EMW1"

// Component names stored per receiver, in block order.
var Components = []string{"Ex", "Ey", "Ez", "Hx", "Hy", "Hz", "Ix", "Iy", "Iz"}

// RxInfo describes one receiver in the trace header.
type RxInfo struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
	Z  int    `json:"z"`
}

// Header is the JSON metadata block of a trace file.
type Header struct {
	Title      string   `json:"title"`
	Iterations int      `json:"iterations"`
	Dt         float64  `json:"dt"`
	Dx         float64  `json:"dx"`
	Dy         float64  `json:"dy"`
	Dz         float64  `json:"dz"`
	Nx         int      `json:"nx"`
	Ny         int      `json:"ny"`
	Nz         int      `json:"nz"`
	Rxs        []RxInfo `json:"rxs"`
	Components []string `json:"components"`
}

// File accumulates receiver traces during a solve and writes the container
// on Close.
type File struct {
	path   string
	header Header
	// traces[rx][component][iteration]
	traces [][][]float64
}

// RunFileName derives the output path for one model run: the input file stem
// plus the run number when there is more than one run.
func RunFileName(inputFile string, run, totalRuns int, ext string) string {
	stem := strings.TrimSuffix(inputFile, filepath.Ext(inputFile))
	if totalRuns > 1 {
		stem += strconv.Itoa(run)
	}
	return stem + ext
}

// Create prepares a trace file for the given grid.
func Create(path string, g *grid.Grid) *File {
	f := &File{
		path: path,
		header: Header{
			Title:      g.Title,
			Iterations: g.Iterations,
			Dt:         g.Dt,
			Dx:         g.Dx,
			Dy:         g.Dy,
			Dz:         g.Dz,
			Nx:         g.Nx,
			Ny:         g.Ny,
			Nz:         g.Nz,
			Components: Components,
		},
	}

	f.traces = make([][][]float64, len(g.Rxs))
	for i, rx := range g.Rxs {
		f.header.Rxs = append(f.header.Rxs, RxInfo{ID: rx.ID, X: rx.X, Y: rx.Y, Z: rx.Z})
		f.traces[i] = make([][]float64, len(Components))
		for c := range f.traces[i] {
			f.traces[i][c] = make([]float64, 0, g.Iterations)
		}
	}

	return f
}

// WriteIteration samples the fields and currents at every receiver position
// for the current timestep.
func (f *File) WriteIteration(g *grid.Grid) {
	for i, rx := range g.Rxs {
		x, y, z := rx.X, rx.Y, rx.Z
		t := f.traces[i]
		t[0] = append(t[0], g.Ex.At(clamp(x, g.Nx-1), y, z))
		t[1] = append(t[1], g.Ey.At(x, clamp(y, g.Ny-1), z))
		t[2] = append(t[2], g.Ez.At(x, y, clamp(z, g.Nz-1)))
		t[3] = append(t[3], g.Hx.At(x, clamp(y, g.Ny-1), clamp(z, g.Nz-1)))
		t[4] = append(t[4], g.Hy.At(clamp(x, g.Nx-1), y, clamp(z, g.Nz-1)))
		t[5] = append(t[5], g.Hz.At(clamp(x, g.Nx-1), clamp(y, g.Ny-1), z))
		t[6] = append(t[6], g.CurrentX(x, y, z))
		t[7] = append(t[7], g.CurrentY(x, y, z))
		t[8] = append(t[8], g.CurrentZ(x, y, z))
	}
}

func clamp(v, max int) int {
	if v > max {
		return max
	}
	return v
}

// Close writes the container to disk.
func (f *File) Close() error {
	out, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %s", f.path, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)

	headerBytes, err := json.Marshal(f.header)
	if err != nil {
		return fmt.Errorf("failed to encode output header: %s", err)
	}

	if _, err := w.WriteString(traceMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(headerBytes))); err != nil {
		return err
	}
	if _, err := w.Write(headerBytes); err != nil {
		return err
	}

	for _, rx := range f.traces {
		for _, trace := range rx {
			if err := binary.Write(w, binary.LittleEndian, trace); err != nil {
				return fmt.Errorf("failed to write trace block: %s", err)
			}
		}
	}

	return w.Flush()
}

// Trace is a fully loaded trace file.
type Trace struct {
	Header Header
	// Data[rx][component][iteration]
	Data [][][]float64
}

// Read loads a trace file written by Close.
func Read(path string) (*Trace, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file %s: %s", path, err)
	}
	defer in.Close()

	r := bufio.NewReader(in)

	magic := make([]byte, len(traceMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read output file magic: %s", err)
	}
	if string(magic) != traceMagic {
		return nil, fmt.Errorf("%s is not an emwave output file", path)
	}

	var headerLen uint32
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, fmt.Errorf("failed to read output header length: %s", err)
	}

	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read output header: %s", err)
	}

	trace := &Trace{}
	if err := json.Unmarshal(headerBytes, &trace.Header); err != nil {
		return nil, fmt.Errorf("failed to decode output header: %s", err)
	}

	trace.Data = make([][][]float64, len(trace.Header.Rxs))
	for i := range trace.Data {
		trace.Data[i] = make([][]float64, len(trace.Header.Components))
		for c := range trace.Data[i] {
			block := make([]float64, trace.Header.Iterations)
			if err := binary.Read(r, binary.LittleEndian, block); err != nil {
				return nil, fmt.Errorf("failed to read trace block: %s", err)
			}
			trace.Data[i][c] = block
		}
	}

	return trace, nil
}

// RxTrace returns the component trace of the receiver with the given ID.
func (t *Trace) RxTrace(rxID, component string) ([]float64, error) {
	ci := -1
	for i, name := range t.Header.Components {
		if name == component {
			ci = i
			break
		}
	}
	if ci < 0 {
		return nil, fmt.Errorf("unknown trace component %s", component)
	}

	for i, rx := range t.Header.Rxs {
		if rx.ID == rxID {
			return t.Data[i][ci], nil
		}
	}
	return nil, fmt.Errorf("no receiver %s in trace file", rxID)
}

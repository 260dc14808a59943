package grid

// Array3 is a dense 3D float64 array stored in row-major order. Field
// component arrays are staggered, so every array carries its own dimensions.
type Array3 struct {
	NX, NY, NZ int
	Data       []float64
}

func NewArray3(nx, ny, nz int) *Array3 {
	return &Array3{
		NX:   nx,
		NY:   ny,
		NZ:   nz,
		Data: make([]float64, nx*ny*nz),
	}
}

func (a *Array3) Idx(i, j, k int) int {
	return (i*a.NY+j)*a.NZ + k
}

func (a *Array3) At(i, j, k int) float64 {
	return a.Data[(i*a.NY+j)*a.NZ+k]
}

func (a *Array3) Set(i, j, k int, v float64) {
	a.Data[(i*a.NY+j)*a.NZ+k] = v
}

func (a *Array3) Add(i, j, k int, v float64) {
	a.Data[(i*a.NY+j)*a.NZ+k] += v
}

// UintArray3 backs the volumetric material ID array (solid).
type UintArray3 struct {
	NX, NY, NZ int
	Data       []uint32
}

func NewUintArray3(nx, ny, nz int, fill uint32) *UintArray3 {
	a := &UintArray3{
		NX:   nx,
		NY:   ny,
		NZ:   nz,
		Data: make([]uint32, nx*ny*nz),
	}
	if fill != 0 {
		for i := range a.Data {
			a.Data[i] = fill
		}
	}
	return a
}

func (a *UintArray3) At(i, j, k int) uint32 {
	return a.Data[(i*a.NY+j)*a.NZ+k]
}

func (a *UintArray3) Set(i, j, k int, v uint32) {
	a.Data[(i*a.NY+j)*a.NZ+k] = v
}

// CompArray4 holds one 3D uint32 volume per field or edge component, used
// for the cell edge ID array and component-count variants of the rigid
// arrays.
type CompArray4 struct {
	NC, NX, NY, NZ int
	Data           []uint32
}

func NewCompArray4(nc, nx, ny, nz int, fill uint32) *CompArray4 {
	a := &CompArray4{
		NC:   nc,
		NX:   nx,
		NY:   ny,
		NZ:   nz,
		Data: make([]uint32, nc*nx*ny*nz),
	}
	if fill != 0 {
		for i := range a.Data {
			a.Data[i] = fill
		}
	}
	return a
}

func (a *CompArray4) At(c, i, j, k int) uint32 {
	return a.Data[((c*a.NX+i)*a.NY+j)*a.NZ+k]
}

func (a *CompArray4) Set(c, i, j, k int, v uint32) {
	a.Data[((c*a.NX+i)*a.NY+j)*a.NZ+k] = v
}

// BoolArray4 backs the rigid arrays that veto dielectric smoothing per
// component.
type BoolArray4 struct {
	NC, NX, NY, NZ int
	Data           []bool
}

func NewBoolArray4(nc, nx, ny, nz int) *BoolArray4 {
	return &BoolArray4{
		NC:   nc,
		NX:   nx,
		NY:   ny,
		NZ:   nz,
		Data: make([]bool, nc*nx*ny*nz),
	}
}

func (a *BoolArray4) At(c, i, j, k int) bool {
	return a.Data[((c*a.NX+i)*a.NY+j)*a.NZ+k]
}

func (a *BoolArray4) Set(c, i, j, k int, v bool) {
	a.Data[((c*a.NX+i)*a.NY+j)*a.NZ+k] = v
}

// ComplexArray4 holds per-pole accumulator volumes for dispersive updates.
type ComplexArray4 struct {
	NP, NX, NY, NZ int
	Data           []complex128
}

func NewComplexArray4(np, nx, ny, nz int) *ComplexArray4 {
	return &ComplexArray4{
		NP:   np,
		NX:   nx,
		NY:   ny,
		NZ:   nz,
		Data: make([]complex128, np*nx*ny*nz),
	}
}

func (a *ComplexArray4) Idx(p, i, j, k int) int {
	return ((p*a.NX+i)*a.NY+j)*a.NZ + k
}

func (a *ComplexArray4) At(p, i, j, k int) complex128 {
	return a.Data[((p*a.NX+i)*a.NY+j)*a.NZ+k]
}

func (a *ComplexArray4) Set(p, i, j, k int, v complex128) {
	a.Data[((p*a.NX+i)*a.NY+j)*a.NZ+k] = v
}

package solver

import (
	"sync"

	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/material"
)

// parallelRange splits [start, end) into per-worker chunks and runs fn on
// each concurrently. The grid kernels parallelise over the x axis, slabs
// never overlap so the kernels stay race free.
func parallelRange(start, end, workers int, fn func(lo, hi int)) {
	n := end - start
	if workers < 1 || n < workers*2 {
		fn(start, end)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := start; lo < end; lo += chunk {
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// updateElectric runs the standard electric field update on all three
// components.
func updateElectric(g *grid.Grid) {
	parallelRange(0, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 1; j < g.Ny; j++ {
				for k := 1; k < g.Nz; k++ {
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEx, i, j, k)]
					v := row[0]*g.Ex.At(i, j, k) +
						row[2]*(g.Hz.At(i, j, k)-g.Hz.At(i, j-1, k)) -
						row[3]*(g.Hy.At(i, j, k)-g.Hy.At(i, j, k-1))
					g.Ex.Set(i, j, k, v)
				}
			}
		}
	})

	parallelRange(1, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 1; k < g.Nz; k++ {
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEy, i, j, k)]
					v := row[0]*g.Ey.At(i, j, k) +
						row[3]*(g.Hx.At(i, j, k)-g.Hx.At(i, j, k-1)) -
						row[1]*(g.Hz.At(i, j, k)-g.Hz.At(i-1, j, k))
					g.Ey.Set(i, j, k, v)
				}
			}
		}
	})

	parallelRange(1, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 1; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEz, i, j, k)]
					v := row[0]*g.Ez.At(i, j, k) +
						row[1]*(g.Hy.At(i, j, k)-g.Hy.At(i-1, j, k)) -
						row[2]*(g.Hx.At(i, j, k)-g.Hx.At(i, j-1, k))
					g.Ez.Set(i, j, k, v)
				}
			}
		}
	})
}

// dispersiveSum accumulates the real part of the recursive convolution
// accumulators for one edge.
func dispersiveSum(t *grid.ComplexArray4, poles, i, j, k int) float64 {
	sum := 0.0
	for p := 0; p < poles; p++ {
		sum += real(t.At(p, i, j, k))
	}
	return sum
}

// updateElectricDispersiveA is the first phase of the dispersive electric
// update: the standard update extended with the accumulator contribution.
// It needs the present field values, so it runs before PML and source
// corrections.
func updateElectricDispersiveA(g *grid.Grid, poles int) {
	parallelRange(0, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 1; j < g.Ny; j++ {
				for k := 1; k < g.Nz; k++ {
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEx, i, j, k)]
					v := row[0]*g.Ex.At(i, j, k) +
						row[2]*(g.Hz.At(i, j, k)-g.Hz.At(i, j-1, k)) -
						row[3]*(g.Hy.At(i, j, k)-g.Hy.At(i, j, k-1)) +
						row[5]*dispersiveSum(g.Tx, poles, i, j, k)
					g.Ex.Set(i, j, k, v)
				}
			}
		}
	})

	parallelRange(1, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 1; k < g.Nz; k++ {
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEy, i, j, k)]
					v := row[0]*g.Ey.At(i, j, k) +
						row[3]*(g.Hx.At(i, j, k)-g.Hx.At(i, j, k-1)) -
						row[1]*(g.Hz.At(i, j, k)-g.Hz.At(i-1, j, k)) +
						row[5]*dispersiveSum(g.Ty, poles, i, j, k)
					g.Ey.Set(i, j, k, v)
				}
			}
		}
	})

	parallelRange(1, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 1; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					row := g.UpdateCoeffsE[g.ID.At(grid.CompEz, i, j, k)]
					v := row[0]*g.Ez.At(i, j, k) +
						row[1]*(g.Hy.At(i, j, k)-g.Hy.At(i-1, j, k)) -
						row[2]*(g.Hx.At(i, j, k)-g.Hx.At(i, j-1, k)) +
						row[5]*dispersiveSum(g.Tz, poles, i, j, k)
					g.Ez.Set(i, j, k, v)
				}
			}
		}
	})
}

// updateElectricDispersiveB is the second phase of the dispersive update:
// the accumulators advance using the fully updated electric field, so it can
// only run after PML and source corrections have been applied.
func updateElectricDispersiveB(g *grid.Grid, poles int) {
	advance := func(t *grid.ComplexArray4, comp, i, j, k int, e float64) {
		drow := g.UpdateCoeffsDispersive[g.ID.At(comp, i, j, k)]
		for p := 0; p < poles; p++ {
			ept := drow[material.CoeffsPerPole*p]
			dchi0 := drow[material.CoeffsPerPole*p+1]
			t.Set(p, i, j, k, ept*t.At(p, i, j, k)+dchi0*complex(e, 0))
		}
	}

	parallelRange(0, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 1; j < g.Ny; j++ {
				for k := 1; k < g.Nz; k++ {
					advance(g.Tx, grid.CompEx, i, j, k, g.Ex.At(i, j, k))
				}
			}
		}
	})

	parallelRange(1, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 1; k < g.Nz; k++ {
					advance(g.Ty, grid.CompEy, i, j, k, g.Ey.At(i, j, k))
				}
			}
		}
	})

	parallelRange(1, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 1; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					advance(g.Tz, grid.CompEz, i, j, k, g.Ez.At(i, j, k))
				}
			}
		}
	})
}

// updateMagnetic runs the standard magnetic field update on all three
// components.
func updateMagnetic(g *grid.Grid) {
	parallelRange(0, g.Nx+1, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHx, i, j, k)]
					v := row[0]*g.Hx.At(i, j, k) +
						row[3]*(g.Ey.At(i, j, k+1)-g.Ey.At(i, j, k)) -
						row[2]*(g.Ez.At(i, j+1, k)-g.Ez.At(i, j, k))
					g.Hx.Set(i, j, k, v)
				}
			}
		}
	})

	parallelRange(0, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j <= g.Ny; j++ {
				for k := 0; k < g.Nz; k++ {
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHy, i, j, k)]
					v := row[0]*g.Hy.At(i, j, k) +
						row[1]*(g.Ez.At(i+1, j, k)-g.Ez.At(i, j, k)) -
						row[3]*(g.Ex.At(i, j, k+1)-g.Ex.At(i, j, k))
					g.Hy.Set(i, j, k, v)
				}
			}
		}
	})

	parallelRange(0, g.Nx, g.NThreads, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := 0; j < g.Ny; j++ {
				for k := 0; k <= g.Nz; k++ {
					row := g.UpdateCoeffsH[g.ID.At(grid.CompHz, i, j, k)]
					v := row[0]*g.Hz.At(i, j, k) +
						row[2]*(g.Ex.At(i, j+1, k)-g.Ex.At(i, j, k)) -
						row[1]*(g.Ey.At(i+1, j, k)-g.Ey.At(i, j, k))
					g.Hz.Set(i, j, k, v)
				}
			}
		}
	})
}

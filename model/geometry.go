package model

import (
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/emwave/emwave/grid"
	"github.com/emwave/emwave/material"
)

// ProcessGeometryCmds applies the geometry commands to the volumetric
// material array, strictly in input order so later objects overwrite earlier
// ones. Edge and plate commands write cell edge IDs directly and pin them
// against smoothing.
func ProcessGeometryCmds(geometry []Cmd, g *grid.Grid) error {
	for _, cmd := range geometry {
		var err error
		switch cmd.Name {
		case "edge":
			err = processEdge(cmd, g)
		case "plate":
			err = processPlate(cmd, g)
		case "box":
			err = processBox(cmd, g)
		case "sphere":
			err = processSphere(cmd, g)
		case "cylinder":
			err = processCylinder(cmd, g)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func geometryMaterial(cmd Cmd, g *grid.Grid, id string) (*material.Material, error) {
	m, err := g.MaterialByID(id)
	if err != nil {
		return nil, cmd.errorf("%s", err)
	}
	return m, nil
}

func processEdge(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 7 {
		return cmd.errorf("requires two corners and a material ID, got %d parameters", len(fields))
	}

	xs, ys, zs, err := cmdPosition(cmd, g, fields[0:3])
	if err != nil {
		return err
	}
	xf, yf, zf, err := cmdPosition(cmd, g, fields[3:6])
	if err != nil {
		return err
	}
	m, err := geometryMaterial(cmd, g, fields[6])
	if err != nil {
		return err
	}

	id := uint32(m.NumID)
	switch {
	case ys == yf && zs == zf && xs != xf:
		for i := min(xs, xf); i < max(xs, xf); i++ {
			g.ID.Set(grid.CompEx, i, ys, zs, id)
			g.RigidE.Set(0, i, ys, zs, true)
		}
	case xs == xf && zs == zf && ys != yf:
		for j := min(ys, yf); j < max(ys, yf); j++ {
			g.ID.Set(grid.CompEy, xs, j, zs, id)
			g.RigidE.Set(1, xs, j, zs, true)
		}
	case xs == xf && ys == yf && zs != zf:
		for k := min(zs, zf); k < max(zs, zf); k++ {
			g.ID.Set(grid.CompEz, xs, ys, k, id)
			g.RigidE.Set(2, xs, ys, k, true)
		}
	default:
		return cmd.errorf("an edge must vary along exactly one axis")
	}

	return nil
}

func processPlate(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 7 {
		return cmd.errorf("requires two corners and a material ID, got %d parameters", len(fields))
	}

	xs, ys, zs, err := cmdPosition(cmd, g, fields[0:3])
	if err != nil {
		return err
	}
	xf, yf, zf, err := cmdPosition(cmd, g, fields[3:6])
	if err != nil {
		return err
	}
	m, err := geometryMaterial(cmd, g, fields[6])
	if err != nil {
		return err
	}

	id := uint32(m.NumID)
	switch {
	case zs == zf && xs != xf && ys != yf:
		for i := xs; i < xf; i++ {
			for j := ys; j <= yf; j++ {
				g.ID.Set(grid.CompEx, i, j, zs, id)
				g.RigidE.Set(0, i, j, zs, true)
			}
		}
		for i := xs; i <= xf; i++ {
			for j := ys; j < yf; j++ {
				g.ID.Set(grid.CompEy, i, j, zs, id)
				g.RigidE.Set(1, i, j, zs, true)
			}
		}
	case ys == yf && xs != xf && zs != zf:
		for i := xs; i < xf; i++ {
			for k := zs; k <= zf; k++ {
				g.ID.Set(grid.CompEx, i, ys, k, id)
				g.RigidE.Set(0, i, ys, k, true)
			}
		}
		for i := xs; i <= xf; i++ {
			for k := zs; k < zf; k++ {
				g.ID.Set(grid.CompEz, i, ys, k, id)
				g.RigidE.Set(2, i, ys, k, true)
			}
		}
	case xs == xf && ys != yf && zs != zf:
		for j := ys; j < yf; j++ {
			for k := zs; k <= zf; k++ {
				g.ID.Set(grid.CompEy, xs, j, k, id)
				g.RigidE.Set(1, xs, j, k, true)
			}
		}
		for j := ys; j <= yf; j++ {
			for k := zs; k < zf; k++ {
				g.ID.Set(grid.CompEz, xs, j, k, id)
				g.RigidE.Set(2, xs, j, k, true)
			}
		}
	default:
		return cmd.errorf("a plate must be constant along exactly one axis")
	}

	return nil
}

func processBox(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 7 {
		return cmd.errorf("requires two corners and a material ID, got %d parameters", len(fields))
	}

	xs, ys, zs, err := cmdPosition(cmd, g, fields[0:3])
	if err != nil {
		return err
	}
	xf, yf, zf, err := cmdPosition(cmd, g, fields[3:6])
	if err != nil {
		return err
	}
	if xf <= xs || yf <= ys || zf <= zs {
		return cmd.errorf("a box must span at least one cell in every direction")
	}
	m, err := geometryMaterial(cmd, g, fields[6])
	if err != nil {
		return err
	}

	id := uint32(m.NumID)
	for i := xs; i < xf; i++ {
		for j := ys; j < yf; j++ {
			for k := zs; k < zf; k++ {
				g.Solid.Set(i, j, k, id)
			}
		}
	}
	return nil
}

func processSphere(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 5 {
		return cmd.errorf("requires a centre, radius and material ID, got %d parameters", len(fields))
	}

	cx, cy, cz, err := cmdPosition(cmd, g, fields[0:3])
	if err != nil {
		return err
	}
	radius, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || radius <= 0 {
		return cmd.errorf("invalid radius %q", fields[3])
	}
	m, err := geometryMaterial(cmd, g, fields[4])
	if err != nil {
		return err
	}

	id := uint32(m.NumID)
	rx := g.DiscretiseX(radius)
	ry := g.DiscretiseY(radius)
	rz := g.DiscretiseZ(radius)
	for i := max(cx-rx, 0); i < min(cx+rx, g.Nx); i++ {
		for j := max(cy-ry, 0); j < min(cy+ry, g.Ny); j++ {
			for k := max(cz-rz, 0); k < min(cz+rz, g.Nz); k++ {
				// Compare against the cell centre in physical space.
				dx := (float64(i) + 0.5 - float64(cx)) * g.Dx
				dy := (float64(j) + 0.5 - float64(cy)) * g.Dy
				dz := (float64(k) + 0.5 - float64(cz)) * g.Dz
				if dx*dx+dy*dy+dz*dz <= radius*radius {
					g.Solid.Set(i, j, k, id)
				}
			}
		}
	}
	return nil
}

func processCylinder(cmd Cmd, g *grid.Grid) error {
	fields := cmd.Fields()
	if len(fields) != 8 {
		return cmd.errorf("requires two axis points, a radius and a material ID, got %d parameters", len(fields))
	}

	xs, ys, zs, err := cmdPosition(cmd, g, fields[0:3])
	if err != nil {
		return err
	}
	xf, yf, zf, err := cmdPosition(cmd, g, fields[3:6])
	if err != nil {
		return err
	}
	radius, err := strconv.ParseFloat(fields[6], 64)
	if err != nil || radius <= 0 {
		return cmd.errorf("invalid radius %q", fields[6])
	}
	m, err := geometryMaterial(cmd, g, fields[7])
	if err != nil {
		return err
	}

	id := uint32(m.NumID)
	switch {
	case ys == yf && zs == zf && xs != xf:
		for i := min(xs, xf); i < max(xs, xf); i++ {
			fillDisc(g, id, 'x', i, ys, zs, radius)
		}
	case xs == xf && zs == zf && ys != yf:
		for j := min(ys, yf); j < max(ys, yf); j++ {
			fillDisc(g, id, 'y', j, xs, zs, radius)
		}
	case xs == xf && ys == yf && zs != zf:
		for k := min(zs, zf); k < max(zs, zf); k++ {
			fillDisc(g, id, 'z', k, xs, ys, radius)
		}
	default:
		return cmd.errorf("a cylinder axis must be aligned with exactly one grid axis")
	}
	return nil
}

// fillDisc marks the cells of one cylinder cross-section. c1 and c2 are the
// centre coordinates in the plane normal to the axis.
func fillDisc(g *grid.Grid, id uint32, axis byte, slice, c1, c2 int, radius float64) {
	var n1, n2 int
	var d1, d2 float64
	switch axis {
	case 'x':
		n1, n2, d1, d2 = g.Ny, g.Nz, g.Dy, g.Dz
	case 'y':
		n1, n2, d1, d2 = g.Nx, g.Nz, g.Dx, g.Dz
	case 'z':
		n1, n2, d1, d2 = g.Nx, g.Ny, g.Dx, g.Dy
	}

	for a := 0; a < n1; a++ {
		for b := 0; b < n2; b++ {
			da := (float64(a) + 0.5 - float64(c1)) * d1
			db := (float64(b) + 0.5 - float64(c2)) * d2
			if da*da+db*db > radius*radius {
				continue
			}
			switch axis {
			case 'x':
				g.Solid.Set(slice, a, b, id)
			case 'y':
				g.Solid.Set(a, slice, b, id)
			case 'z':
				g.Solid.Set(a, b, slice, id)
			}
		}
	}
}

// BuildCellEdges derives the material ID of every cell edge and face from
// the volumetric array. An electric edge touching cells of different
// materials takes a smoothed compound material when every neighbour permits
// averaging, otherwise the material of the cell the edge belongs to. Edges
// pinned by edge or plate commands are left alone.
func BuildCellEdges(g *grid.Grid) {
	compound := map[string]uint32{}

	cell := func(i, j, k int) uint32 {
		return g.Solid.At(clampInt(i, 0, g.Nx-1), clampInt(j, 0, g.Ny-1), clampInt(k, 0, g.Nz-1))
	}

	resolve := func(ids []uint32, i, j, k int) uint32 {
		uniform := true
		for _, id := range ids[1:] {
			if id != ids[0] {
				uniform = false
				break
			}
		}
		if uniform {
			return ids[0]
		}

		for _, id := range ids {
			m := g.Materials[id]
			if m.PEC {
				// A conductor wins over any neighbour.
				return id
			}
			if !m.Average {
				return cell(i, j, k)
			}
		}
		return compoundMaterial(g, compound, ids)
	}

	for i := 0; i <= g.Nx; i++ {
		for j := 0; j <= g.Ny; j++ {
			for k := 0; k <= g.Nz; k++ {
				if i < g.Nx && !g.RigidE.At(0, i, j, k) {
					ids := []uint32{cell(i, j-1, k-1), cell(i, j-1, k), cell(i, j, k-1), cell(i, j, k)}
					g.ID.Set(grid.CompEx, i, j, k, resolve(ids, i, j, k))
				}
				if j < g.Ny && !g.RigidE.At(1, i, j, k) {
					ids := []uint32{cell(i-1, j, k-1), cell(i-1, j, k), cell(i, j, k-1), cell(i, j, k)}
					g.ID.Set(grid.CompEy, i, j, k, resolve(ids, i, j, k))
				}
				if k < g.Nz && !g.RigidE.At(2, i, j, k) {
					ids := []uint32{cell(i-1, j-1, k), cell(i-1, j, k), cell(i, j-1, k), cell(i, j, k)}
					g.ID.Set(grid.CompEz, i, j, k, resolve(ids, i, j, k))
				}

				if !g.RigidH.At(0, i, j, k) {
					ids := []uint32{cell(i-1, j, k), cell(i, j, k)}
					g.ID.Set(grid.CompHx, i, j, k, resolve(ids, i, j, k))
				}
				if !g.RigidH.At(1, i, j, k) {
					ids := []uint32{cell(i, j-1, k), cell(i, j, k)}
					g.ID.Set(grid.CompHy, i, j, k, resolve(ids, i, j, k))
				}
				if !g.RigidH.At(2, i, j, k) {
					ids := []uint32{cell(i, j, k-1), cell(i, j, k)}
					g.ID.Set(grid.CompHz, i, j, k, resolve(ids, i, j, k))
				}
			}
		}
	}
}

// compoundMaterial returns (creating on first use) the smoothed material for
// a set of neighbouring cell materials, with arithmetically averaged
// properties.
func compoundMaterial(g *grid.Grid, cache map[string]uint32, ids []uint32) uint32 {
	unique := map[uint32]bool{}
	for _, id := range ids {
		unique[id] = true
	}
	parts := make([]int, 0, len(unique))
	for id := range unique {
		parts = append(parts, int(id))
	}
	sort.Ints(parts)

	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = g.Materials[p].ID
	}
	key := strings.Join(names, "+")

	if id, ok := cache[key]; ok {
		return id
	}

	var er, se, mr, sm float64
	for _, p := range parts {
		m := g.Materials[p]
		er += m.Er
		se += m.Se
		mr += m.Mr
		sm += m.Sm
	}
	n := float64(len(parts))

	m := material.New(len(g.Materials), key, er/n, se/n, mr/n, sm/n)
	m.Average = false
	g.Materials = append(g.Materials, m)
	cache[key] = uint32(m.NumID)

	if g.Messages {
		log.Debugf("created compound material %s", key)
	}
	return uint32(m.NumID)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

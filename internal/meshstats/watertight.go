package meshstats

import "glbstats/internal/mesh"

type edgeKey struct{ a, b int }

// IsWatertight reports whether every edge of m is shared by exactly two
// faces that traverse it in opposite directions, i.e. the surface has no
// boundary and consistent winding. A surface without faces is vacuously
// watertight.
func IsWatertight(m mesh.Mesh) bool {
	// Net count of directed traversals per undirected edge: +1 for a->b
	// with a<b, -1 for the reverse. total counts all traversals.
	net := make(map[edgeKey]int, len(m.Faces)*3/2)
	total := make(map[edgeKey]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			u, v := f[k], f[(k+1)%3]
			if u == v {
				return false
			}
			key, dir := edgeKey{u, v}, 1
			if u > v {
				key, dir = edgeKey{v, u}, -1
			}
			net[key] += dir
			total[key]++
		}
	}
	for key, n := range total {
		if n != 2 || net[key] != 0 {
			return false
		}
	}
	return true
}

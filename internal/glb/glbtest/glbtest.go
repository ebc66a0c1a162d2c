// Package glbtest builds small glTF documents for tests.
package glbtest

import (
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"glbstats/internal/mesh"
)

// Part is one mesh placed by its own root node.
type Part struct {
	Name        string
	Mesh        mesh.Mesh
	Translation [3]float64
	Scale       [3]float64 // zero means unit scale
	Mode        gltf.PrimitiveMode
	// Split gives every face its own three vertices, the way exporters
	// emit meshes with per-face normals.
	Split bool
	// NoNode leaves the mesh unreferenced by the scene graph.
	NoNode bool
}

// Document returns a glTF document holding parts.
func Document(parts ...Part) *gltf.Document {
	doc := gltf.NewDocument()
	for _, p := range parts {
		m := p.Mesh
		if p.Split {
			m = split(m)
		}
		positions := make([][3]float32, len(m.Vertices))
		for i, v := range m.Vertices {
			positions[i] = [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
		}
		prim := &gltf.Primitive{
			Mode:       p.Mode,
			Attributes: map[string]int{gltf.POSITION: modeler.WritePosition(doc, positions)},
		}
		if len(m.Faces) > 0 {
			indices := make([]uint32, 0, len(m.Faces)*3)
			for _, f := range m.Faces {
				indices = append(indices, uint32(f[0]), uint32(f[1]), uint32(f[2]))
			}
			prim.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: p.Name, Primitives: []*gltf.Primitive{prim}})
		if p.NoNode {
			continue
		}
		node := &gltf.Node{
			Name:        p.Name,
			Mesh:        gltf.Index(len(doc.Meshes) - 1),
			Translation: p.Translation,
			Scale:       p.Scale,
		}
		if node.Scale == [3]float64{} {
			node.Scale = [3]float64{1, 1, 1}
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc
}

// Write saves parts as a binary glTF file at path.
func Write(t testing.TB, path string, parts ...Part) {
	t.Helper()
	if err := gltf.SaveBinary(Document(parts...), path); err != nil {
		t.Fatalf("write glb %s: %v", path, err)
	}
}

func split(m mesh.Mesh) mesh.Mesh {
	out := mesh.Mesh{}
	for _, f := range m.Faces {
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
		out.Faces = append(out.Faces, [3]int{base, base + 1, base + 2})
	}
	return out
}

// Package glb loads binary glTF (and .gltf) files into a scene of named
// geometries placed by the node hierarchy.
package glb

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"glbstats/internal/mathutil"
	"glbstats/internal/mesh"
)

// ErrNoGeometry is returned when a file holds no usable geometry.
var ErrNoGeometry = errors.New("no geometry found in GLB file")

// maxNodeDepth bounds hierarchy traversal; deeper chains indicate a cycle.
const maxNodeDepth = 256

// Load reads a .glb or .gltf file and returns its scene.
func Load(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("glb: open %s: %w", path, err)
	}
	scene, err := FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("glb: %s: %w", path, err)
	}
	scene.Path = path
	return scene, nil
}

// FromDocument converts an already-decoded glTF document.
func FromDocument(doc *gltf.Document) (*Scene, error) {
	scene := &Scene{}

	// meshGeoms[i] lists the geometry indices produced by doc.Meshes[i].
	meshGeoms := make([][]int, len(doc.Meshes))
	for mi, m := range doc.Meshes {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("mesh_%d", mi)
		}
		for pi, prim := range m.Primitives {
			g, ok, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", name, pi, err)
			}
			if !ok {
				continue
			}
			g.Name = name
			if len(m.Primitives) > 1 {
				g.Name = fmt.Sprintf("%s_%d", name, pi)
			}
			meshGeoms[mi] = append(meshGeoms[mi], len(scene.Geometries))
			scene.Geometries = append(scene.Geometries, g)
		}
	}

	if len(scene.Geometries) == 0 {
		return nil, ErrNoGeometry
	}

	if len(doc.Nodes) == 0 {
		for gi, g := range scene.Geometries {
			scene.Instances = append(scene.Instances, Instance{
				Geometry:  gi,
				Node:      g.Name,
				Transform: mathutil.Mat4Identity(),
			})
		}
	} else {
		for _, root := range rootNodes(doc) {
			walk(doc, meshGeoms, scene, root, mathutil.Mat4Identity(), 0)
		}
	}

	total := 0
	for _, inst := range scene.Instances {
		total += len(scene.Geometries[inst.Geometry].Mesh.Vertices)
	}
	if total == 0 {
		return nil, ErrNoGeometry
	}
	return scene, nil
}

// readPrimitive decodes one primitive. ok is false for primitives without
// positions, which carry nothing measurable.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (Geometry, bool, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok || posIdx < 0 || posIdx >= len(doc.Accessors) {
		return Geometry{}, false, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return Geometry{}, false, fmt.Errorf("read positions: %w", err)
	}
	verts := make([]mathutil.Vec3, len(positions))
	for i, p := range positions {
		verts[i] = mathutil.FromFloat32(p)
	}

	var indices []uint32
	if prim.Indices != nil {
		if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
			return Geometry{}, false, fmt.Errorf("indices accessor %d out of range", *prim.Indices)
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return Geometry{}, false, fmt.Errorf("read indices: %w", err)
		}
	} else {
		// Non-indexed primitives draw vertices in order.
		indices = make([]uint32, len(verts))
		for k := range indices {
			indices[k] = uint32(k)
		}
	}
	for _, ix := range indices {
		if int(ix) >= len(verts) {
			return Geometry{}, false, fmt.Errorf("index %d out of range (%d vertices)", ix, len(verts))
		}
	}

	switch prim.Mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
		m := mesh.Mesh{Vertices: verts, Faces: triangulate(prim.Mode, indices)}
		return Geometry{Kind: KindTriangles, Mesh: mesh.Weld(m)}, true, nil
	case gltf.PrimitivePoints:
		return Geometry{Kind: KindPoints, Mesh: mesh.Mesh{Vertices: verts}}, true, nil
	default:
		return Geometry{Kind: KindLines, Mesh: mesh.Mesh{Vertices: verts}}, true, nil
	}
}

// triangulate expands strip and fan index streams into a triangle list.
// Trailing indices that do not complete a triangle are dropped.
func triangulate(mode gltf.PrimitiveMode, idx []uint32) [][3]int {
	var faces [][3]int
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 0; i+2 < len(idx); i++ {
			if i%2 == 0 {
				faces = append(faces, [3]int{int(idx[i]), int(idx[i+1]), int(idx[i+2])})
			} else {
				faces = append(faces, [3]int{int(idx[i+1]), int(idx[i]), int(idx[i+2])})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 1; i+1 < len(idx); i++ {
			faces = append(faces, [3]int{int(idx[0]), int(idx[i]), int(idx[i+1])})
		}
	default:
		faces = make([][3]int, 0, len(idx)/3)
		for i := 0; i+2 < len(idx); i += 3 {
			faces = append(faces, [3]int{int(idx[i]), int(idx[i+1]), int(idx[i+2])})
		}
	}
	return faces
}

// rootNodes returns the nodes of the default scene, the first scene, or
// every node that is nobody's child when the document declares no scenes.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			si = *doc.Scene
		}
		return doc.Scenes[si].Nodes
	}
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func walk(doc *gltf.Document, meshGeoms [][]int, scene *Scene, ni int, parent mathutil.Mat4, depth int) {
	if ni < 0 || ni >= len(doc.Nodes) || depth > maxNodeDepth {
		return
	}
	node := doc.Nodes[ni]
	world := mathutil.Mat4Mul(parent, localTransform(node))

	if node.Mesh != nil && *node.Mesh >= 0 && *node.Mesh < len(meshGeoms) {
		name := node.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", ni)
		}
		for _, gi := range meshGeoms[*node.Mesh] {
			scene.Instances = append(scene.Instances, Instance{Geometry: gi, Node: name, Transform: world})
		}
	}
	for _, c := range node.Children {
		walk(doc, meshGeoms, scene, c, world, depth+1)
	}
}

// localTransform returns the node matrix when one is set, else T·R·S.
func localTransform(n *gltf.Node) mathutil.Mat4 {
	m := mathutil.FromColumnMajor(n.MatrixOrDefault())
	if !m.IsIdentity() {
		return m
	}
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return mathutil.ComposeTRS(
		mathutil.Vec3{n.Translation[0], n.Translation[1], n.Translation[2]},
		mathutil.Quat{r[0], r[1], r[2], r[3]},
		mathutil.Vec3{s[0], s[1], s[2]},
	)
}

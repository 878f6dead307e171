// Package mesh loads triangle meshes from glTF documents. Input geometry is
// expected to be already triangulated and already expressed in a projected
// coordinate system at one unit per meter; this package only extracts and
// flattens it.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/meshvox/mesh2mca/voxel"
)

// Feature is one discrete input object: an identifier and its triangle soup.
type Feature struct {
	ID   string
	Mesh voxel.Mesh
}

// LoadFeatures reads a .glb or .gltf file and returns one feature per mesh
// instance in the document's scenes, with node transforms applied. Documents
// without scenes yield one untransformed feature per mesh.
func LoadFeatures(path string) ([]Feature, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var features []Feature
	if len(doc.Scenes) == 0 {
		for i := range doc.Meshes {
			f, err := meshFeature(doc, i, mgl64.Ident4())
			if err != nil {
				return nil, err
			}
			if f.ID == "" {
				f.ID = fmt.Sprintf("mesh[%d]", i)
			}
			features = append(features, f)
		}
		return features, nil
	}

	for _, scene := range doc.Scenes {
		for _, root := range scene.Nodes {
			if err := walkNode(doc, root, mgl64.Ident4(), &features); err != nil {
				return nil, err
			}
		}
	}
	return features, nil
}

func walkNode(doc *gltf.Document, index int, parent mgl64.Mat4, out *[]Feature) error {
	if index >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	node := doc.Nodes[index]
	world := parent.Mul4(nodeMatrix(node))
	if node.Mesh != nil {
		f, err := meshFeature(doc, *node.Mesh, world)
		if err != nil {
			return err
		}
		if f.ID == "" {
			f.ID = node.Name
		}
		if f.ID == "" {
			f.ID = fmt.Sprintf("mesh[%d]", *node.Mesh)
		}
		*out = append(*out, f)
	}
	for _, child := range node.Children {
		if err := walkNode(doc, child, world, out); err != nil {
			return err
		}
	}
	return nil
}

func nodeMatrix(n *gltf.Node) mgl64.Mat4 {
	if n.Matrix != gltf.DefaultMatrix {
		return mgl64.Mat4(n.Matrix)
	}
	t := mgl64.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	q := mgl64.Quat{
		W: n.Rotation[3],
		V: mgl64.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]},
	}
	s := mgl64.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(q.Mat4()).Mul4(s)
}

func meshFeature(doc *gltf.Document, meshIndex int, world mgl64.Mat4) (Feature, error) {
	if meshIndex >= len(doc.Meshes) {
		return Feature{}, fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	m := doc.Meshes[meshIndex]
	id := m.Name
	label := id
	if label == "" {
		label = fmt.Sprintf("mesh[%d]", meshIndex)
	}

	var triangles []voxel.Triangle
	for pi, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIndex, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return Feature{}, fmt.Errorf("%s: primitive %d has no POSITION attribute", label, pi)
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
		if err != nil {
			return Feature{}, fmt.Errorf("%s: primitive %d positions: %w", label, pi, err)
		}

		verts := make([]mgl64.Vec3, len(positions))
		for i, p := range positions {
			v := world.Mul4x1(mgl64.Vec4{float64(p[0]), float64(p[1]), float64(p[2]), 1})
			verts[i] = v.Vec3()
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return Feature{}, fmt.Errorf("%s: primitive %d indices: %w", label, pi, err)
			}
		} else {
			indices = make([]uint32, len(verts))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		if len(indices)%3 != 0 {
			return Feature{}, fmt.Errorf("%s: primitive %d: %d indices not divisible by 3", label, pi, len(indices))
		}
		for i := 0; i+2 < len(indices); i += 3 {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			if int(a) >= len(verts) || int(b) >= len(verts) || int(c) >= len(verts) {
				return Feature{}, fmt.Errorf("%s: primitive %d: vertex index out of range", label, pi)
			}
			triangles = append(triangles, voxel.Triangle{verts[a], verts[b], verts[c]})
		}
	}
	return Feature{ID: id, Mesh: voxel.Mesh{Triangles: triangles}}, nil
}

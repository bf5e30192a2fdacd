package resource

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF reads model file. Every node with mesh becomes object named after
// the node. Triangle primitives become geometry, line primitives become path
// segments. Node transforms, parents included, are baked into vertices.
func LoadGLTF(name, filePath string) (*Model, error) {
	doc, err := gltf.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open gltf %q", filePath)
	}
	return ModelFromGLTF(name, doc)
}

func ModelFromGLTF(name string, doc *gltf.Document) (*Model, error) {
	m := &Model{Name: name}

	worlds, err := nodeWorldMatrices(doc)
	if err != nil {
		return nil, err
	}

	for iNode, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		if int(*node.Mesh) >= len(doc.Meshes) {
			return nil, errors.Errorf("node %d refers to missing mesh %d", iNode, *node.Mesh)
		}
		mesh := doc.Meshes[*node.Mesh]

		objName := node.Name
		if objName == "" {
			objName = mesh.Name
		}
		obj := &Object{Name: objName, Material: DefaultMaterial()}

		for iPrim, prim := range mesh.Primitives {
			if err := loadPrimitive(doc, prim, worlds[iNode], obj); err != nil {
				return nil, errors.Wrapf(err, "object %q primitive %d", objName, iPrim)
			}
		}
		m.Objects = append(m.Objects, obj)
	}
	return m, nil
}

// nodeLocalMatrix is either explicit matrix or T * R * S.
// Zero values of the fields mean their defaults, decoder fills identity
// matrix when TRS is used.
func nodeLocalMatrix(node *gltf.Node) mgl32.Mat4 {
	if m := mgl32.Mat4(node.Matrix); m != (mgl32.Mat4{}) && m != mgl32.Ident4() {
		return m
	}
	t, r, s := node.Translation, node.Rotation, node.Scale
	if s == ([3]float32{}) {
		s = [3]float32{1, 1, 1}
	}
	rot := mgl32.QuatIdent()
	if r != ([4]float32{}) {
		rot = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
	}
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// nodeWorldMatrices resolves parent chain of every node
func nodeWorldMatrices(doc *gltf.Document) ([]mgl32.Mat4, error) {
	parent := make([]int, len(doc.Nodes))
	for i := range parent {
		parent[i] = -1
	}
	for iNode, node := range doc.Nodes {
		for _, child := range node.Children {
			if int(child) >= len(doc.Nodes) {
				return nil, errors.Errorf("node %d refers to missing child %d", iNode, child)
			}
			if parent[child] != -1 {
				return nil, errors.Errorf("node %d has more than one parent", child)
			}
			parent[child] = iNode
		}
	}

	worlds := make([]mgl32.Mat4, len(doc.Nodes))
	done := make([]bool, len(doc.Nodes))
	var resolve func(i, depth int) (mgl32.Mat4, error)
	resolve = func(i, depth int) (mgl32.Mat4, error) {
		if done[i] {
			return worlds[i], nil
		}
		if depth > len(doc.Nodes) {
			return mgl32.Mat4{}, errors.Errorf("node %d is part of a cycle", i)
		}
		m := nodeLocalMatrix(doc.Nodes[i])
		if p := parent[i]; p != -1 {
			pm, err := resolve(p, depth+1)
			if err != nil {
				return mgl32.Mat4{}, err
			}
			m = pm.Mul4(m)
		}
		worlds[i], done[i] = m, true
		return m, nil
	}
	for i := range doc.Nodes {
		if _, err := resolve(i, 0); err != nil {
			return nil, err
		}
	}
	return worlds, nil
}

func loadPrimitive(doc *gltf.Document, prim *gltf.Primitive, world mgl32.Mat4, obj *Object) error {
	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return errors.New("primitive without positions")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return errors.Wrap(err, "positions")
	}
	for i, p := range positions {
		positions[i] = world.Mul4x1(mgl32.Vec3(p).Vec4(1)).Vec3()
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return errors.Wrap(err, "indices")
		}
	}

	switch prim.Mode {
	case gltf.PrimitiveLineStrip, gltf.PrimitiveLineLoop, gltf.PrimitiveLines:
		points := make([]mgl32.Vec3, len(positions))
		for i, p := range positions {
			points[i] = p
		}
		closed := prim.Mode == gltf.PrimitiveLineLoop
		if prim.Mode == gltf.PrimitiveLines {
			points, closed = chainEdges(points, indices)
		} else if indices != nil {
			points = reorder(points, indices)
		}
		obj.Segments = append(obj.Segments, SegmentsFromPath(points, closed)...)
		return nil
	case gltf.PrimitiveTriangles:
	default:
		return errors.Errorf("unsupported primitive mode %v", prim.Mode)
	}

	geom := obj.Geometry
	if geom == nil {
		geom = &Geometry{}
		obj.Geometry = geom
	}
	base := uint32(len(geom.Vertices))

	vertices := make([]Vertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = p
	}
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return errors.Wrap(err, "normals")
		}
		normalMat := world.Mat3().Inv().Transpose()
		for i := range vertices {
			if i < len(normals) {
				n := normalMat.Mul3x1(normals[i])
				if n.Len() > 0 {
					n = n.Normalize()
				}
				vertices[i].Normal = n
			}
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return errors.Wrap(err, "uvs")
		}
		for i := range vertices {
			if i < len(uvs) {
				vertices[i].UV = uvs[i]
			}
		}
	}
	geom.Vertices = append(geom.Vertices, vertices...)

	if indices == nil {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, i := range indices {
		geom.Indices = append(geom.Indices, base+i)
	}

	if prim.Material != nil && int(*prim.Material) < len(doc.Materials) {
		mat, err := materialFromGLTF(doc, doc.Materials[*prim.Material])
		if err != nil {
			return errors.Wrap(err, "material")
		}
		obj.Material = mat
	}
	return nil
}

// gltfMaterial mirrors json form of material, extras carry phong colors
type gltfMaterial struct {
	PBR *struct {
		BaseColorFactor  []float32 `json:"baseColorFactor"`
		BaseColorTexture *struct {
			Index uint32 `json:"index"`
		} `json:"baseColorTexture"`
	} `json:"pbrMetallicRoughness"`
	Extras struct {
		Ambient  []float32 `json:"ambient"`
		Specular []float32 `json:"specular"`
	} `json:"extras"`
}

func materialFromGLTF(doc *gltf.Document, src *gltf.Material) (Material, error) {
	mat := DefaultMaterial()

	raw, err := json.Marshal(src)
	if err != nil {
		return mat, err
	}
	var gm gltfMaterial
	if err := json.Unmarshal(raw, &gm); err != nil {
		return mat, err
	}

	if gm.PBR != nil {
		if len(gm.PBR.BaseColorFactor) >= 3 {
			mat.Diffuse = vec3(gm.PBR.BaseColorFactor)
			mat.Ambient = mat.Diffuse.Mul(0.25)
		}
		if tex := gm.PBR.BaseColorTexture; tex != nil && int(tex.Index) < len(doc.Textures) {
			if src := doc.Textures[tex.Index].Source; src != nil && int(*src) < len(doc.Images) {
				mat.Texture = TextureName(doc.Images[*src].URI, doc.Images[*src].Name)
			}
		}
	}
	if len(gm.Extras.Ambient) >= 3 {
		mat.Ambient = vec3(gm.Extras.Ambient)
	}
	if len(gm.Extras.Specular) >= 3 {
		mat.Specular = vec3(gm.Extras.Specular)
	}
	return mat, nil
}

// TextureName turns image uri like "textures/oslona.png" into resource name "oslona"
func TextureName(uri, fallback string) string {
	if uri == "" || strings.HasPrefix(uri, "data:") {
		return fallback
	}
	base := path.Base(uri)
	return strings.TrimSuffix(base, path.Ext(base))
}

func vec3(v []float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}

func reorder(points []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, 0, len(indices))
	for _, i := range indices {
		if int(i) < len(points) {
			out = append(out, points[i])
		}
	}
	return out
}

// chainEdges walks list of line edges into ordered polyline.
// Returns true when walk ended next to the starting vertex.
func chainEdges(points []mgl32.Vec3, indices []uint32) ([]mgl32.Vec3, bool) {
	if indices == nil {
		indices = make([]uint32, len(points))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices) < 2 {
		return nil, false
	}

	adjacent := make(map[uint32][]uint32)
	for i := 0; i+1 < len(indices); i += 2 {
		a, b := indices[i], indices[i+1]
		adjacent[a] = append(adjacent[a], b)
		adjacent[b] = append(adjacent[b], a)
	}

	// open chain has to start from one of its ends
	start := indices[0]
	for v, adj := range adjacent {
		if len(adj) == 1 && (len(adjacent[start]) != 1 || v < start) {
			start = v
		}
	}

	visited := map[uint32]bool{start: true}
	order := []uint32{start}
	for cur := start; ; {
		moved := false
		for _, n := range adjacent[cur] {
			if !visited[n] {
				visited[n] = true
				order = append(order, n)
				cur = n
				moved = true
				break
			}
		}
		if !moved {
			break
		}
	}

	last := order[len(order)-1]
	closed := false
	if len(order) > 2 {
		for _, n := range adjacent[last] {
			if n == start {
				closed = true
			}
		}
	}
	return reorder(points, order), closed
}

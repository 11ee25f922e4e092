package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// vertexRef addresses a vertex in the builder's working set.
// Non-negative values index the interior buffer, negative values encode
// border slot i as -i-1.
type vertexRef int32

func (r vertexRef) isBorder() bool {
	return r < 0
}

func (r vertexRef) borderSlot() int {
	return int(-r - 1)
}

// meshData is the builder's working set. Border geometry only feeds normal
// accumulation and is dropped when the final buffers are produced.
type meshData struct {
	vertices  []mgl32.Vec3
	uvs       []mgl32.Vec2
	triangles []vertexRef

	borderVertices  []mgl32.Vec3
	borderTriangles []vertexRef
}

func newMeshData(verticesPerLine int) *meshData {
	interior := verticesPerLine * verticesPerLine
	border := verticesPerLine*4 + 4
	return &meshData{
		vertices:        make([]mgl32.Vec3, interior),
		uvs:             make([]mgl32.Vec2, interior),
		triangles:       make([]vertexRef, 0, (verticesPerLine-1)*(verticesPerLine-1)*6),
		borderVertices:  make([]mgl32.Vec3, border),
		borderTriangles: make([]vertexRef, 0, verticesPerLine*24+24),
	}
}

func (md *meshData) addVertex(pos mgl32.Vec3, uv mgl32.Vec2, ref vertexRef) {
	if ref.isBorder() {
		md.borderVertices[ref.borderSlot()] = pos
		return
	}
	md.vertices[ref] = pos
	md.uvs[ref] = uv
}

func (md *meshData) addTriangle(a, b, c vertexRef) {
	if a.isBorder() || b.isBorder() || c.isBorder() {
		md.borderTriangles = append(md.borderTriangles, a, b, c)
		return
	}
	md.triangles = append(md.triangles, a, b, c)
}

func (md *meshData) position(ref vertexRef) mgl32.Vec3 {
	if ref.isBorder() {
		return md.borderVertices[ref.borderSlot()]
	}
	return md.vertices[ref]
}

func (md *meshData) surfaceNormal(a, b, c vertexRef) mgl32.Vec3 {
	pa := md.position(a)
	ab := md.position(b).Sub(pa)
	ac := md.position(c).Sub(pa)
	return normalize(ab.Cross(ac))
}

// calculateNormals accumulates unit face normals into interior vertices only.
func (md *meshData) calculateNormals() []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(md.vertices))

	for i := 0; i < len(md.triangles); i += 3 {
		a, b, c := md.triangles[i], md.triangles[i+1], md.triangles[i+2]
		n := md.surfaceNormal(a, b, c)
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}

	for i := 0; i < len(md.borderTriangles); i += 3 {
		tri := md.borderTriangles[i : i+3]
		n := md.surfaceNormal(tri[0], tri[1], tri[2])
		for _, ref := range tri {
			if !ref.isBorder() {
				normals[ref] = normals[ref].Add(n)
			}
		}
	}

	for i := range normals {
		normals[i] = normalize(normals[i])
	}
	return normals
}

func (md *meshData) buffers() *MeshBuffers {
	triangles := make([]uint32, len(md.triangles))
	for i, ref := range md.triangles {
		triangles[i] = uint32(ref)
	}

	bounds := Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}
	for _, v := range md.vertices {
		updateBounds(&bounds, v)
	}

	return &MeshBuffers{
		Vertices:  md.vertices,
		UVs:       md.uvs,
		Normals:   md.calculateNormals(),
		Triangles: triangles,
		Bounds:    bounds,
	}
}

// sampleCoords returns the field coordinates sampled along one axis: the
// outer border cell, every stride-th interior cell, and the far border cell.
func sampleCoords(borderedSize, stride int) []int {
	coords := make([]int, 0, (borderedSize-3)/stride+3)
	coords = append(coords, 0)
	for c := 1; c <= borderedSize-2; c += stride {
		coords = append(coords, c)
	}
	return append(coords, borderedSize-1)
}

// BuildMesh converts a bordered height field into an LOD mesh. The outer ring
// of the field only contributes to edge normals so adjacent chunks light
// seamlessly.
func BuildMesh(field *HeightField, heightMultiplier float64, curve Curve, lod LOD) (*MeshBuffers, error) {
	if !lod.Valid() {
		return nil, fmt.Errorf("building mesh at lod %d: %w", lod, ErrInvalidLOD)
	}
	if !field.Square() {
		return nil, fmt.Errorf("field is %dx%d, want square: %w", field.Width, field.Height, ErrFieldShape)
	}
	if curve == nil {
		curve = LinearCurve{}
	}

	stride := lod.Stride()
	borderedSize := field.Width
	meshUnits := borderedSize - 3
	if meshUnits <= 0 || meshUnits%stride != 0 {
		return nil, fmt.Errorf("field size %d does not tile at stride %d: %w", borderedSize, stride, ErrFieldShape)
	}

	verticesPerLine := meshUnits/stride + 1
	coords := sampleCoords(borderedSize, stride)
	n := len(coords)

	// Pass 1: interior indices count up from 0, border indices down from -1.
	refs := make([]vertexRef, n*n)
	meshVertexIndex := vertexRef(0)
	borderVertexIndex := vertexRef(-1)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			if i == 0 || j == 0 || i == n-1 || j == n-1 {
				refs[j*n+i] = borderVertexIndex
				borderVertexIndex--
			} else {
				refs[j*n+i] = meshVertexIndex
				meshVertexIndex++
			}
		}
	}

	topLeftX := float32(meshUnits) / -2
	topLeftZ := float32(meshUnits) / 2

	md := newMeshData(verticesPerLine)

	// Pass 2: positions, UVs and triangles.
	for j, y := range coords {
		for i, x := range coords {
			ref := refs[j*n+i]

			percent := mgl32.Vec2{
				float32(x-1) / float32(meshUnits),
				float32(y-1) / float32(meshUnits),
			}
			height := curve.Evaluate(field.At(x, y)) * heightMultiplier
			pos := mgl32.Vec3{
				topLeftX + percent.X()*float32(meshUnits),
				float32(height),
				topLeftZ - percent.Y()*float32(meshUnits),
			}
			md.addVertex(pos, percent, ref)

			if i < n-1 && j < n-1 {
				a := ref
				b := refs[j*n+i+1]
				c := refs[(j+1)*n+i]
				d := refs[(j+1)*n+i+1]
				md.addTriangle(a, d, c)
				md.addTriangle(d, a, b)
			}
		}
	}

	return md.buffers(), nil
}

// FlatShaded returns a copy of m where every triangle owns its three vertices
// and all of them carry the face normal.
func (m *MeshBuffers) FlatShaded() *MeshBuffers {
	count := len(m.Triangles)
	out := &MeshBuffers{
		Vertices:  make([]mgl32.Vec3, count),
		UVs:       make([]mgl32.Vec2, count),
		Normals:   make([]mgl32.Vec3, count),
		Triangles: make([]uint32, count),
		Bounds:    m.Bounds,
	}

	for i := 0; i < count; i += 3 {
		a, b, c := m.Triangles[i], m.Triangles[i+1], m.Triangles[i+2]
		pa, pb, pc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
		n := normalize(pb.Sub(pa).Cross(pc.Sub(pa)))

		for k, idx := range [3]uint32{a, b, c} {
			out.Vertices[i+k] = m.Vertices[idx]
			out.UVs[i+k] = m.UVs[idx]
			out.Normals[i+k] = n
			out.Triangles[i+k] = uint32(i + k)
		}
	}
	return out
}

// normalize returns v scaled to unit length, or the zero vector for zero input.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

package terrain

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func flatField(size int, v float64) *HeightField {
	field := NewHeightField(size, size)
	for i := range field.Values {
		field.Values[i] = v
	}
	return field
}

func noiseChunk(chunkSize int, offset mgl64.Vec2) *HeightField {
	p := defaultParams()
	p.Normalize = NormalizeGlobal
	p.Offset = offset
	size := HeightFieldSize(chunkSize)
	return GenerateNoiseField(size, size, p)
}

func TestBuildMeshCounts(t *testing.T) {
	for _, chunkSize := range []int{48, 120, 240} {
		field := noiseChunk(chunkSize, mgl64.Vec2{})
		for lod := LOD(0); lod <= MaxLOD; lod++ {
			mesh, err := BuildMesh(field, 10, LinearCurve{}, lod)
			if err != nil {
				t.Fatalf("chunk %d lod %d: %v", chunkSize, lod, err)
			}

			vpl := VerticesPerLine(chunkSize, lod)
			if len(mesh.Vertices) != vpl*vpl {
				t.Errorf("chunk %d lod %d: %d vertices, want %d", chunkSize, lod, len(mesh.Vertices), vpl*vpl)
			}
			if len(mesh.UVs) != len(mesh.Vertices) || len(mesh.Normals) != len(mesh.Vertices) {
				t.Errorf("chunk %d lod %d: uv/normal buffers not aligned with vertices", chunkSize, lod)
			}
			wantTris := (vpl - 1) * (vpl - 1) * 2
			if mesh.TriangleCount() != wantTris {
				t.Errorf("chunk %d lod %d: %d triangles, want %d", chunkSize, lod, mesh.TriangleCount(), wantTris)
			}
		}
	}
}

func TestBuildMeshIndicesInRange(t *testing.T) {
	field := noiseChunk(72, mgl64.Vec2{})
	for lod := LOD(0); lod <= MaxLOD; lod++ {
		mesh, err := BuildMesh(field, 25, LinearCurve{}, lod)
		if err != nil {
			t.Fatalf("lod %d: %v", lod, err)
		}
		if len(mesh.Triangles)%3 != 0 {
			t.Fatalf("lod %d: triangle buffer length %d not a multiple of 3", lod, len(mesh.Triangles))
		}
		for i, idx := range mesh.Triangles {
			if int(idx) >= len(mesh.Vertices) {
				t.Fatalf("lod %d: index %d at %d out of range [0,%d)", lod, idx, i, len(mesh.Vertices))
			}
		}
	}
}

func TestBuildMeshNormalsUnitLength(t *testing.T) {
	field := noiseChunk(96, mgl64.Vec2{200, -100})
	for lod := LOD(0); lod <= MaxLOD; lod++ {
		mesh, err := BuildMesh(field, 40, LinearCurve{}, lod)
		if err != nil {
			t.Fatalf("lod %d: %v", lod, err)
		}
		for i, n := range mesh.Normals {
			l := n.Len()
			if l == 0 {
				t.Errorf("lod %d: vertex %d received no normal contributions", lod, i)
				continue
			}
			if math.Abs(float64(l)-1) > 1e-5 {
				t.Errorf("lod %d: normal %d has length %v", lod, i, l)
			}
			if n.Y() <= 0 {
				t.Errorf("lod %d: normal %d points down: %v", lod, i, n)
			}
		}
	}
}

func TestBuildMeshFlatFieldNormalsUp(t *testing.T) {
	field := flatField(HeightFieldSize(48), 0.3)
	up := mgl32.Vec3{0, 1, 0}
	for lod := LOD(0); lod <= MaxLOD; lod++ {
		mesh, err := BuildMesh(field, 10, LinearCurve{}, lod)
		if err != nil {
			t.Fatalf("lod %d: %v", lod, err)
		}
		for i, n := range mesh.Normals {
			if !n.ApproxEqualThreshold(up, 1e-5) {
				t.Fatalf("lod %d: normal %d = %v, want %v", lod, i, n, up)
			}
		}
		for i, v := range mesh.Vertices {
			if math.Abs(float64(v.Y())-3) > 1e-5 {
				t.Fatalf("lod %d: vertex %d height %v, want 3", lod, i, v.Y())
			}
		}
	}
}

func TestBuildMeshEdgeNormalsMatchNeighbour(t *testing.T) {
	const chunkSize = 48
	west := noiseChunk(chunkSize, mgl64.Vec2{})
	east := noiseChunk(chunkSize, mgl64.Vec2{chunkSize, 0})

	wm, err := BuildMesh(west, 30, LinearCurve{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	em, err := BuildMesh(east, 30, LinearCurve{}, 0)
	if err != nil {
		t.Fatal(err)
	}

	vpl := VerticesPerLine(chunkSize, 0)
	for row := 0; row < vpl; row++ {
		wn := wm.Normals[row*vpl+vpl-1]
		en := em.Normals[row*vpl]
		if !wn.ApproxEqualThreshold(en, 1e-4) {
			t.Fatalf("row %d: seam normals differ: west %v east %v", row, wn, en)
		}
	}
}

func TestBuildMeshLayout(t *testing.T) {
	field := flatField(HeightFieldSize(48), 0)
	for lod := LOD(0); lod <= MaxLOD; lod++ {
		mesh, err := BuildMesh(field, 1, nil, lod)
		if err != nil {
			t.Fatalf("lod %d: %v", lod, err)
		}

		// Every level covers the same footprint centred on the origin
		if mesh.Bounds.Min.X() != -24 || mesh.Bounds.Max.X() != 24 {
			t.Errorf("lod %d: x bounds [%v,%v], want [-24,24]", lod, mesh.Bounds.Min.X(), mesh.Bounds.Max.X())
		}
		if mesh.Bounds.Min.Z() != -24 || mesh.Bounds.Max.Z() != 24 {
			t.Errorf("lod %d: z bounds [%v,%v], want [-24,24]", lod, mesh.Bounds.Min.Z(), mesh.Bounds.Max.Z())
		}

		first, last := mesh.UVs[0], mesh.UVs[len(mesh.UVs)-1]
		if first != (mgl32.Vec2{0, 0}) || last != (mgl32.Vec2{1, 1}) {
			t.Errorf("lod %d: uv corners %v %v, want (0,0) (1,1)", lod, first, last)
		}
		if mesh.Vertices[0] != (mgl32.Vec3{-24, 0, 24}) {
			t.Errorf("lod %d: first vertex %v, want (-24,0,24)", lod, mesh.Vertices[0])
		}
	}
}

func TestBuildMeshAppliesCurve(t *testing.T) {
	field := noiseChunk(48, mgl64.Vec2{})
	half := CurveFunc(func(float64) float64 { return 0.5 })
	mesh, err := BuildMesh(field, 10, half, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range mesh.Vertices {
		if v.Y() != 5 {
			t.Fatalf("vertex %d height %v, want 5", i, v.Y())
		}
	}
}

func TestBuildMeshRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		field *HeightField
		lod   LOD
		want  error
	}{
		{"negative lod", flatField(51, 0), -1, ErrInvalidLOD},
		{"lod too high", flatField(51, 0), MaxLOD + 1, ErrInvalidLOD},
		{"not square", NewHeightField(51, 50), 0, ErrFieldShape},
		{"too small", flatField(3, 0), 0, ErrFieldShape},
		{"stride does not divide", flatField(52, 0), 4, ErrFieldShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := BuildMesh(tt.field, 1, LinearCurve{}, tt.lod)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if mesh != nil {
				t.Error("expected nil mesh on error")
			}
		})
	}
}

func TestEndToEndChunk(t *testing.T) {
	chunkSize, err := ChunkSize(0)
	if err != nil {
		t.Fatal(err)
	}
	size := HeightFieldSize(chunkSize)
	field := GenerateNoiseField(size, size, defaultParams())

	if field.Width != 51 || field.Height != 51 {
		t.Fatalf("field is %dx%d, want 51x51", field.Width, field.Height)
	}
	lo, hi := field.MinMax()
	if lo != 0 || hi != 1 {
		t.Errorf("local field range [%v,%v], want [0,1]", lo, hi)
	}

	mesh, err := BuildMesh(field, 20, LinearCurve{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Vertices) != 49*49 {
		t.Errorf("expected 49x49 vertices, got %d", len(mesh.Vertices))
	}
	if mesh.TriangleCount() != 4608 {
		t.Errorf("expected 4608 triangles, got %d", mesh.TriangleCount())
	}
}

func TestFlatShaded(t *testing.T) {
	field := noiseChunk(48, mgl64.Vec2{})
	mesh, err := BuildMesh(field, 15, LinearCurve{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	flat := mesh.FlatShaded()

	if len(flat.Vertices) != len(mesh.Triangles) {
		t.Fatalf("expected %d vertices, got %d", len(mesh.Triangles), len(flat.Vertices))
	}
	if flat.TriangleCount() != mesh.TriangleCount() {
		t.Fatalf("triangle count changed: %d -> %d", mesh.TriangleCount(), flat.TriangleCount())
	}
	for i := 0; i < len(flat.Triangles); i += 3 {
		n := flat.Normals[i]
		if flat.Normals[i+1] != n || flat.Normals[i+2] != n {
			t.Fatalf("triangle %d vertices do not share the face normal", i/3)
		}
		if math.Abs(float64(n.Len())-1) > 1e-5 {
			t.Fatalf("triangle %d face normal length %v", i/3, n.Len())
		}
		if flat.Vertices[i] != mesh.Vertices[mesh.Triangles[i]] {
			t.Fatalf("triangle %d vertex not copied from source", i/3)
		}
	}
}

func TestLODStride(t *testing.T) {
	want := map[LOD]int{0: 1, 1: 2, 2: 4, 3: 6, 4: 8}
	for lod, stride := range want {
		if got := lod.Stride(); got != stride {
			t.Errorf("LOD(%d).Stride() = %d, want %d", lod, got, stride)
		}
	}
	for _, size := range SupportedChunkSizes {
		for lod := LOD(0); lod <= MaxLOD; lod++ {
			if size%lod.Stride() != 0 {
				t.Errorf("chunk size %d not divisible by stride %d", size, lod.Stride())
			}
		}
	}
}

func TestChunkSize(t *testing.T) {
	if got, err := ChunkSize(8); err != nil || got != 240 {
		t.Errorf("ChunkSize(8) = %d, %v; want 240", got, err)
	}
	if _, err := ChunkSize(9); err == nil {
		t.Error("expected error for index 9")
	}
	if _, err := ChunkSize(-1); err == nil {
		t.Error("expected error for index -1")
	}
}

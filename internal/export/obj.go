package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/terrainforge/internal/terrain"
)

// WriteOBJ writes mesh as a Wavefront OBJ with positions, UVs and normals.
// OBJ indices are 1-based and every face references the same index for v/vt/vn.
func WriteOBJ(w io.Writer, name string, mesh *terrain.MeshBuffers) error {
	if len(mesh.Triangles)%3 != 0 {
		return fmt.Errorf("triangle list length %d is not a multiple of 3", len(mesh.Triangles))
	}
	hasUV := len(mesh.UVs) == len(mesh.Vertices)
	hasNormals := len(mesh.Normals) == len(mesh.Vertices)

	bw := bufio.NewWriter(w)
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X(), v.Y(), v.Z())
	}
	if hasUV {
		for _, uv := range mesh.UVs {
			fmt.Fprintf(bw, "vt %g %g\n", uv.X(), uv.Y())
		}
	}
	if hasNormals {
		for _, n := range mesh.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n.X(), n.Y(), n.Z())
		}
	}

	for t := 0; t < len(mesh.Triangles); t += 3 {
		bw.WriteString("f")
		for _, idx := range mesh.Triangles[t : t+3] {
			if int(idx) >= len(mesh.Vertices) {
				return fmt.Errorf("triangle %d references vertex %d of %d", t/3, idx, len(mesh.Vertices))
			}
			i := idx + 1
			switch {
			case hasUV && hasNormals:
				fmt.Fprintf(bw, " %d/%d/%d", i, i, i)
			case hasNormals:
				fmt.Fprintf(bw, " %d//%d", i, i)
			case hasUV:
				fmt.Fprintf(bw, " %d/%d", i, i)
			default:
				fmt.Fprintf(bw, " %d", i)
			}
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

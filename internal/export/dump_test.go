package export

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/terrainforge/internal/terrain"
)

func TestHeightFieldDump(t *testing.T) {
	field := terrain.GenerateNoiseField(51, 51, terrain.NoiseParams{
		Seed:        7,
		Scale:       40,
		Octaves:     3,
		Persistence: 0.5,
		Lacunarity:  2,
		Offset:      mgl64.Vec2{10, -20},
	})

	path := filepath.Join(t.TempDir(), "dumps", "chunk.tfh")
	if err := WriteHeightFieldFile(path, field); err != nil {
		t.Fatal(err)
	}

	got, err := ReadHeightFieldFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != field.Width || got.Height != field.Height {
		t.Fatalf("dimensions %dx%d, want %dx%d", got.Width, got.Height, field.Width, field.Height)
	}
	for i := range field.Values {
		if got.Values[i] != field.Values[i] {
			t.Fatalf("value %d = %v, want %v", i, got.Values[i], field.Values[i])
		}
	}
}

func compressed(t *testing.T, raw []byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestReadHeightFieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		wantErr error
	}{
		{"bad magic", []byte("NOPE\x01\x01\x00\x00\x00\x01\x00\x00\x00"), ErrInvalidDumpMagic},
		{"bad version", []byte("TFHF\x09\x01\x00\x00\x00\x01\x00\x00\x00"), ErrUnsupportedDumpVersion},
		{"short header", []byte("TFHF\x01\x01\x00"), ErrTruncatedDump},
		{"missing values", []byte("TFHF\x01\x02\x00\x00\x00\x01\x00\x00\x00\x00\x00"), ErrTruncatedDump},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeightField(compressed(t, tt.raw))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("zero dimensions", func(t *testing.T) {
		_, err := ReadHeightField(compressed(t, []byte("TFHF\x01\x00\x00\x00\x00\x01\x00\x00\x00")))
		if err == nil {
			t.Error("expected error for zero width")
		}
	})
}

func TestReadHeightFieldFileMissing(t *testing.T) {
	if _, err := ReadHeightFieldFile(filepath.Join(t.TempDir(), "missing.tfh")); err == nil {
		t.Error("expected error for missing file")
	}
}

package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/terrainforge/internal/terrain"
)

// Height dump format, zstd compressed:
//
//	magic   [4]byte "TFHF"
//	version uint8
//	width   uint32
//	height  uint32
//	values  [width*height]float64, row-major
//
// All integers and floats are little-endian.
const (
	dumpMagic   = "TFHF"
	dumpVersion = 1
	maxDumpEdge = 1 << 14
)

// Dump format errors.
var (
	ErrInvalidDumpMagic       = errors.New("invalid height dump magic: expected 'TFHF'")
	ErrUnsupportedDumpVersion = errors.New("unsupported height dump version")
	ErrTruncatedDump          = errors.New("truncated height dump")
)

// WriteHeightField writes field to w as a compressed height dump.
func WriteHeightField(w io.Writer, field *terrain.HeightField) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	if err := writeDumpBody(bw, field); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func writeDumpBody(w io.Writer, field *terrain.HeightField) error {
	if _, err := io.WriteString(w, dumpMagic); err != nil {
		return err
	}
	header := struct {
		Version uint8
		Width   uint32
		Height  uint32
	}{dumpVersion, uint32(field.Width), uint32(field.Height)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, field.Values)
}

// ReadHeightField reads a compressed height dump from r.
func ReadHeightField(r io.Reader) (*terrain.HeightField, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	magic := make([]byte, len(dumpMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("%w: reading magic: %w", ErrTruncatedDump, err)
	}
	if string(magic) != dumpMagic {
		return nil, ErrInvalidDumpMagic
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: reading version", ErrTruncatedDump)
	}
	if version != dumpVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDumpVersion, version)
	}

	var width, height uint32
	if err := binary.Read(br, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("%w: reading width", ErrTruncatedDump)
	}
	if err := binary.Read(br, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("%w: reading height", ErrTruncatedDump)
	}
	if width == 0 || height == 0 || width > maxDumpEdge || height > maxDumpEdge {
		return nil, fmt.Errorf("invalid height dump dimensions: %dx%d", width, height)
	}

	field := terrain.NewHeightField(int(width), int(height))
	if err := binary.Read(br, binary.LittleEndian, field.Values); err != nil {
		return nil, fmt.Errorf("%w: reading values: %w", ErrTruncatedDump, err)
	}
	return field, nil
}

// WriteHeightFieldFile writes a height dump to path, creating parent directories.
func WriteHeightFieldFile(path string, field *terrain.HeightField) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteHeightField(f, field); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadHeightFieldFile reads a height dump from path.
func ReadHeightFieldFile(path string) (*terrain.HeightField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading height dump: %w", err)
	}
	defer f.Close()
	return ReadHeightField(f)
}

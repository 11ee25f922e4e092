package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"
)

// Capture writes images into an output directory under timestamped names.
type Capture struct {
	outputDir string
	prefix    string
	format    Format
	now       func() time.Time
}

// NewCapture creates a capture writing prefix_<timestamp> files into outputDir.
func NewCapture(outputDir, prefix string, format Format) *Capture {
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
		now:       time.Now,
	}
}

// Filename returns the path the next capture with the given tag would use.
// An empty tag is omitted.
func (c *Capture) Filename(tag string) string {
	name := c.prefix
	if tag != "" {
		name += "_" + tag
	}
	name = fmt.Sprintf("%s_%s%s", name, c.now().Format("2006-01-02_15-04-05"), c.format.Ext())
	if c.outputDir != "" {
		name = filepath.Join(c.outputDir, name)
	}
	return name
}

// Save encodes img into a new file and returns its path.
func (c *Capture) Save(img image.Image, tag string) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := c.Filename(tag)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, img, c.format); err != nil {
		return "", fmt.Errorf("encoding %s: %w", c.format.Ext(), err)
	}
	return filename, file.Close()
}

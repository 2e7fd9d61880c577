package scratch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2sn/starfit-server/internal/common"
	"github.com/2sn/starfit-server/internal/domain/model"

	"github.com/gosimple/slug"
)

const plotDataPrefix = "plot_data_points"

// Dir is the scratch directory jobs write their temporary files to. Every file
// name carries the job start time.
type Dir struct {
	root string
}

// New creates root if needed.
func New(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, common.Errorf("failed to create scratch dir %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Root() string { return d.root }

// Path returns the absolute path of a scratch file.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.root, filepath.Base(name))
}

// WriteFile stores data under name and returns its path.
func (d *Dir) WriteFile(name string, data []byte) (string, error) {
	path := d.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", common.Errorf("failed to write scratch file %s: %w", path, err)
	}
	return path, nil
}

// ReadFile reads a scratch file, or any absolute path under the data dir.
func (d *Dir) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Cleanup removes every scratch file of the job started at startTime.
func (d *Dir) Cleanup(startTime string) error {
	matches, err := filepath.Glob(filepath.Join(d.root, "*"+startTime))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// UploadName is the scratch name of an uploaded star file: the slugged stem,
// the uploaded extension, then the start time.
func UploadName(filename, startTime string) string {
	ext := filepath.Ext(filename)
	stem := slug.Make(strings.TrimSuffix(filename, ext))
	if stem == "" {
		stem = "star"
	}
	return stem + strings.ToLower(ext) + startTime
}

// PlotDataName is the scratch name of the abundance plot points.
func PlotDataName(startTime string) string {
	return plotDataPrefix + startTime
}

// FullResultsName is the scratch name of the complete multi-star result table.
func FullResultsName(startTime string) string {
	return startTime
}

// WritePlotData stores the points of an abundance plot as text.
func (d *Dir) WritePlotData(startTime string, plot *model.Plot) (string, error) {
	return d.WriteFile(PlotDataName(startTime), FormatPlotData(plot))
}

// FormatPlotData lists the plot labels, a blank line, then one "Z value" row per point.
func FormatPlotData(plot *model.Plot) []byte {
	var buf bytes.Buffer
	for _, l := range plot.Labels {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	buf.WriteString("\n")
	buf.WriteString("Z      log(X/X_sun)\n")
	n := len(plot.Z)
	if len(plot.Abundance) < n {
		n = len(plot.Abundance)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "%-2d     %7.5f\n", plot.Z[i], plot.Abundance[i])
	}
	return buf.Bytes()
}

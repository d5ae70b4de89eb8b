package xfer

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"colorxfer/imgio"
	"colorxfer/lab"
	"colorxfer/palette"
	"colorxfer/stats"
)

func writeFlat(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	if err := imgio.Save(img, imgio.FormatFromPath(path), path); err != nil {
		t.Fatal(err)
	}
}

func TestTransferCmd(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.png")
	refPath := filepath.Join(dir, "ref.bmp")
	writeFlat(t, srcPath, 4, 3, color.RGBA{R: 255, A: 0xFF})
	writeFlat(t, refPath, 9, 9, color.RGBA{B: 255, A: 0xFF})

	cmd := &TransferCmd{
		Source:     srcPath,
		Reference:  refPath,
		Output:     filepath.Join(dir, "out.tiff"),
		Clusters:   1,
		Seed:       1,
		Iterations: 10,
		Clusterer:  "kmeans",
		Matcher:    "index",
		RefMaxSize: 4,
		Format:     "auto",
		LabelsDir:  filepath.Join(dir, "labels"),
		LabelStyle: "hue",
		PaletteOut: filepath.Join(dir, "clusters.pal"),
	}
	if err := cmd.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := cmd.Run(context.Background(), &Globals{Workers: 2}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, format, err := imgio.Load(cmd.Output)
	if err != nil {
		t.Fatal(err)
	}
	if format != "tiff" {
		t.Errorf("output format %q, want tiff", format)
	}
	if b := out.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("output is %dx%d, want 4x3", b.Dx(), b.Dy())
	}
	if r, g, b, _ := out.At(2, 1).RGBA(); r>>8 > 2 || g>>8 > 2 || b>>8 < 253 {
		t.Errorf("output pixel = %d,%d,%d, want blue", r>>8, g>>8, b>>8)
	}

	for _, name := range []string{"source-labels.png", "reference-labels.png"} {
		if _, err := os.Stat(filepath.Join(cmd.LabelsDir, name)); err != nil {
			t.Errorf("label map %s: %v", name, err)
		}
	}

	f, err := os.Open(cmd.PaletteOut)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	pals, err := palette.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(pals) != 2 || len(pals[0]) != 1 || len(pals[1]) != 1 {
		t.Fatalf("palettes = %v", pals)
	}
}

func TestTransferCmdValidate(t *testing.T) {
	tests := []struct {
		name string
		cmd  TransferCmd
	}{
		{"zero clusters", TransferCmd{Output: "x.png", Clusters: 0}},
		{"negative iterations", TransferCmd{Output: "x.png", Clusters: 2, Iterations: -1}},
		{"negative reference size", TransferCmd{Output: "x.png", Clusters: 2, RefMaxSize: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Validate(nil); err == nil {
				t.Error("Validate() accepted invalid flags")
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	st := []stats.ClusterStats{
		{Count: 3, Mean: lab.RGBToLab(255, 0, 0), StdDev: lab.Lab{0.1, 0.2, 0.3}},
		{Count: 1, Mean: lab.RGBToLab(0, 0, 255)},
		{Count: 0},
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, st); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Clusters:   3", "#ff0000", "#0000ff", "( 75.0%)", "#2  empty"} {
		if !strings.Contains(out, want) {
			t.Errorf("report lacks %q:\n%s", want, out)
		}
	}
}

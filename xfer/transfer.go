package xfer

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"colorxfer/cluster"
	"colorxfer/imgio"
	"colorxfer/lab"
	"colorxfer/palette"
	"colorxfer/transfer"
)

type TransferCmd struct {
	Source     string `arg:"" help:"Image to recolor" type:"existingfile"`
	Reference  string `arg:"" help:"Image whose colors are borrowed" type:"existingfile"`
	Output     string `help:"Destination of the recolored image" short:"o" required:""`
	Clusters   int    `help:"Color clusters per image" short:"k" default:"3"`
	Seed       uint64 `help:"Seed for k-means centroid selection" default:"1"`
	Iterations int    `help:"Maximum k-means passes" default:"10"`
	Clusterer  string `help:"Clustering backend" enum:"kmeans,muesli" default:"kmeans"`
	Matcher    string `help:"How source clusters are paired with reference clusters" enum:"index,greedy,optimal" default:"index"`
	RefMaxSize int    `help:"Downscale the reference so its longer side is at most this many pixels, 0 keeps it" default:"0"`
	Format     string `help:"Output format, auto derives it from the output extension" enum:"auto,png,jpeg,gif,bmp,tiff" default:"auto" group:"output"`
	LabelsDir  string `help:"Folder receiving the source and reference label maps as PNG" type:"path" group:"diagnostics"`
	LabelStyle string `help:"Label map rendering" enum:"gray,hue" default:"gray" group:"diagnostics"`
	PaletteOut string `help:"RIFF PAL file receiving source and reference cluster mean colors" type:"path" group:"diagnostics"`
}

func (c *TransferCmd) Validate(kctx *kong.Context) error {
	switch {
	case c.Clusters <= 0:
		return fmt.Errorf("invalid cluster count: %d", c.Clusters)
	case c.Iterations < 0:
		return fmt.Errorf("invalid iteration count: %d", c.Iterations)
	case c.RefMaxSize < 0:
		return fmt.Errorf("invalid reference size: %d", c.RefMaxSize)
	}

	output, err := filepath.Abs(c.Output)
	if err != nil {
		return fmt.Errorf("invalid output path %q: %w", c.Output, err)
	}
	c.Output = output

	return nil
}

func (c *TransferCmd) Run(ctx context.Context, g *Globals) error {
	logger := slog.Default().With("source", c.Source, "reference", c.Reference)

	var (
		src, ref  image.Image
		srcFormat string
		eg        errgroup.Group
	)
	eg.Go(func() error {
		var err error
		src, srcFormat, err = imgio.Load(c.Source)
		return err
	})
	eg.Go(func() error {
		img, _, err := imgio.Load(c.Reference)
		if err != nil {
			return err
		}
		ref = imgio.Downscale(logger, img, c.RefMaxSize)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	matcher, err := transfer.ParseMatcher(c.Matcher)
	if err != nil {
		return err
	}
	clusterer, err := cluster.Parse(c.Clusterer, c.Seed, c.Iterations)
	if err != nil {
		return err
	}

	eng, err := transfer.New(transfer.Options{
		K:          c.Clusters,
		Seed:       c.Seed,
		Iterations: c.Iterations,
		Workers:    g.Workers,
		Matcher:    matcher,
		Clusterer:  clusterer,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	res, err := eng.Transfer(ctx, lab.FromImage(src, lab.RGB), lab.FromImage(ref, lab.RGB))
	if err != nil {
		return fmt.Errorf("could not transfer colors: %w", err)
	}

	format := imgio.OutputFormat(c.Format, c.Output, srcFormat)
	if err := imgio.Save(res.Image.RGBA(), format, c.Output); err != nil {
		return err
	}
	logger.Info("saved", "output", c.Output, "format", format, "clamped", res.Clamped,
		"adjustments", len(res.Adjustments))

	if c.LabelsDir != "" {
		if err := c.saveLabels(res); err != nil {
			return err
		}
	}
	if c.PaletteOut != "" {
		if err := c.savePalette(res); err != nil {
			return err
		}
	}
	return nil
}

func (c *TransferCmd) saveLabels(res *transfer.Result) error {
	if err := os.MkdirAll(c.LabelsDir, 0o755); err != nil {
		return fmt.Errorf("unable to create labels folder %q: %w", c.LabelsDir, err)
	}

	for name, labels := range map[string]*cluster.LabelMap{
		"source":    res.SourceLabels,
		"reference": res.ReferenceLabels,
	} {
		var img image.Image = labels.Gray()
		if c.LabelStyle == "hue" {
			img = labels.Colorize()
		}
		if err := imgio.Save(img, "png", filepath.Join(c.LabelsDir, name+"-labels.png")); err != nil {
			return err
		}
	}
	return nil
}

func (c *TransferCmd) savePalette(res *transfer.Result) (err error) {
	f, err := os.Create(c.PaletteOut)
	if err != nil {
		return fmt.Errorf("could not create palette file %q: %w", c.PaletteOut, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close palette file %q: %w", c.PaletteOut, closeErr)
		}
	}()

	return palette.Encode(f, palette.FromStats(res.SourceStats), palette.FromStats(res.ReferenceStats))
}

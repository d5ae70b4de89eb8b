package xfer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lucasb-eyer/go-colorful"

	"colorxfer/cluster"
	"colorxfer/imgio"
	"colorxfer/lab"
	"colorxfer/palette"
	"colorxfer/stats"
)

type InspectCmd struct {
	Image      string `arg:"" help:"Image to analyze" type:"existingfile"`
	Clusters   int    `help:"Color clusters" short:"k" default:"3"`
	Seed       uint64 `help:"Seed for k-means centroid selection" default:"1"`
	Iterations int    `help:"Maximum k-means passes" default:"10"`
	Clusterer  string `help:"Clustering backend" enum:"kmeans,muesli" default:"kmeans"`
}

func (c *InspectCmd) Validate(kctx *kong.Context) error {
	if c.Clusters <= 0 {
		return fmt.Errorf("invalid cluster count: %d", c.Clusters)
	}
	return nil
}

func (c *InspectCmd) Run(ctx context.Context, g *Globals) error {
	img, format, err := imgio.Load(c.Image)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := lab.FromImage(img, lab.RGB)
	conv, _ := lab.NewConverter(lab.RGB)
	buf, err := conv.Forward(m, g.Workers)
	if err != nil {
		return err
	}

	clusterer, err := cluster.Parse(c.Clusterer, c.Seed, c.Iterations)
	if err != nil {
		return err
	}
	labels, err := clusterer.Cluster(m, c.Clusters)
	if err != nil {
		return fmt.Errorf("could not cluster %q: %w", c.Image, err)
	}

	st, err := stats.Compute(buf, labels)
	if err != nil {
		return err
	}

	fmt.Printf("File:       %s\n", c.Image)
	fmt.Printf("Format:     %s\n", format)
	fmt.Printf("Dimensions: %d x %d\n", m.Cols, m.Rows)
	return writeReport(os.Stdout, st)
}

func writeReport(w io.Writer, st []stats.ClusterStats) error {
	total := 0
	for _, s := range st {
		total += s.Count
	}

	if _, err := fmt.Fprintf(w, "Clusters:   %d\n", len(st)); err != nil {
		return err
	}
	pal := palette.FromStats(st)
	for i, s := range st {
		var err error
		if s.Empty() {
			_, err = fmt.Fprintf(w, "  #%d  empty\n", i)
		} else {
			hex := "-"
			if c, ok := colorful.MakeColor(pal[i]); ok {
				hex = c.Hex()
			}
			_, err = fmt.Fprintf(w, "  #%d  %7d px (%5.1f%%)  %s  l=%.4f±%.4f  alpha=%.4f±%.4f  beta=%.4f±%.4f\n",
				i, s.Count, 100*float64(s.Count)/float64(max(total, 1)), hex,
				s.Mean.L(), s.StdDev.L(), s.Mean.Alpha(), s.StdDev.Alpha(), s.Mean.Beta(), s.StdDev.Beta())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

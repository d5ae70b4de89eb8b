// Package transfer recolors a source image so that, cluster by cluster, its
// lαβ distribution matches the one of a reference image.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"colorxfer/cluster"
	"colorxfer/lab"
	"colorxfer/stats"
)

const (
	DefaultK       = 3
	DefaultEpsilon = 1e-6
)

type Options struct {
	K          int     // clusters per image
	Seed       uint64  // k-means seed, used when Clusterer is nil
	Iterations int     // k-means passes, used when Clusterer is nil
	Epsilon    float64 // smallest source stddev still used as a divisor
	Workers    int     // goroutines for per-pixel loops, GOMAXPROCS if <= 0
	Matcher    Matcher
	Clusterer  cluster.Clusterer
	Logger     *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		K:          DefaultK,
		Iterations: cluster.DefaultIterations,
		Epsilon:    DefaultEpsilon,
		Matcher:    IndexMatcher{},
	}
}

type Engine struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) (*Engine, error) {
	if opts.K <= 0 {
		return nil, fmt.Errorf("%w: %w: %d", ErrConfiguration, cluster.ErrInvalidK, opts.K)
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}
	if opts.Matcher == nil {
		opts.Matcher = IndexMatcher{}
	}
	if opts.Clusterer == nil {
		opts.Clusterer = cluster.KMeans{Iterations: opts.Iterations, Seed: opts.Seed}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{opts: opts, logger: logger}, nil
}

// Result carries the recolored image along with everything computed on the
// way. Only Image is needed; the rest is diagnostics.
type Result struct {
	Image           *lab.Image
	SourceLabels    *cluster.LabelMap
	ReferenceLabels *cluster.LabelMap
	SourceStats     []stats.ClusterStats
	ReferenceStats  []stats.ClusterStats
	Correspondences []Correspondence
	Adjustments     []Adjustment
	Clamped         int // output pixels with a channel clamped into [0, 255]
}

// side is the per-image half of a run: its lαβ buffer, labels and stats.
type side struct {
	buf    *lab.Buffer
	labels *cluster.LabelMap
	stats  []stats.ClusterStats
}

func (e *Engine) analyze(name string, img *lab.Image) (side, error) {
	logger := e.logger.With("image", name)

	conv, err := lab.NewConverter(img.Order)
	if err != nil {
		return side{}, fmt.Errorf("%w: %s: %w", ErrConfiguration, name, err)
	}

	// 1. Convert to lαβ
	start := time.Now()
	buf, err := conv.Forward(img, e.opts.Workers)
	if err != nil {
		return side{}, fmt.Errorf("%w: %s: %w", ErrConfiguration, name, err)
	}
	logger.Debug("converted", "rows", img.Rows, "cols", img.Cols, "elapsed", time.Since(start))

	// 2. Cluster raw pixels
	start = time.Now()
	labels, err := e.opts.Clusterer.Cluster(img, e.opts.K)
	if err != nil {
		return side{}, fmt.Errorf("could not cluster %s: %w", name, err)
	}
	logger.Debug("clustered", "counts", labels.Counts(), "elapsed", time.Since(start))

	// 3. Per-cluster statistics
	st, err := stats.Compute(buf, labels)
	if err != nil {
		return side{}, fmt.Errorf("%w: %s: %w", ErrConfiguration, name, err)
	}
	for i, s := range st {
		logger.Debug("cluster stats", "cluster", i, "stats", s)
	}

	return side{buf: buf, labels: labels, stats: st}, nil
}

func validate(name string, img *lab.Image) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, name, err)
	}
	return nil
}

// Transfer recolors src after ref. The output has src's dimensions and
// channel order; ref may have any size. ctx is only checked between
// pipeline stages.
func (e *Engine) Transfer(ctx context.Context, src, ref *lab.Image) (*Result, error) {
	if err := validate("source", src); err != nil {
		return nil, err
	}
	if err := validate("reference", ref); err != nil {
		return nil, err
	}

	start := time.Now()
	s, err := e.analyze("source", src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := e.analyze("reference", ref)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 4. Pair clusters and derive the affine rules
	match := e.opts.Matcher.Match(s.stats, r.stats)
	rules, adj, err := BuildCorrespondences(s.stats, r.stats, match, e.opts.Epsilon)
	if err != nil {
		return nil, err
	}
	for _, a := range adj {
		e.logger.Debug("adjusted transfer rule", "adjustment", a)
	}
	if len(adj) > 0 {
		e.logger.Warn("transfer rules adjusted", "count", len(adj))
	}

	// 5. Recolor the source buffer in place
	if err := Recolor(s.buf, s.labels, rules, e.opts.Workers); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 6. Back to 8-bit in the source's layout
	conv, _ := lab.NewConverter(src.Order)
	out, clamped, err := conv.Inverse(s.buf, e.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if clamped > 0 {
		e.logger.Debug("clamped output pixels", "count", clamped)
	}
	e.logger.Info("transfer done", "k", e.opts.K, "rows", out.Rows, "cols", out.Cols,
		"elapsed", time.Since(start))

	return &Result{
		Image:           out,
		SourceLabels:    s.labels,
		ReferenceLabels: r.labels,
		SourceStats:     s.stats,
		ReferenceStats:  r.stats,
		Correspondences: rules,
		Adjustments:     adj,
		Clamped:         clamped,
	}, nil
}

// Transfer runs a default engine with k clusters and returns only the image.
func Transfer(src, ref *lab.Image, k int) (*lab.Image, error) {
	opts := DefaultOptions()
	opts.K = k
	e, err := New(opts)
	if err != nil {
		return nil, err
	}
	res, err := e.Transfer(context.Background(), src, ref)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

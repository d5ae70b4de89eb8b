package transfer

import (
	"errors"
	"log/slog"

	"colorxfer/lab"
)

// ErrConfiguration wraps every fatal input problem. A run that fails with it
// produces no output.
var ErrConfiguration = errors.New("invalid transfer configuration")

// AdjustmentKind names a recoverable numeric condition handled in place.
type AdjustmentKind int

const (
	// DegenerateCluster: the source or matched reference cluster has no
	// pixels. The cluster is left unchanged (scale 1, no shift).
	DegenerateCluster AdjustmentKind = iota
	// NearZeroVariance: the source standard deviation of a channel is below
	// epsilon. That channel's scale is forced to 1.
	NearZeroVariance
)

func (k AdjustmentKind) String() string {
	switch k {
	case DegenerateCluster:
		return "degenerate-cluster"
	case NearZeroVariance:
		return "near-zero-variance"
	}
	return "unknown"
}

// Adjustment records one substitution made while deriving the transfer rule.
type Adjustment struct {
	Kind    AdjustmentKind
	Cluster int         // source cluster index
	Channel lab.Channel // only meaningful for NearZeroVariance
}

func (a Adjustment) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", a.Kind.String()),
		slog.Int("cluster", a.Cluster),
	}
	if a.Kind == NearZeroVariance {
		attrs = append(attrs, slog.String("channel", a.Channel.String()))
	}
	return slog.GroupValue(attrs...)
}

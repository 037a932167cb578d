package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics of one species over a window of
// walk steps.
type WindowStats struct {
	WindowStartStep int    `csv:"-"`
	WindowEndStep   int    `csv:"window_end"`
	Species         string `csv:"species"`

	// Walkers of the species at window end
	Count int `csv:"count"`

	// Hop attempts during window
	Accepted   int     `csv:"accepted"`
	Rejected   int     `csv:"rejected"`
	AcceptRate float64 `csv:"accept_rate"`

	// Displacement from placement, sampled at window end
	MSD     float64 `csv:"msd"`
	DispP50 float64 `csv:"disp_p50"`
	DispP90 float64 `csv:"disp_p90"`
}

// Percentile returns the p-th quantile of a sorted slice, interpolating
// the empirical CDF linearly. p is clamped to [0, 1]; an empty slice gives 0.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(math.Max(0, math.Min(1, p)), stat.LinInterp, sorted, nil)
}

// ComputeDisplacementStats returns the mean squared displacement and the
// median and 90th percentile of the displacement distances.
func ComputeDisplacementStats(distances []float64) (msd, p50, p90 float64) {
	n := len(distances)
	if n == 0 {
		return 0, 0, 0
	}

	squares := make([]float64, n)
	for i, d := range distances {
		squares[i] = d * d
	}
	msd = stat.Mean(squares, nil)

	sorted := make([]float64, n)
	copy(sorted, distances)
	sort.Float64s(sorted)

	return msd, Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartStep),
		slog.Int("window_end", s.WindowEndStep),
		slog.String("species", s.Species),
		slog.Int("count", s.Count),
		slog.Int("accepted", s.Accepted),
		slog.Int("rejected", s.Rejected),
		slog.Float64("accept_rate", s.AcceptRate),
		slog.Float64("msd", s.MSD),
		slog.Float64("disp_p50", s.DispP50),
		slog.Float64("disp_p90", s.DispP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"species", s.Species,
		"count", s.Count,
		"accepted", s.Accepted,
		"rejected", s.Rejected,
		"accept_rate", s.AcceptRate,
		"msd", s.MSD,
		"disp_p50", s.DispP50,
		"disp_p90", s.DispP90,
	)
}

package telemetry

import (
	"log/slog"
	"time"
)

// PerfCollector accumulates the wall-clock cost of a walk between two
// flushes: hop attempts against diffusion time, and voxels audited against
// audit time.
type PerfCollector struct {
	steps     int
	hops      int
	diffusion time.Duration

	audits  int
	voxels  int
	audited time.Duration
}

// NewPerfCollector creates an empty collector.
func NewPerfCollector() *PerfCollector {
	return &PerfCollector{}
}

// RecordDiffusion adds one diffusion step that made hops attempts in d.
func (p *PerfCollector) RecordDiffusion(hops int, d time.Duration) {
	p.steps++
	p.hops += hops
	p.diffusion += d
}

// RecordAudit adds one invariant audit over voxels coordinates taking d.
func (p *PerfCollector) RecordAudit(voxels int, d time.Duration) {
	p.audits++
	p.voxels += voxels
	p.audited += d
}

// Flush returns the costs of the window and starts a new one.
func (p *PerfCollector) Flush() PerfStats {
	s := PerfStats{
		Steps:         p.steps,
		HopAttempts:   p.hops,
		DiffusionTime: p.diffusion,
		Audits:        p.audits,
		AuditTime:     p.audited,
	}
	if p.diffusion > 0 {
		s.HopsPerSecond = float64(p.hops) / p.diffusion.Seconds()
	}
	if p.voxels > 0 {
		s.AuditNsPerVoxel = float64(p.audited.Nanoseconds()) / float64(p.voxels)
	}
	if total := p.diffusion + p.audited; total > 0 {
		s.AuditShare = float64(p.audited) / float64(total)
	}
	*p = PerfCollector{}
	return s
}

// PerfStats is the cost of one telemetry window.
type PerfStats struct {
	Steps         int
	HopAttempts   int
	DiffusionTime time.Duration
	Audits        int
	AuditTime     time.Duration

	HopsPerSecond   float64
	AuditNsPerVoxel float64
	AuditShare      float64 // audit time over diffusion plus audit time
}

// LogStats logs the window costs.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("steps", s.Steps),
		slog.Int("hop_attempts", s.HopAttempts),
		slog.Int64("diffusion_us", s.DiffusionTime.Microseconds()),
		slog.Float64("hops_per_sec", s.HopsPerSecond),
		slog.Int("audits", s.Audits),
		slog.Float64("audit_ns_per_voxel", s.AuditNsPerVoxel),
		slog.Float64("audit_share", s.AuditShare),
	)
}

// PerfStatsCSV is the perf.csv row of one window.
type PerfStatsCSV struct {
	WindowEnd       int     `csv:"window_end"`
	Steps           int     `csv:"steps"`
	HopAttempts     int     `csv:"hop_attempts"`
	DiffusionUS     int64   `csv:"diffusion_us"`
	HopsPerSec      float64 `csv:"hops_per_sec"`
	Audits          int     `csv:"audits"`
	AuditUS         int64   `csv:"audit_us"`
	AuditNsPerVoxel float64 `csv:"audit_ns_per_voxel"`
	AuditShare      float64 `csv:"audit_share"`
}

// ToCSV flattens s into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		Steps:           s.Steps,
		HopAttempts:     s.HopAttempts,
		DiffusionUS:     s.DiffusionTime.Microseconds(),
		HopsPerSec:      s.HopsPerSecond,
		Audits:          s.Audits,
		AuditUS:         s.AuditTime.Microseconds(),
		AuditNsPerVoxel: s.AuditNsPerVoxel,
		AuditShare:      s.AuditShare,
	}
}

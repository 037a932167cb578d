package game

import (
	"github.com/pthm-cable/offlattice/telemetry"
)

// flushTelemetry closes the stats window and writes an occupancy snapshot.
func (g *Game) flushTelemetry() {
	stats := g.collector.Flush(g.tick, g.diffusion.Displacements())
	perfStats := g.perfCollector.Flush()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		for _, s := range stats {
			s.LogStats()
		}
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		g.logger.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, g.tick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}
	g.writeOccupancy()
}

// writeOccupancy records every coordinate and pool at the current tick.
func (g *Game) writeOccupancy() {
	if g.outputManager == nil && g.snapshotDir == "" {
		return
	}

	records, err := telemetry.CaptureOccupancy(g.tick, g.space)
	if err != nil {
		g.logger.Error("failed to capture occupancy", "error", err)
		return
	}
	if err := g.outputManager.WriteOccupancy(records); err != nil {
		g.logger.Error("failed to write occupancy", "error", err)
	}
	if err := g.outputManager.WritePools(telemetry.CapturePools(g.tick, g.space)); err != nil {
		g.logger.Error("failed to write pools", "error", err)
	}

	if g.snapshotDir == "" {
		return
	}
	snapshot := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		RNGSeed: g.seed,
		Step:    g.tick,
		Voxels:  records,
	}
	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		g.logger.Error("failed to save snapshot", "error", err)
		return
	}
	g.logger.Debug("snapshot saved", "path", path, "step", g.tick)
}

package telemetry

import "sort"

// Collector accumulates hop outcomes within step windows and produces
// WindowStats per species.
type Collector struct {
	windowSteps int

	// Current window tracking
	windowStartStep int

	accepted map[string]int
	rejected map[string]int
}

// NewCollector creates a new stats collector flushing every windowSteps
// walk steps.
func NewCollector(windowSteps int) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{
		windowSteps: windowSteps,
		accepted:    make(map[string]int),
		rejected:    make(map[string]int),
	}
}

// RecordHop records the outcome of one hop attempt.
func (c *Collector) RecordHop(species string, accepted bool) {
	if accepted {
		c.accepted[species]++
	} else {
		c.rejected[species]++
	}
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int) bool {
	return currentStep-c.windowStartStep >= c.windowSteps
}

// Flush produces one WindowStats per species and resets counters for the
// next window. distances holds, per species, the displacement of every
// walker from its placement; species without walkers still report their
// hop counts. Results are ordered by species name.
func (c *Collector) Flush(currentStep int, distances map[string][]float64) []WindowStats {
	names := make(map[string]bool)
	for name := range distances {
		names[name] = true
	}
	for name := range c.accepted {
		names[name] = true
	}
	for name := range c.rejected {
		names[name] = true
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	out := make([]WindowStats, 0, len(sorted))
	for _, name := range sorted {
		accepted, rejected := c.accepted[name], c.rejected[name]
		var rate float64
		if total := accepted + rejected; total > 0 {
			rate = float64(accepted) / float64(total)
		}
		msd, p50, p90 := ComputeDisplacementStats(distances[name])
		out = append(out, WindowStats{
			WindowStartStep: c.windowStartStep,
			WindowEndStep:   currentStep,
			Species:         name,
			Count:           len(distances[name]),
			Accepted:        accepted,
			Rejected:        rejected,
			AcceptRate:      rate,
			MSD:             msd,
			DispP50:         p50,
			DispP90:         p90,
		})
	}

	// Reset for next window
	c.windowStartStep = currentStep
	clear(c.accepted)
	clear(c.rejected)

	return out
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() int {
	return c.windowSteps
}

package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/offlattice/config"
)

// csvFile appends records to a CSV file, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir string

	stats     *csvFile
	perf      *csvFile
	occupancy *csvFile
	pools     *csvFile
}

var outputFiles = []string{"stats.csv", "perf.csv", "occupancy.csv", "pools.csv"}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	targets := []**csvFile{&om.stats, &om.perf, &om.occupancy, &om.pools}
	for i, name := range outputFiles {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", name, err)
		}
		*targets[i] = &csvFile{f: f}
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats writes window stats records to stats.csv.
func (om *OutputManager) WriteStats(stats []WindowStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}
	if err := om.stats.write(stats); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteOccupancy writes an occupancy snapshot to occupancy.csv.
func (om *OutputManager) WriteOccupancy(records []OccupancyRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.occupancy.write(records); err != nil {
		return fmt.Errorf("writing occupancy: %w", err)
	}
	return nil
}

// WritePools writes pool summaries to pools.csv.
func (om *OutputManager) WritePools(records []PoolRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.pools.write(records); err != nil {
		return fmt.Errorf("writing pools: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.stats, om.perf, om.occupancy, om.pools} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

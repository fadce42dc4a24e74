// internal/metrics/aggregator.go

// Package metrics keeps running statistics about model calls and persists
// them between sessions.
package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mwiater/docqa/internal/logging"
	"github.com/mwiater/docqa/internal/util"
)

// FileName is the metrics file written under the temp root.
const FileName = "model_metrics.json"

// Aggregator collects and manages performance metrics for models.
type Aggregator struct {
	mutex    sync.Mutex
	metrics  map[string]*ModelMetrics
	filePath string
}

// NewAggregator creates an aggregator backed by filePath and loads any
// metrics already stored there. An empty filePath keeps metrics in memory.
func NewAggregator(filePath string) (*Aggregator, error) {
	agg := &Aggregator{
		metrics:  make(map[string]*ModelMetrics),
		filePath: filePath,
	}
	if err := agg.load(); err != nil {
		return nil, err
	}
	return agg, nil
}

// load reads metrics from the JSON file into memory.
func (a *Aggregator) load() error {
	if a.filePath == "" {
		return nil
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()

	data, err := os.ReadFile(a.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read metrics: %w", err)
	}

	var metricsSlice []*ModelMetrics
	if err := json.Unmarshal(data, &metricsSlice); err != nil {
		return fmt.Errorf("parse metrics %s: %w", a.filePath, err)
	}
	for _, m := range metricsSlice {
		a.metrics[m.ModelName] = m
	}
	return nil
}

// Save writes the current metrics to the backing file.
func (a *Aggregator) Save() error {
	if a.filePath == "" {
		return nil
	}
	logging.LogEvent("[METRICS] Saving metrics to %s", a.filePath)
	data, err := json.MarshalIndent(a.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(a.filePath), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	return util.WriteFile(a.filePath, data)
}

// Record updates the metrics for the sample's model.
func (a *Aggregator) Record(s Sample) {
	logging.LogEvent("[METRICS] Record called for model %s", s.Model)
	a.mutex.Lock()
	defer a.mutex.Unlock()

	modelMetrics, exists := a.metrics[s.Model]
	if !exists {
		modelMetrics = &ModelMetrics{ModelName: s.Model}
		a.metrics[s.Model] = modelMetrics
	}
	modelMetrics.LastUpdatedUTC = time.Now().UTC()

	updateStats(&modelMetrics.OverallStats, s)

	bucket := getBucket(s.PromptBytes)
	for i := range modelMetrics.PerformanceBuckets {
		if modelMetrics.PerformanceBuckets[i].Bucket == bucket {
			updateStats(&modelMetrics.PerformanceBuckets[i].Stats, s)
			return
		}
	}
	newBucket := PerformanceBucket{Dimension: "prompt_bytes", Bucket: bucket}
	updateStats(&newBucket.Stats, s)
	modelMetrics.PerformanceBuckets = append(modelMetrics.PerformanceBuckets, newBucket)
}

// Snapshot returns a copy of the metrics sorted by model name.
func (a *Aggregator) Snapshot() []ModelMetrics {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	out := make([]ModelMetrics, 0, len(a.metrics))
	for _, m := range a.metrics {
		cp := *m
		cp.PerformanceBuckets = append([]PerformanceBucket(nil), m.PerformanceBuckets...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelName < out[j].ModelName })
	return out
}

// Summary describes the overall stats of one model on a single line.
func (a *Aggregator) Summary(model string) string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	m, ok := a.metrics[model]
	if !ok || m.OverallStats.TotalRequests == 0 {
		return fmt.Sprintf("%s: no requests", model)
	}
	st := m.OverallStats
	return fmt.Sprintf("%s: %d %s, %d failed, mean %.0fms (min %.0fms, max %.0fms, stddev %.0fms)",
		model, st.TotalRequests, util.Plural(int(st.TotalRequests), "request", "requests"), st.Failures,
		st.DurationMillis.Mean, st.DurationMillis.Min, st.DurationMillis.Max, st.DurationMillis.StdDev())
}

// updateStats updates the running statistics with one sample.
func updateStats(stats *RunningAggregatedStats, s Sample) {
	stats.TotalRequests++
	if s.Failed {
		stats.Failures++
	}
	updateRunningStat(&stats.DurationMillis, float64(s.Duration.Milliseconds()))
	updateRunningStat(&stats.PromptBytes, float64(s.PromptBytes))
	updateRunningStat(&stats.AnswerBytes, float64(s.AnswerBytes))
}

// updateRunningStat updates a single running statistic using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// StdDev returns the sample standard deviation, or zero below two values.
func (rs RunningStat) StdDev() float64 {
	if rs.Count < 2 {
		return 0
	}
	return math.Sqrt(rs.M2 / float64(rs.Count-1))
}

// getBucket determines the performance bucket for a prompt size in bytes.
func getBucket(promptBytes int) string {
	switch {
	case promptBytes <= 4096:
		return "0-4KiB"
	case promptBytes <= 32768:
		return "4-32KiB"
	case promptBytes <= 262144:
		return "32-256KiB"
	default:
		return "256KiB+"
	}
}

// internal/metrics/types.go
package metrics

import "time"

// ModelMetrics is the aggregated query data for one provider/model pair.
type ModelMetrics struct {
	ModelName          string                 `json:"model_name"`
	LastUpdatedUTC     time.Time              `json:"last_updated_utc"`
	OverallStats       RunningAggregatedStats `json:"overall_stats"`
	PerformanceBuckets []PerformanceBucket    `json:"performance_buckets"`
}

// PerformanceBucket holds aggregated stats for one prompt size range.
type PerformanceBucket struct {
	Dimension string                 `json:"dimension"`
	Bucket    string                 `json:"bucket"`
	Stats     RunningAggregatedStats `json:"stats"`
}

// RunningAggregatedStats stores the running statistical values for a set of metrics.
// It uses Welford's online algorithm for calculating mean and standard deviation.
type RunningAggregatedStats struct {
	TotalRequests int64 `json:"total_requests"`
	Failures      int64 `json:"failures"`

	DurationMillis RunningStat `json:"duration_ms"`
	PromptBytes    RunningStat `json:"prompt_bytes"`
	AnswerBytes    RunningStat `json:"answer_bytes"`
}

// RunningStat holds the necessary values for online calculation of mean, variance, and stddev.
type RunningStat struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"m2"` // Sum of squares of differences from the current mean
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Sample is one model call.
type Sample struct {
	Model       string
	Duration    time.Duration
	PromptBytes int
	AnswerBytes int
	Failed      bool
}

package models

import "time"

// SystemMetrics is an aggregated snapshot of runtime counters for the
// dashboard endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	LessonsPlaced            uint64    `json:"lessons_placed"`
	SlotsRejected            uint64    `json:"slots_rejected"`
	PaymentsApproved         uint64    `json:"payments_approved"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

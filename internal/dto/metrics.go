package dto

import "time"

// MetricsSnapshot is a JSON summary of the Prometheus counters.
type MetricsSnapshot struct {
	CacheHitRatio            float64          `json:"cacheHitRatio"`
	CacheHits                uint64           `json:"cacheHits"`
	CacheMisses              uint64           `json:"cacheMisses"`
	RequestsTotal            uint64           `json:"requestsTotal"`
	AverageRequestDurationMs float64          `json:"averageRequestDurationMs"`
	StoreOperations          uint64           `json:"storeOperations"`
	AverageStoreDurationMs   float64          `json:"averageStoreDurationMs"`
	Mutations                map[string]int64 `json:"mutations"`
	Goroutines               int              `json:"goroutines"`
	GeneratedAt              time.Time        `json:"generatedAt"`
}

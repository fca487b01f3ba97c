package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	ResolveRequestsTotal   metric.Int64Counter
	ResolveDurationSeconds metric.Float64Histogram
	ProviderFetchesTotal   metric.Int64Counter
	ProviderFailuresTotal  metric.Int64Counter
	CacheHitsTotal         metric.Int64Counter
	CacheMissesTotal       metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-place-lookup")
		var err error
		m := &AppMetrics{}

		m.ResolveRequestsTotal, err = meter.Int64Counter(
			"resolve_requests_total",
			metric.WithDescription("Total number of place resolutions completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create resolve_requests_total: %v", err)
		}

		m.ResolveDurationSeconds, err = meter.Float64Histogram(
			"resolve_duration_seconds",
			metric.WithDescription("Duration of place resolutions in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create resolve_duration_seconds: %v", err)
		}

		m.ProviderFetchesTotal, err = meter.Int64Counter(
			"provider_fetches_total",
			metric.WithDescription("Total number of live upstream provider fetches"),
			metric.WithUnit("{fetch}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_fetches_total: %v", err)
		}

		m.ProviderFailuresTotal, err = meter.Int64Counter(
			"provider_failures_total",
			metric.WithDescription("Total number of provider fetches that returned no usable data"),
			metric.WithUnit("{failure}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_failures_total: %v", err)
		}

		m.CacheHitsTotal, err = meter.Int64Counter(
			"cache_hits_total",
			metric.WithDescription("Total number of proximity cache hits"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_hits_total: %v", err)
		}

		m.CacheMissesTotal, err = meter.Int64Counter(
			"cache_misses_total",
			metric.WithDescription("Total number of proximity cache misses"),
			metric.WithUnit("{miss}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_misses_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Initialized reports whether InitAppMetrics has run; instrumented code
// paths skip recording when it hasn't (unit tests, mostly).
func Initialized() bool {
	return appMetrics != nil
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		// This indicates a programming error - InitAppMetrics must be called at startup.
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

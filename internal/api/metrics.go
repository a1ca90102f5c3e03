package api

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"strreg/internal/version"
)

// MetricsCollector collects request metrics and renders them in the
// Prometheus text exposition format
type MetricsCollector struct {
	requestsTotal   *Counter
	requestDuration *Histogram
	recordsTotal    *Gauge
	goroutines      *Gauge

	startTime time.Time
}

// Counter is a monotonically increasing counter
type Counter struct {
	name   string
	help   string
	labels []string
	values sync.Map // map[string]*uint64
}

// Histogram tracks distributions of values
type Histogram struct {
	name    string
	help    string
	labels  []string
	buckets []float64
	values  sync.Map // map[string]*histogramValue
}

type histogramValue struct {
	mu      sync.Mutex
	sum     float64
	count   uint64
	buckets []uint64
}

// Gauge is a metric that can go up and down
type Gauge struct {
	name   string
	help   string
	labels []string
	values sync.Map // map[string]*atomic.Uint64 holding float64 bits
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: &Counter{
			name:   "strreg_http_requests_total",
			help:   "Total number of HTTP requests",
			labels: []string{"method", "route", "status"},
		},
		requestDuration: &Histogram{
			name:    "strreg_http_request_duration_seconds",
			help:    "Duration of HTTP requests in seconds",
			labels:  []string{"route"},
			buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		recordsTotal: &Gauge{
			name: "strreg_strings_total",
			help: "Number of strings currently stored",
		},
		goroutines: &Gauge{
			name: "strreg_goroutines",
			help: "Number of goroutines",
		},
		startTime: time.Now(),
	}
}

// RecordRequest records one handled request
func (m *MetricsCollector) RecordRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.Inc(method, route, strconv.Itoa(status))
	m.requestDuration.Observe(duration.Seconds(), route)
}

// SetRecords sets the stored string count
func (m *MetricsCollector) SetRecords(count int) {
	m.recordsTotal.Set(float64(count))
}

// WritePrometheus writes metrics in Prometheus text format
func (m *MetricsCollector) WritePrometheus(w io.Writer) {
	m.goroutines.Set(float64(runtime.NumGoroutine()))

	fmt.Fprintf(w, "# HELP strreg_info strreg build information\n")
	fmt.Fprintf(w, "# TYPE strreg_info gauge\n")
	fmt.Fprintf(w, "strreg_info{version=\"%s\"} 1\n\n", version.Version)

	fmt.Fprintf(w, "# HELP strreg_uptime_seconds Time since the server started\n")
	fmt.Fprintf(w, "# TYPE strreg_uptime_seconds counter\n")
	fmt.Fprintf(w, "strreg_uptime_seconds %.3f\n\n", time.Since(m.startTime).Seconds())

	writeCounter(w, m.requestsTotal)
	writeHistogram(w, m.requestDuration)
	writeGauge(w, m.recordsTotal)
	writeGauge(w, m.goroutines)
}

func sortedKeys(values *sync.Map) []string {
	var keys []string
	values.Range(func(key, _ interface{}) bool {
		keys = append(keys, key.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

func writeCounter(w io.Writer, c *Counter) {
	fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help)
	fmt.Fprintf(w, "# TYPE %s counter\n", c.name)
	for _, key := range sortedKeys(&c.values) {
		val, _ := c.values.Load(key)
		if ptr, ok := val.(*uint64); ok {
			fmt.Fprintf(w, "%s%s %d\n", c.name, key, atomic.LoadUint64(ptr))
		}
	}
	fmt.Fprintln(w)
}

func writeHistogram(w io.Writer, h *Histogram) {
	fmt.Fprintf(w, "# HELP %s %s\n", h.name, h.help)
	fmt.Fprintf(w, "# TYPE %s histogram\n", h.name)
	for _, key := range sortedKeys(&h.values) {
		val, _ := h.values.Load(key)
		hv, ok := val.(*histogramValue)
		if !ok {
			continue
		}
		hv.mu.Lock()
		cumulative := uint64(0)
		for i, bucket := range h.buckets {
			cumulative += hv.buckets[i]
			fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLabel(key, "le", fmt.Sprintf("%g", bucket)), cumulative)
		}
		cumulative += hv.buckets[len(h.buckets)]
		fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLabel(key, "le", "+Inf"), cumulative)
		fmt.Fprintf(w, "%s_sum%s %.6f\n", h.name, key, hv.sum)
		fmt.Fprintf(w, "%s_count%s %d\n", h.name, key, hv.count)
		hv.mu.Unlock()
	}
	fmt.Fprintln(w)
}

func writeGauge(w io.Writer, g *Gauge) {
	fmt.Fprintf(w, "# HELP %s %s\n", g.name, g.help)
	fmt.Fprintf(w, "# TYPE %s gauge\n", g.name)
	for _, key := range sortedKeys(&g.values) {
		val, _ := g.values.Load(key)
		if ptr, ok := val.(*atomic.Uint64); ok {
			fmt.Fprintf(w, "%s%s %g\n", g.name, key, math.Float64frombits(ptr.Load()))
		}
	}
	fmt.Fprintln(w)
}

// withLabel appends name="value" to a rendered label set.
func withLabel(key, name, value string) string {
	pair := fmt.Sprintf("%s=\"%s\"", name, value)
	if key == "" {
		return "{" + pair + "}"
	}
	return key[:len(key)-1] + "," + pair + "}"
}

func labelsToKey(labels, values []string) string {
	if len(labels) == 0 || len(values) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for i, label := range labels {
		if i < len(values) {
			pairs = append(pairs, fmt.Sprintf("%s=%q", label, values[i]))
		}
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

// Inc adds one to the counter for the given label values
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add adds delta to the counter for the given label values
func (c *Counter) Add(delta uint64, labelValues ...string) {
	key := labelsToKey(c.labels, labelValues)
	val, _ := c.values.LoadOrStore(key, new(uint64))
	atomic.AddUint64(val.(*uint64), delta)
}

// Observe records a value in the histogram
func (h *Histogram) Observe(value float64, labelValues ...string) {
	key := labelsToKey(h.labels, labelValues)
	val, _ := h.values.LoadOrStore(key, &histogramValue{buckets: make([]uint64, len(h.buckets)+1)})
	hv := val.(*histogramValue)

	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.sum += value
	hv.count++
	for i, bucket := range h.buckets {
		if value <= bucket {
			hv.buckets[i]++
			return
		}
	}
	hv.buckets[len(h.buckets)]++
}

// Set sets the gauge for the given label values
func (g *Gauge) Set(value float64, labelValues ...string) {
	key := labelsToKey(g.labels, labelValues)
	val, _ := g.values.LoadOrStore(key, new(atomic.Uint64))
	val.(*atomic.Uint64).Store(math.Float64bits(value))
}

// handleMetrics serves the Prometheus text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if n, err := s.registry.Count(r.Context()); err == nil {
		s.metrics.SetRecords(n)
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	s.metrics.WritePrometheus(w)
}

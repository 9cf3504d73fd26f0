package scrawl

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Device tiers picked off memory, CPU, and viewport signals.
type DeviceTier int

const (
	TierLow DeviceTier = iota
	TierMid
	TierHigh
)

func (t DeviceTier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// DeviceProfile carries the signals the quality manager tiers on.
type DeviceProfile struct {
	MemoryGB      float64
	NumCPU        int
	ViewportWidth int
}

// DetectDevice builds a profile from the running host. Memory is not
// portably detectable, so a midrange default stands in.
func DetectDevice() DeviceProfile {
	return DeviceProfile{
		MemoryGB:      4,
		NumCPU:        runtime.NumCPU(),
		ViewportWidth: 1920,
	}
}

// RenderMetrics is the per-render feedback fed into AdaptQuality.
type RenderMetrics struct {
	Duration   time.Duration
	GlyphCount int
}

// Quality adaptation tuning.
const (
	minQualityFactor = 0.5
	maxQualityFactor = 1.5
	adaptWindow      = 5
	slowRenderCutoff = 800 * time.Millisecond
	fastRenderCutoff = 150 * time.Millisecond
	qualityStepDown  = 0.85
	qualityStepUp    = 1.05
)

// QualityManager maps a device profile to render quality settings and
// adapts them from observed render durations. Safe for concurrent use.
type QualityManager struct {
	mu       sync.Mutex
	device   DeviceProfile
	tier     DeviceTier
	quality  float64
	maxDim   int
	pooling  bool
	adaptive bool
	recent   []time.Duration
	log      *slog.Logger
}

// NewQualityManager tiers the device and derives initial settings.
func NewQualityManager(device DeviceProfile) *QualityManager {
	m := &QualityManager{
		device:   device,
		adaptive: true,
		pooling:  true,
		log:      Logger(),
	}
	m.tier = tierFor(device)
	switch m.tier {
	case TierLow:
		m.quality = 0.75
		m.maxDim = 1024
	case TierHigh:
		m.quality = 1.25
		m.maxDim = 4096
	default:
		m.quality = 1.0
		m.maxDim = 2048
	}
	return m
}

func tierFor(d DeviceProfile) DeviceTier {
	if d.MemoryGB > 0 && d.MemoryGB < 2 || d.NumCPU > 0 && d.NumCPU <= 2 || d.ViewportWidth > 0 && d.ViewportWidth < 480 {
		return TierLow
	}
	if d.MemoryGB >= 8 && d.NumCPU >= 8 {
		return TierHigh
	}
	return TierMid
}

// Tier returns the detected device tier.
func (m *QualityManager) Tier() DeviceTier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tier
}

// QualityFactor returns the current canvas scale factor.
func (m *QualityManager) QualityFactor() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quality
}

// PoolingEnabled reports whether renders should draw canvases from the
// pool.
func (m *QualityManager) PoolingEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pooling
}

// SetPooling toggles pool usage.
func (m *QualityManager) SetPooling(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pooling = on
}

// SetAdaptive toggles the duration feedback loop.
func (m *QualityManager) SetAdaptive(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adaptive = on
}

// ClampSize scales requested dimensions by the quality factor and caps
// them at the tier's maximum dimension, preserving aspect ratio. The
// result never drops below the requested size times the minimum quality
// factor and never below one pixel.
func (m *QualityManager) ClampSize(width, height int) (int, int) {
	m.mu.Lock()
	q := m.quality
	maxDim := m.maxDim
	m.mu.Unlock()

	w := float64(width) * q
	h := float64(height) * q
	if longest := max(w, h); longest > float64(maxDim) {
		scale := float64(maxDim) / longest
		w *= scale
		h *= scale
	}
	return max(int(w+0.5), 1), max(int(h+0.5), 1)
}

// AdaptQuality feeds one render's metrics into the feedback loop.
// Sustained slow renders step quality down; sustained fast renders let
// it recover, within tier bounds.
func (m *QualityManager) AdaptQuality(metrics RenderMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.adaptive {
		return
	}

	m.recent = append(m.recent, metrics.Duration)
	if len(m.recent) > adaptWindow {
		m.recent = m.recent[1:]
	}
	if len(m.recent) < adaptWindow {
		return
	}

	var total time.Duration
	for _, d := range m.recent {
		total += d
	}
	avg := total / time.Duration(len(m.recent))

	switch {
	case avg > slowRenderCutoff && m.quality > minQualityFactor:
		m.quality = max(m.quality*qualityStepDown, minQualityFactor)
		m.recent = m.recent[:0]
		m.log.Warn("render quality stepped down", "avg", avg, "quality", m.quality)
	case avg < fastRenderCutoff && m.quality < maxQualityFactor:
		m.quality = min(m.quality*qualityStepUp, maxQualityFactor)
		m.recent = m.recent[:0]
		m.log.Debug("render quality stepped up", "avg", avg, "quality", m.quality)
	}
}

package ttyrender

import (
	"fmt"

	"github.com/gogpu/ttyrender/atlas"
	"github.com/gogpu/ttyrender/gpu"
)

// SubpixelPreference selects whether the text pass uses subpixel
// (channel-max-alpha) blending or plain grayscale coverage blending.
type SubpixelPreference int

const (
	// SubpixelAuto ties subpixel rendering to the surface's sRGB-ness:
	// only gamma-correct blending produces acceptable subpixel results.
	SubpixelAuto SubpixelPreference = iota
	// SubpixelEnabled forces subpixel blending regardless of surface format.
	SubpixelEnabled
	// SubpixelDisabled forces grayscale coverage blending.
	SubpixelDisabled
)

// Resolve decides the effective subpixel flag given whether the chosen
// surface format is sRGB.
func (p SubpixelPreference) Resolve(surfaceIsSRGB bool) bool {
	switch p {
	case SubpixelEnabled:
		return true
	case SubpixelDisabled:
		return false
	default: // SubpixelAuto
		return surfaceIsSRGB
	}
}

// Config configures a Compositor: atlas sizing and eviction policy, format
// preferences, and debug telemetry, mirroring the original renderer's debug
// configuration surface.
type Config struct {
	// PageCount is the number of texture array layers in the glyph atlas.
	PageCount int
	// PageSize is the width and height, in pixels, of each atlas page.
	PageSize int
	// EvictionPolicy selects which atlas page is sacrificed on a full miss.
	EvictionPolicy atlas.EvictionPolicy

	// SrgbPreference selects the surface format's color space.
	SrgbPreference gpu.SrgbPreference
	// SubpixelPreference selects the text pass's blending mode.
	SubpixelPreference SubpixelPreference

	// ZeroEvictedLayer cosmetically zero-fills an evicted atlas page's GPU
	// texture layer. Off by default: the layer's old pixels are simply
	// overwritten as new glyphs are packed into it.
	ZeroEvictedLayer bool
	// AtlasReportIntervalFrames, when non-zero, logs a periodic atlas
	// occupancy report every N frames. Zero disables reporting.
	AtlasReportIntervalFrames uint32
}

// DefaultConfig returns the renderer's default configuration: 4 pages of
// atlas.DefaultPageSize, LRU-min-occupancy eviction, Auto format
// preferences, no layer zeroing, and no periodic reporting.
func DefaultConfig() Config {
	return Config{
		PageCount:                 4,
		PageSize:                  atlas.DefaultPageSize,
		EvictionPolicy:            atlas.LruMinOccupancy,
		SrgbPreference:            gpu.SrgbAuto,
		SubpixelPreference:        SubpixelAuto,
		ZeroEvictedLayer:          false,
		AtlasReportIntervalFrames: 0,
	}
}

// Validate rejects configurations that can never produce a usable atlas.
func (c Config) Validate() error {
	if c.PageCount < 1 {
		return fmt.Errorf("ttyrender: page count must be at least 1, got %d", c.PageCount)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("ttyrender: page size must be at least 1, got %d", c.PageSize)
	}
	return nil
}

package gpu

import (
	"errors"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ttyrender/internal/rlog"
)

// FrameStatus reports the outcome of requesting the next swapchain image.
type FrameStatus int

const (
	FrameStatusOK FrameStatus = iota
	FrameStatusOutdated
	FrameStatusLost
	FrameStatusTimeout
	FrameStatusOutOfMemory
)

// SrgbPreference selects how the surface format is chosen between an sRGB
// and a linear variant when both are offered.
type SrgbPreference int

const (
	// SrgbAuto prefers an sRGB format when one is offered.
	SrgbAuto SrgbPreference = iota
	// SrgbEnabled prefers an sRGB format, falling back to the first
	// offered format if none is available.
	SrgbEnabled
	// SrgbDisabled prefers a non-sRGB (linear) format, falling back to the
	// first offered format if none is available.
	SrgbDisabled
)

// ErrFrameDropped is returned by Surface.AcquireFrame when the frame could
// not be obtained even after one reconfigure-and-retry, and the caller
// should silently skip this frame rather than treat it as fatal.
var ErrFrameDropped = errors.New("gpu: frame dropped")

// WindowHandle is the host-owned swapchain collaborator: it knows how to
// configure itself to a physical size and format and to hand back the next
// frame's color target.
type WindowHandle interface {
	// Configure (re)configures the swapchain to width x height pixels using
	// format.
	Configure(width, height uint32, format gputypes.TextureFormat) error

	// AcquireNextFrame requests the next swapchain image. The returned view
	// is valid only when status is FrameStatusOK.
	AcquireNextFrame() (view hal.TextureView, status FrameStatus, err error)

	// Present schedules the acquired frame for display.
	Present() error

	// PreferredFormats returns the formats the surface can present,
	// ordered by the host's preference.
	PreferredFormats() []gputypes.TextureFormat
}

// Surface wraps a WindowHandle with the persistent-surface model: configured
// once at init and reconfigured only on resize or on a recoverable
// Outdated/Lost acquire failure, never recreated per frame.
//
// This departs deliberately from a per-frame-fresh-surface model: a
// persistent surface with reconfigure-on-resize is equally correct and
// avoids reconfiguring (and therefore stalling) every single frame.
type Surface struct {
	handle WindowHandle
	format gputypes.TextureFormat
	width  uint32
	height uint32

	resized bool // a size recorded by Resize not yet applied to the swapchain
}

// NewSurface configures handle to width x height, selecting a format per
// srgbPreference: prefer a matching sRGB/non-sRGB format, falling back to
// the first offered format if none match.
func NewSurface(handle WindowHandle, width, height uint32, srgbPreference SrgbPreference) (*Surface, error) {
	format := selectSurfaceFormat(handle.PreferredFormats(), srgbPreference)
	if err := handle.Configure(width, height, format); err != nil {
		return nil, err
	}
	return &Surface{handle: handle, format: format, width: width, height: height}, nil
}

// Format returns the format the surface was configured with.
func (s *Surface) Format() gputypes.TextureFormat { return s.format }

// Resize records a new physical size. Per the draw_rects contract, the
// surface itself is not reconfigured here: reconfiguration is deferred to
// the next AcquireFrame, which lazily reconfigures on next use.
func (s *Surface) Resize(width, height uint32) {
	s.width, s.height = width, height
	s.resized = true
}

// AcquireFrame requests the next frame. If Resize recorded a new size since
// the last configuration, it first reconfigures to that size (returning
// ErrFrameDropped if that fails). On Outdated or Lost it reconfigures
// once to the current stored size and retries; on Timeout or OutOfMemory, or
// on a second consecutive failure, it returns ErrFrameDropped and the caller
// should skip this frame.
func (s *Surface) AcquireFrame() (hal.TextureView, error) {
	if s.resized {
		if err := s.handle.Configure(s.width, s.height, s.format); err != nil {
			return nil, ErrFrameDropped
		}
		s.resized = false
	}

	view, status, err := s.handle.AcquireNextFrame()
	if status == FrameStatusOK {
		return view, nil
	}

	switch status {
	case FrameStatusOutdated, FrameStatusLost:
		rlog.Get().Warn("gpu: surface acquire failed, reconfiguring and retrying",
			slog.Int("status", int(status)), slog.Any("err", err))
		if cfgErr := s.handle.Configure(s.width, s.height, s.format); cfgErr != nil {
			return nil, ErrFrameDropped
		}
		view, status, err = s.handle.AcquireNextFrame()
		if status == FrameStatusOK {
			return view, nil
		}
		rlog.Get().Warn("gpu: surface acquire failed again after reconfigure, dropping frame",
			slog.Int("status", int(status)), slog.Any("err", err))
		return nil, ErrFrameDropped
	case FrameStatusTimeout, FrameStatusOutOfMemory:
		rlog.Get().Warn("gpu: surface acquire failed, dropping frame",
			slog.Int("status", int(status)), slog.Any("err", err))
		return nil, ErrFrameDropped
	default:
		return nil, ErrFrameDropped
	}
}

// Present hands the acquired frame back to the window handle for display.
func (s *Surface) Present() error { return s.handle.Present() }

// selectSurfaceFormat prefers an sRGB (or non-sRGB) match per preference,
// falling back to the first offered format.
func selectSurfaceFormat(offered []gputypes.TextureFormat, pref SrgbPreference) gputypes.TextureFormat {
	if len(offered) == 0 {
		return gputypes.TextureFormatBGRA8UnormSrgb
	}
	wantSrgb := pref != SrgbDisabled
	for _, f := range offered {
		if isSrgbFormat(f) == wantSrgb {
			return f
		}
	}
	return offered[0]
}

func isSrgbFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatBGRA8UnormSrgb, gputypes.TextureFormatRGBA8UnormSrgb:
		return true
	default:
		return false
	}
}

// Package gpu provides device/texture/pipeline/surface plumbing atop
// gogpu/gputypes, gogpu/wgpu, and gogpu/naga.
package gpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/types"

	"github.com/gogpu/ttyrender/internal/rlog"
)

// DeviceHandle provides GPU device access from the host application. The
// Compositor RECEIVES a device from the host rather than creating its own,
// so the host's GPU resources are shared with whatever else the host draws.
// It plays the role gpucontext.DeviceProvider plays elsewhere in this
// ecosystem: Device and Queue are the hal-layer handles that Pipeline and
// TextureArray build GPU objects from.
type DeviceHandle interface {
	Device() hal.Device
	Queue() hal.Queue
	SurfaceFormat() gputypes.TextureFormat
}

// NullDeviceHandle is a DeviceHandle with nil implementations, useful for
// tests that never touch the GPU.
type NullDeviceHandle struct{}

func (NullDeviceHandle) Device() hal.Device { return nil }
func (NullDeviceHandle) Queue() hal.Queue   { return nil }
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

// Info describes the selected GPU adapter.
type Info struct {
	Name       string
	Vendor     string
	DeviceType types.DeviceType
	Backend    types.Backend
	Driver     string
}

func (g *Info) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// AdapterInfo retrieves information about a GPU adapter.
func AdapterInfo(adapterID core.AdapterID) (*Info, error) {
	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		return nil, fmt.Errorf("gpu: get adapter info: %w", err)
	}
	return &Info{
		Name:       info.Name,
		Vendor:     info.Vendor,
		DeviceType: info.DeviceType,
		Backend:    info.Backend,
		Driver:     info.Driver,
	}, nil
}

func logAdapterInfo(adapterID core.AdapterID) {
	info, err := AdapterInfo(adapterID)
	if err != nil {
		rlog.Get().Warn("gpu: failed to get adapter info", slog.Any("err", err))
		return
	}
	rlog.Get().Info("gpu: adapter selected", slog.String("info", info.String()))
}

// CreateDevice creates a logical device from an adapter with default
// limits and no extra features requested.
func CreateDevice(adapterID core.AdapterID, label string) (core.DeviceID, error) {
	logAdapterInfo(adapterID)

	desc := &types.DeviceDescriptor{
		Label:            label,
		RequiredFeatures: nil,
		RequiredLimits:   types.DefaultLimits(),
	}

	deviceID, err := core.RequestDevice(adapterID, desc)
	if err != nil {
		return core.DeviceID{}, fmt.Errorf("gpu: create device: %w", err)
	}
	return deviceID, nil
}

// DeviceQueue retrieves the queue associated with a device.
func DeviceQueue(deviceID core.DeviceID) (core.QueueID, error) {
	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		return core.QueueID{}, fmt.Errorf("gpu: get device queue: %w", err)
	}
	return queueID, nil
}

// ReleaseDevice releases a device and its associated resources. A zero
// DeviceID is a no-op.
func ReleaseDevice(deviceID core.DeviceID) error {
	if deviceID.IsZero() {
		return nil
	}
	if err := core.DeviceDrop(deviceID); err != nil {
		return fmt.Errorf("gpu: release device: %w", err)
	}
	return nil
}

// ReleaseAdapter releases an adapter. A zero AdapterID is a no-op.
func ReleaseAdapter(adapterID core.AdapterID) error {
	if adapterID.IsZero() {
		return nil
	}
	if err := core.AdapterDrop(adapterID); err != nil {
		return fmt.Errorf("gpu: release adapter: %w", err)
	}
	return nil
}

// CheckDeviceLimits logs the device's basic limits at debug level.
func CheckDeviceLimits(deviceID core.DeviceID) error {
	limits, err := core.GetDeviceLimits(deviceID)
	if err != nil {
		return fmt.Errorf("gpu: get device limits: %w", err)
	}
	rlog.Get().Debug("gpu: device limits",
		slog.Uint64("max_texture_dimension_2d", uint64(limits.MaxTextureDimension2D)),
		slog.Uint64("max_buffer_size", limits.MaxBufferSize),
	)
	return nil
}

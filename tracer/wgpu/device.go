package wgpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/aaalloc/sviet/log"
)

// Maximum storage buffer binding size requested from the device. Large
// triangle meshes can push the scene buffers past the default 128 MiB.
const maxStorageBufferSize = 512 << 20

// Wrapper around a WebGPU adapter/device/queue triple.
type Device struct {
	logger log.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	handle   *wgpu.Device
	queue    *wgpu.Queue

	name string
}

// Information about an available adapter.
type AdapterInfo struct {
	Name    string
	Type    string
	Backend string
	Driver  string
}

// List all adapters exposed by the WebGPU instance.
func EnumerateAdapters() []AdapterInfo {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	var infoList []AdapterInfo
	for _, adapter := range instance.EnumerateAdapters(nil) {
		info := adapter.GetInfo()
		infoList = append(infoList, AdapterInfo{
			Name:    info.Name,
			Type:    info.AdapterType.String(),
			Backend: info.BackendType.String(),
			Driver:  info.DriverDescription,
		})
		adapter.Release()
	}
	return infoList
}

// Acquire the default high-performance adapter and create a logical device
// with a raised storage buffer limit.
func NewDevice() (*Device, error) {
	d := &Device{
		logger:   log.New("wgpu device"),
		instance: wgpu.CreateInstance(nil),
	}

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("wgpu device: could not acquire adapter: %w", err)
	}
	d.adapter = adapter

	info := adapter.GetInfo()
	d.name = info.Name
	d.logger.Infof("using adapter %q (%s, %s)", info.Name, info.AdapterType.String(), info.BackendType.String())

	limits := wgpu.DefaultLimits()
	limits.MaxStorageBufferBindingSize = maxStorageBufferSize

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "sviet device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("wgpu device: could not create device: %w", err)
	}
	d.handle = device
	d.queue = device.GetQueue()

	return d, nil
}

// Get the adapter name.
func (d *Device) Name() string {
	return d.name
}

// Get the underlying device handle.
func (d *Device) Handle() *wgpu.Device {
	return d.handle
}

// Get the device queue.
func (d *Device) Queue() *wgpu.Queue {
	return d.queue
}

// Block until all submitted work has completed.
func (d *Device) Wait() {
	d.handle.Poll(true, nil)
}

// Release all device resources.
func (d *Device) Close() {
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.handle != nil {
		d.handle.Release()
		d.handle = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

package wgpu

import (
	"reflect"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

// asBytes returns a byte view of data without copying it. Data must be a
// slice or a struct (value or pointer) with a fixed memory layout.
func asBytes(data interface{}) []byte {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Slice:
		if v.Len() == 0 {
			return nil
		}
		size := v.Len() * int(v.Type().Elem().Size())
		return unsafe.Slice((*byte)(unsafe.Pointer(v.Index(0).Addr().Pointer())), size)
	case reflect.Ptr:
		return unsafe.Slice((*byte)(unsafe.Pointer(v.Pointer())), int(v.Elem().Type().Size()))
	default:
		// Values boxed in an interface are not addressable; copy to a
		// fresh allocation first.
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		return unsafe.Slice((*byte)(unsafe.Pointer(ptr.Pointer())), int(v.Type().Size()))
	}
}

// UniformBuffer wraps a fixed-size uniform buffer bound at a particular
// binding index.
type UniformBuffer struct {
	handle  *wgpu.Buffer
	binding uint32
	size    uint64
}

// Allocate a zero-initialized uniform buffer of the given size.
func NewUniformBuffer(device *Device, label string, binding uint32, size uint64) (*UniformBuffer, error) {
	handle, err := device.Handle().CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	return &UniformBuffer{
		handle:  handle,
		binding: binding,
		size:    size,
	}, nil
}

// Upload new contents to the buffer.
func (b *UniformBuffer) Write(device *Device, data interface{}) {
	device.Queue().WriteBuffer(b.handle, 0, asBytes(data))
}

// Describe the buffer for a bind group layout.
func (b *UniformBuffer) LayoutEntry(visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    b.binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type: wgpu.BufferBindingTypeUniform,
		},
	}
}

// Describe the buffer for a bind group.
func (b *UniformBuffer) BindingEntry() wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: b.binding,
		Buffer:  b.handle,
		Size:    wgpu.WholeSize,
	}
}

// Release the buffer.
func (b *UniformBuffer) Release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}

// StorageBuffer wraps a storage buffer bound at a particular binding index.
// Writes that exceed the allocated size reallocate the buffer, in which case
// the owning bind group must be recreated.
type StorageBuffer struct {
	handle   *wgpu.Buffer
	label    string
	binding  uint32
	size     uint64
	readOnly bool
}

// Allocate a zero-initialized storage buffer of the given size.
func NewStorageBuffer(device *Device, label string, binding uint32, size uint64, readOnly bool) (*StorageBuffer, error) {
	handle, err := device.Handle().CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	return &StorageBuffer{
		handle:   handle,
		label:    label,
		binding:  binding,
		size:     size,
		readOnly: readOnly,
	}, nil
}

// Upload new contents to the buffer. Returns true if the buffer had to be
// reallocated to fit the data.
func (b *StorageBuffer) Write(device *Device, data interface{}) (realloc bool, err error) {
	payload := asBytes(data)
	if uint64(len(payload)) > b.size {
		b.handle.Release()
		b.size = uint64(len(payload))
		b.handle, err = device.Handle().CreateBuffer(&wgpu.BufferDescriptor{
			Label: b.label,
			Size:  b.size,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return false, err
		}
		realloc = true
	}
	if len(payload) > 0 {
		device.Queue().WriteBuffer(b.handle, 0, payload)
	}
	return realloc, nil
}

// Describe the buffer for a bind group layout.
func (b *StorageBuffer) LayoutEntry(visibility wgpu.ShaderStage) wgpu.BindGroupLayoutEntry {
	bindingType := wgpu.BufferBindingTypeStorage
	if b.readOnly {
		bindingType = wgpu.BufferBindingTypeReadOnlyStorage
	}

	return wgpu.BindGroupLayoutEntry{
		Binding:    b.binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type: bindingType,
		},
	}
}

// Describe the buffer for a bind group.
func (b *StorageBuffer) BindingEntry() wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: b.binding,
		Buffer:  b.handle,
		Size:    wgpu.WholeSize,
	}
}

// Release the buffer.
func (b *StorageBuffer) Release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}

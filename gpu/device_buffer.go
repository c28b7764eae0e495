package gpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"particlesim/core"
)

const (
	storageFlags = gl.MAP_READ_BIT | gl.MAP_WRITE_BIT | gl.MAP_PERSISTENT_BIT | gl.MAP_COHERENT_BIT | gl.DYNAMIC_STORAGE_BIT
	mapFlags     = gl.MAP_READ_BIT | gl.MAP_WRITE_BIT | gl.MAP_PERSISTENT_BIT | gl.MAP_COHERENT_BIT
)

// DeviceBuffer is one vec4-per-particle allocation that serves as a
// compute storage buffer and as a vertex attribute source at the same time.
// The whole range stays persistently and coherently mapped.
type DeviceBuffer struct {
	id     uint32
	count  int
	mapped []mgl32.Vec4
}

// storageSize is the allocation size for count particles. GL rejects
// zero-sized storage, so an empty store still gets one element.
func storageSize(count int) int {
	return max(count, 1) * core.Vec4Size
}

func newDeviceBuffer(data []mgl32.Vec4) (*DeviceBuffer, error) {
	b := &DeviceBuffer{count: len(data)}
	size := storageSize(b.count)

	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}

	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.id)
	gl.BufferStorage(gl.SHADER_STORAGE_BUFFER, size, ptr, storageFlags)

	mapping := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, size, mapFlags)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	if mapping == nil {
		gl.DeleteBuffers(1, &b.id)
		return nil, fmt.Errorf("map storage buffer (%d bytes): gl error 0x%x", size, gl.GetError())
	}

	b.mapped = unsafe.Slice((*mgl32.Vec4)(mapping), b.count)
	return b, nil
}

// ID returns the GL buffer name.
func (b *DeviceBuffer) ID() uint32 {
	return b.id
}

// Mapped returns the host view of the buffer. Reading it is only valid
// after the writes of a dispatch have been fenced.
func (b *DeviceBuffer) Mapped() []mgl32.Vec4 {
	return b.mapped
}

// ComputeBinding binds the buffer to an indexed SSBO binding point.
func (b *DeviceBuffer) ComputeBinding(index uint32) {
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, index, b.id)
}

// VertexBinding points a vec4 vertex attribute at the buffer. The target
// VAO must be bound.
func (b *DeviceBuffer) VertexBinding(slot uint32) {
	bindVertexAttrib(b.id, slot)
}

// release unmaps then deletes the buffer.
func (b *DeviceBuffer) release() {
	if b.id == 0 {
		return
	}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.id)
	gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	b.mapped = nil
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
}

func bindVertexAttrib(buffer, slot uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.VertexAttribPointer(slot, 4, gl.FLOAT, false, 0, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(slot)
}

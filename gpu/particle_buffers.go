package gpu

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"
	"go.uber.org/zap"

	"particlesim/core"
)

var (
	// ErrFenceTimeout is returned when the device does not finish in time.
	ErrFenceTimeout = errors.New("gpu fence wait timed out")
	// ErrFenceFailed is returned when the driver reports a failed wait.
	ErrFenceFailed = errors.New("gpu fence wait failed")
)

// fenceTimeout bounds host waits on device work.
const fenceTimeout = 2 * time.Second

// VertexSourceMode selects how the renderer reads the integrator output.
type VertexSourceMode int

const (
	// VertexSourceAlias draws straight from the storage buffers.
	VertexSourceAlias VertexSourceMode = iota
	// VertexSourceCopy copies the storage buffers into the vertex buffers
	// after every dispatch and draws from those.
	VertexSourceCopy
)

func (m VertexSourceMode) String() string {
	switch m {
	case VertexSourceAlias:
		return "alias"
	case VertexSourceCopy:
		return "copy"
	default:
		return fmt.Sprintf("VertexSourceMode(%d)", int(m))
	}
}

// ParseVertexSourceMode parses "alias" or "copy".
func ParseVertexSourceMode(s string) (VertexSourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "alias":
		return VertexSourceAlias, nil
	case "copy":
		return VertexSourceCopy, nil
	default:
		return 0, fmt.Errorf("unknown vertex source mode %q", s)
	}
}

// barrierBits returns the memory barrier needed between the integrator
// writes and the reads that follow them in the same frame.
func barrierBits(mode VertexSourceMode) uint32 {
	bits := uint32(gl.SHADER_STORAGE_BARRIER_BIT | gl.CLIENT_MAPPED_BUFFER_BARRIER_BIT)
	switch mode {
	case VertexSourceCopy:
		bits |= gl.BUFFER_UPDATE_BARRIER_BIT
	default:
		bits |= gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT
	}
	return bits
}

// clientBarrierBits returns the barrier needed between host writes through
// the mapping and the device reads that follow them in the same frame.
func clientBarrierBits(mode VertexSourceMode) uint32 {
	bits := uint32(gl.CLIENT_MAPPED_BUFFER_BARRIER_BIT)
	switch mode {
	case VertexSourceCopy:
		bits |= gl.BUFFER_UPDATE_BARRIER_BIT
	default:
		bits |= gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT
	}
	return bits
}

// ParticleBuffers owns the three storage buffers, the two vertex buffers and
// the vertex array for one particle store. It lives for the whole process
// and is released once, after the render loop.
type ParticleBuffers struct {
	Position *DeviceBuffer
	Velocity *DeviceBuffer
	Color    *DeviceBuffer

	positionVBO uint32
	colorVBO    uint32
	vao         uint32

	count    int
	mode     VertexSourceMode
	released bool
	log      *zap.Logger
}

// NewParticleBuffers uploads the store to the device and wires the vertex
// array. Requires a current GL 4.3 context with ARB_buffer_storage.
func NewParticleBuffers(store *core.ParticleStore, mode VertexSourceMode, log *zap.Logger) (*ParticleBuffers, error) {
	if err := store.Validate(); err != nil {
		return nil, fmt.Errorf("new particle buffers: %w", err)
	}

	p := &ParticleBuffers{
		count: store.Len(),
		mode:  mode,
		log:   log,
	}

	var err error
	if p.Position, err = newDeviceBuffer(store.Positions); err != nil {
		return nil, fmt.Errorf("position buffer: %w", err)
	}
	if p.Velocity, err = newDeviceBuffer(store.Velocities); err != nil {
		p.Release()
		return nil, fmt.Errorf("velocity buffer: %w", err)
	}
	if p.Color, err = newDeviceBuffer(store.Colors); err != nil {
		p.Release()
		return nil, fmt.Errorf("color buffer: %w", err)
	}
	p.BindCompute()

	size := storageSize(p.count)
	gl.GenBuffers(1, &p.positionVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.positionVBO)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_COPY)

	gl.GenBuffers(1, &p.colorVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.colorVBO)
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_COPY)

	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)
	switch mode {
	case VertexSourceCopy:
		bindVertexAttrib(p.positionVBO, core.PositionAttrib)
		bindVertexAttrib(p.colorVBO, core.ColorAttrib)
	default:
		p.Position.VertexBinding(core.PositionAttrib)
		p.Color.VertexBinding(core.ColorAttrib)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if mode == VertexSourceCopy {
		p.Sync()
	}

	log.Info("Particle buffers created",
		zap.Int("particles", p.count),
		zap.Int("bytesPerBuffer", size),
		zap.Stringer("vertexSource", mode))

	return p, nil
}

// Count returns the number of particles.
func (p *ParticleBuffers) Count() int {
	return p.count
}

// Mode returns the vertex source mode.
func (p *ParticleBuffers) Mode() VertexSourceMode {
	return p.mode
}

// BindCompute binds the storage buffers to their SSBO binding points.
func (p *ParticleBuffers) BindCompute() {
	p.Position.ComputeBinding(core.PositionBinding)
	p.Velocity.ComputeBinding(core.VelocityBinding)
	p.Color.ComputeBinding(core.ColorBinding)
}

// BindVertex binds the vertex array for drawing.
func (p *ParticleBuffers) BindVertex() {
	gl.BindVertexArray(p.vao)
}

// UnbindVertex restores the default vertex array.
func (p *ParticleBuffers) UnbindVertex() {
	gl.BindVertexArray(0)
}

// BarrierBits is the memory barrier to issue after a dispatch.
func (p *ParticleBuffers) BarrierBits() uint32 {
	return barrierBits(p.mode)
}

// Sync makes the latest storage contents visible to the vertex stage. It is
// a no-op when drawing from the storage buffers directly.
func (p *ParticleBuffers) Sync() {
	if p.mode != VertexSourceCopy || p.count == 0 {
		return
	}
	size := p.count * core.Vec4Size
	copyBuffer(p.Position.id, p.positionVBO, size)
	copyBuffer(p.Color.id, p.colorVBO, size)
}

func copyBuffer(src, dst uint32, size int) {
	gl.BindBuffer(gl.COPY_READ_BUFFER, src)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, dst)
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, size)
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

// ClientBarrier orders host writes through the mapping before the buffer
// copy or vertex fetch that reads them.
func (p *ParticleBuffers) ClientBarrier() {
	gl.MemoryBarrier(clientBarrierBits(p.mode))
}

// WaitIdle blocks until all submitted device work has completed, so the
// mapped views can be read or written without racing a dispatch or draw.
func (p *ParticleBuffers) WaitIdle() error {
	gl.MemoryBarrier(gl.CLIENT_MAPPED_BUFFER_BARRIER_BIT)

	fence := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	defer gl.DeleteSync(fence)

	switch gl.ClientWaitSync(fence, gl.SYNC_FLUSH_COMMANDS_BIT, uint64(fenceTimeout.Nanoseconds())) {
	case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
		return nil
	case gl.TIMEOUT_EXPIRED:
		return fmt.Errorf("wait idle after %s: %w", fenceTimeout, ErrFenceTimeout)
	default:
		return ErrFenceFailed
	}
}

// ReadBack copies the current device state into dst.
func (p *ParticleBuffers) ReadBack(dst *core.ParticleStore) error {
	if dst.Len() != p.count {
		return fmt.Errorf("read back: store has %d particles, buffers have %d", dst.Len(), p.count)
	}
	if err := p.WaitIdle(); err != nil {
		return fmt.Errorf("read back: %w", err)
	}
	copy(dst.Positions, p.Position.mapped)
	copy(dst.Velocities, p.Velocity.mapped)
	copy(dst.Colors, p.Color.mapped)
	return nil
}

// WriteFrom publishes src to the device through the persistent mapping.
// The caller must make sure no dispatch or draw is in flight (WaitIdle).
func (p *ParticleBuffers) WriteFrom(src *core.ParticleStore) error {
	if src.Len() != p.count {
		return fmt.Errorf("write: store has %d particles, buffers have %d", src.Len(), p.count)
	}
	copy(p.Position.mapped, src.Positions)
	copy(p.Velocity.mapped, src.Velocities)
	copy(p.Color.mapped, src.Colors)
	return nil
}

// Release unmaps and deletes every buffer and the vertex array. Calling it
// more than once is a no-op.
func (p *ParticleBuffers) Release() {
	if p.released {
		return
	}
	p.released = true

	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
	}
	if p.positionVBO != 0 {
		gl.DeleteBuffers(1, &p.positionVBO)
	}
	if p.colorVBO != 0 {
		gl.DeleteBuffers(1, &p.colorVBO)
	}
	for _, b := range []*DeviceBuffer{p.Position, p.Velocity, p.Color} {
		if b != nil {
			b.release()
		}
	}

	p.log.Info("Particle buffers released", zap.Int("particles", p.count))
}

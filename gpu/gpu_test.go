package gpu

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"particlesim/core"
	"particlesim/physics"
)

type fakeIntegrator struct {
	name       string
	dispatched int
	barriers   int
}

func (f *fakeIntegrator) Name() string { return f.name }

func (f *fakeIntegrator) Dispatch(core.FrameState) error {
	f.dispatched++
	return nil
}

func (f *fakeIntegrator) Barrier() { f.barriers++ }

// fakeMapped stands in for the persistent mapping with a plain store.
type fakeMapped struct {
	device     *core.ParticleStore
	waits      int
	readBacks  int
	writes     int
	clientBars int
	syncs      int
	waitErr    error
}

func (f *fakeMapped) WaitIdle() error {
	f.waits++
	return f.waitErr
}

func (f *fakeMapped) ReadBack(dst *core.ParticleStore) error {
	f.readBacks++
	if err := f.WaitIdle(); err != nil {
		return err
	}
	return dst.CopyFrom(f.device)
}

func (f *fakeMapped) WriteFrom(src *core.ParticleStore) error {
	f.writes++
	return f.device.CopyFrom(src)
}

func (f *fakeMapped) ClientBarrier() { f.clientBars++ }

func (f *fakeMapped) Sync() { f.syncs++ }

func TestStorageSize(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, core.Vec4Size},
		{1, core.Vec4Size},
		{256, 256 * core.Vec4Size},
		{1000000, 1000000 * core.Vec4Size},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, storageSize(tt.count), "count %d", tt.count)
	}
}

func TestParseVertexSourceMode(t *testing.T) {
	mode, err := ParseVertexSourceMode("alias")
	require.NoError(t, err)
	assert.Equal(t, VertexSourceAlias, mode)

	mode, err = ParseVertexSourceMode("copy")
	require.NoError(t, err)
	assert.Equal(t, VertexSourceCopy, mode)

	_, err = ParseVertexSourceMode("mirror")
	assert.Error(t, err)

	assert.Equal(t, "alias", VertexSourceAlias.String())
	assert.Equal(t, "copy", VertexSourceCopy.String())
}

func TestBarrierBits(t *testing.T) {
	base := uint32(gl.SHADER_STORAGE_BARRIER_BIT | gl.CLIENT_MAPPED_BUFFER_BARRIER_BIT)

	alias := barrierBits(VertexSourceAlias)
	assert.Equal(t, base, alias&base)
	assert.NotZero(t, alias&gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT)

	copied := barrierBits(VertexSourceCopy)
	assert.Equal(t, base, copied&base)
	assert.NotZero(t, copied&gl.BUFFER_UPDATE_BARRIER_BIT)
}

func TestClientBarrierBits(t *testing.T) {
	alias := clientBarrierBits(VertexSourceAlias)
	assert.NotZero(t, alias&gl.CLIENT_MAPPED_BUFFER_BARRIER_BIT)
	assert.NotZero(t, alias&gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT)

	copied := clientBarrierBits(VertexSourceCopy)
	assert.NotZero(t, copied&gl.CLIENT_MAPPED_BUFFER_BARRIER_BIT)
	assert.NotZero(t, copied&gl.BUFFER_UPDATE_BARRIER_BIT)
}

func TestBackendsStartsOnRequestedBackend(t *testing.T) {
	device := &fakeIntegrator{name: "gpu"}
	host := &fakeIntegrator{name: "cpu"}

	b, err := newBackends("cpu", device, host, core.NewEmptyStore(4), &fakeMapped{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "cpu", b.Name())

	require.NoError(t, b.Dispatch(core.FrameState{}))
	b.Barrier()
	assert.Equal(t, 1, host.dispatched)
	assert.Equal(t, 1, host.barriers)
	assert.Zero(t, device.dispatched)

	_, err = newBackends("vulkan", device, host, core.NewEmptyStore(4), &fakeMapped{}, zap.NewNop())
	assert.Error(t, err)
}

func TestBackendsToggleReadsBackDeviceState(t *testing.T) {
	device := &fakeIntegrator{name: "gpu"}
	host := &fakeIntegrator{name: "cpu"}

	deviceState, err := core.NewParticleStore(8, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	mapped := &fakeMapped{device: deviceState}
	hostStore := core.NewEmptyStore(8)

	b, err := newBackends("gpu", device, host, hostStore, mapped, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, b.Toggle())
	assert.Equal(t, "cpu", b.Name())
	assert.Equal(t, 1, mapped.readBacks)
	assert.Equal(t, deviceState.Positions, hostStore.Positions)
	assert.Equal(t, deviceState.Velocities, hostStore.Velocities)

	require.NoError(t, b.Toggle())
	assert.Equal(t, "gpu", b.Name())
	assert.Equal(t, 1, mapped.readBacks, "returning to the device needs no read back")
}

func TestBackendsToggleKeepsBackendOnReadBackFailure(t *testing.T) {
	device := &fakeIntegrator{name: "gpu"}
	host := &fakeIntegrator{name: "cpu"}
	mapped := &fakeMapped{device: core.NewEmptyStore(2), waitErr: ErrFenceTimeout}

	b, err := newBackends("gpu", device, host, core.NewEmptyStore(2), mapped, zap.NewNop())
	require.NoError(t, err)

	err = b.Toggle()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFenceTimeout))
	assert.Equal(t, "gpu", b.Name())
}

func TestHostIntegratorPublishesStep(t *testing.T) {
	store, err := core.NewParticleStore(300, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	mapped := &fakeMapped{device: core.NewEmptyStore(300)}

	h := &HostIntegrator{store: store, buffers: mapped, cpu: physics.NewCPUIntegrator(4)}
	assert.Equal(t, "cpu", h.Name())

	frame := core.FrameState{
		DeltaTime: 0.016,
		Attractor: mgl32.Vec3{0, 0, 0},
		Active:    true,
		Running:   true,
	}
	require.NoError(t, h.Dispatch(frame))
	h.Barrier()

	assert.Equal(t, 1, mapped.waits)
	assert.Equal(t, 1, mapped.writes)
	assert.Equal(t, 1, mapped.clientBars)
	assert.Equal(t, 1, mapped.syncs)
	assert.Equal(t, store.Positions, mapped.device.Positions)
	assert.Equal(t, store.Colors, mapped.device.Colors)
}

func TestHostIntegratorStopsOnFenceError(t *testing.T) {
	store := core.NewEmptyStore(4)
	mapped := &fakeMapped{device: core.NewEmptyStore(4), waitErr: ErrFenceFailed}

	h := &HostIntegrator{store: store, buffers: mapped, cpu: physics.NewCPUIntegrator(1)}
	err := h.Dispatch(core.FrameState{DeltaTime: 0.016, Running: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFenceFailed))
	assert.Zero(t, mapped.writes)
}

func TestHostIntegratorSyncsVertexBuffersEveryFrame(t *testing.T) {
	store := core.NewEmptyStore(8)
	mapped := &fakeMapped{device: core.NewEmptyStore(8)}
	h := &HostIntegrator{store: store, buffers: mapped, cpu: physics.NewCPUIntegrator(2)}

	frame := core.FrameState{DeltaTime: 0.016, Active: true, Running: true}
	for i := 1; i <= 3; i++ {
		require.NoError(t, h.Dispatch(frame))
		h.Barrier()
		assert.Equal(t, i, mapped.clientBars)
		assert.Equal(t, i, mapped.syncs)
	}
}

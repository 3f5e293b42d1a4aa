//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// Usage classes the pool recycles. Upload and uniform buffers are created
// mapped and cannot be refilled once unmapped, so they are never pooled.
const (
	scratchUsage  = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst
	readbackUsage = wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
)

const (
	// Buffers kept per usage class; extras go back to the driver.
	maxPooled = 32
	// A pooled buffer more than 4x the request stays pooled for a bigger ask.
	maxOverhang = 4
)

// pooledBuffer pairs a GPU buffer with its allocated size and usage.
type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// bufferPool recycles the scratch result and readback staging buffers of
// kernel launches. Buffers are grouped by usage class and handed out first
// fit by size.
type bufferPool struct {
	device *wgpu.Device

	mu      sync.Mutex
	classes map[wgpu.BufferUsage][]*pooledBuffer
	hits    uint64
	misses  uint64
}

func newBufferPool(device *wgpu.Device) *bufferPool {
	return &bufferPool{
		device:  device,
		classes: make(map[wgpu.BufferUsage][]*pooledBuffer),
	}
}

// acquire returns a buffer of at least size bytes with the given usage,
// recycling a pooled one when it fits. Callers bind and copy with their own
// requested size; pb.size only records the allocation.
func (p *bufferPool) acquire(size uint64, usage wgpu.BufferUsage) *pooledBuffer {
	p.mu.Lock()
	free := p.classes[usage]
	for i, pb := range free {
		if pb.size >= size && pb.size <= size*maxOverhang {
			p.classes[usage] = append(free[:i], free[i+1:]...)
			p.hits++
			p.mu.Unlock()
			return pb
		}
	}
	p.misses++
	p.mu.Unlock()

	buffer := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
	return &pooledBuffer{buffer: buffer, size: size, usage: usage}
}

// release returns a buffer to its usage class, or frees it when the class
// is full. The buffer must not be mapped and no submitted work may still
// reference it.
func (p *bufferPool) release(pb *pooledBuffer) {
	p.mu.Lock()
	if len(p.classes[pb.usage]) < maxPooled {
		p.classes[pb.usage] = append(p.classes[pb.usage], pb)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	pb.buffer.Release()
}

// drain frees every pooled buffer. Called when the backend shuts down.
func (p *bufferPool) drain() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for usage, free := range p.classes {
		for _, pb := range free {
			pb.buffer.Release()
		}
		p.classes[usage] = nil
	}
}

// stats reports recycled hits, allocation misses, and the number of buffers
// currently pooled.
func (p *bufferPool) stats() (hits, misses uint64, pooled int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, free := range p.classes {
		pooled += len(free)
	}
	return p.hits, p.misses, pooled
}

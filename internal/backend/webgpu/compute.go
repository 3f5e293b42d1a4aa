//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/grad/internal/tensor"
)

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	// Auto layout (nil layout)
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// createBuffer creates a GPU buffer and uploads initial data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// createUniformBuffer creates a uniform buffer with proper alignment.
// Uniform buffers require 16-byte alignment for struct fields.
func (b *Backend) createUniformBuffer(data []byte) *wgpu.Buffer {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15 // Round up to 16-byte boundary

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer
}

// readBuffer reads data back from a GPU buffer to CPU memory.
// Uses a pooled staging buffer since storage buffers can't be mapped
// directly.
func (b *Backend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := b.pool.acquire(size, readbackUsage)
	defer b.pool.release(staging)

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, staging.buffer, 0, size)
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	err := staging.buffer.MapAsync(b.device, wgpu.MapModeRead, 0, size)
	if err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}

	mappedPtr := staging.buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)

	staging.buffer.Unmap()

	return result, nil
}

// dispatch runs one compute pass of the pipeline over ceil(n/workgroupSize)
// workgroups and submits it.
func (b *Backend) dispatch(pipeline *wgpu.ComputePipeline, bindGroup *wgpu.BindGroup, n int) {
	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)

	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)

	//nolint:gosec // G115: workgroup count is non-negative
	workgroups := uint32((n + workgroupSize - 1) / workgroupSize)
	computePass.DispatchWorkgroups(workgroups, 1, 1)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)
}

// maskBytes converts a bool mask into the u32 array the shaders read.
func maskBytes(mask *tensor.RawTensor) []byte {
	m := mask.Contiguous().AsBool()
	n := mask.NumElements()
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		if m[i] {
			binary.LittleEndian.PutUint32(out[i*4:], 1)
		}
	}
	return out
}

// runAdd executes element-wise addition on the GPU.
func (b *Backend) runAdd(a, other *tensor.RawTensor) (*tensor.RawTensor, error) {
	if a.DType() != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: only float32 is supported, got %s", a.DType())
	}
	if !a.Shape().Equal(other.Shape()) {
		return nil, fmt.Errorf("webgpu: shape mismatch: %v vs %v", a.Shape(), other.Shape())
	}

	a = a.Contiguous()
	other = other.Contiguous()
	numElements := a.NumElements()

	shader := b.compileShader("add", addShader)
	pipeline := b.getOrCreatePipeline("add", shader)

	//nolint:gosec // G115: ByteSize() returns non-negative int
	resultSize := uint64(a.ByteSize())

	bufferA := b.createBuffer(a.Data()[:resultSize], wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufferA.Release()

	bufferOther := b.createBuffer(other.Data()[:resultSize], wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufferOther.Release()

	scratch := b.pool.acquire(resultSize, scratchUsage)
	defer b.pool.release(scratch)

	params := make([]byte, 16)
	//nolint:gosec // G115: NumElements() returns non-negative int
	binary.LittleEndian.PutUint32(params[0:4], uint32(numElements))
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferA, 0, resultSize),
		wgpu.BufferBindingEntry(1, bufferOther, 0, resultSize),
		wgpu.BufferBindingEntry(2, scratch.buffer, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, numElements)

	resultData, err := b.readBuffer(scratch.buffer, resultSize)
	if err != nil {
		return nil, err
	}

	result, err := tensor.NewRaw(a.Shape(), a.DType(), tensor.WebGPU)
	if err != nil {
		return nil, err
	}

	copy(result.Data(), resultData)
	return result, nil
}

// runMaskedFill writes value into x at masked positions, in place. x must be
// float32 and contiguous; the readback lands in x's own buffer so views and
// clones of x observe the mutation.
func (b *Backend) runMaskedFill(x, mask *tensor.RawTensor, value float32) error {
	if x.DType() != tensor.Float32 {
		return fmt.Errorf("webgpu: only float32 is supported, got %s", x.DType())
	}

	numElements := x.NumElements()
	//nolint:gosec // G115: ByteSize() returns non-negative int
	xSize := uint64(x.ByteSize())

	shader := b.compileShader("masked_fill", maskedFillShader)
	pipeline := b.getOrCreatePipeline("masked_fill", shader)

	bufferX := b.createBuffer(x.Data()[:xSize], wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	defer bufferX.Release()

	maskData := maskBytes(mask)
	bufferMask := b.createBuffer(maskData, wgpu.BufferUsageStorage)
	defer bufferMask.Release()

	params := make([]byte, 16)
	//nolint:gosec // G115: element counts are non-negative
	binary.LittleEndian.PutUint32(params[0:4], uint32(numElements))
	//nolint:gosec // G115: element counts are non-negative
	binary.LittleEndian.PutUint32(params[4:8], uint32(mask.NumElements()))
	binary.LittleEndian.PutUint32(params[8:12], math.Float32bits(value))
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferX, 0, xSize),
		wgpu.BufferBindingEntry(1, bufferMask, 0, uint64(len(maskData))),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, numElements)

	resultData, err := b.readBuffer(bufferX, xSize)
	if err != nil {
		return err
	}

	copy(x.Data()[:xSize], resultData)
	return nil
}

// runMaskedSum reduces x at masked positions to a 0-dimensional tensor.
// One partial sum per workgroup is computed on the GPU; the host folds the
// partials.
func (b *Backend) runMaskedSum(x, mask *tensor.RawTensor) (*tensor.RawTensor, error) {
	if x.DType() != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: only float32 is supported, got %s", x.DType())
	}

	x = x.Contiguous()
	numElements := x.NumElements()
	numGroups := (numElements + workgroupSize - 1) / workgroupSize
	//nolint:gosec // G115: ByteSize() returns non-negative int
	xSize := uint64(x.ByteSize())

	shader := b.compileShader("masked_sum", maskedSumShader)
	pipeline := b.getOrCreatePipeline("masked_sum", shader)

	bufferX := b.createBuffer(x.Data()[:xSize], wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufferX.Release()

	maskData := maskBytes(mask)
	bufferMask := b.createBuffer(maskData, wgpu.BufferUsageStorage)
	defer bufferMask.Release()

	partialsSize := uint64(numGroups * 4)
	partials := b.pool.acquire(partialsSize, scratchUsage)
	defer b.pool.release(partials)

	params := make([]byte, 16)
	//nolint:gosec // G115: element counts are non-negative
	binary.LittleEndian.PutUint32(params[0:4], uint32(numElements))
	//nolint:gosec // G115: element counts are non-negative
	binary.LittleEndian.PutUint32(params[4:8], uint32(mask.NumElements()))
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferX, 0, xSize),
		wgpu.BufferBindingEntry(1, bufferMask, 0, uint64(len(maskData))),
		wgpu.BufferBindingEntry(2, partials.buffer, 0, partialsSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, numElements)

	partialData, err := b.readBuffer(partials.buffer, partialsSize)
	if err != nil {
		return nil, err
	}

	var sum float32
	for i := 0; i < numGroups; i++ {
		sum += math.Float32frombits(binary.LittleEndian.Uint32(partialData[i*4:]))
	}

	result, err := tensor.NewRaw(tensor.Shape{}, tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, err
	}
	result.AsFloat32()[0] = sum
	return result, nil
}

// runSumDims reduces the given axes of x, one shader pass per axis in
// ascending order. Reduced axes keep size 1 until the final reshape.
func (b *Backend) runSumDims(x *tensor.RawTensor, dims []int, keepDims bool) (*tensor.RawTensor, error) {
	ndim := len(x.Shape())
	reduced := make([]bool, ndim)
	axes := make([]int, 0, len(dims))
	for _, d := range dims {
		if d < 0 {
			d += ndim
		}
		if d < 0 || d >= ndim {
			return nil, fmt.Errorf("dimension %d out of range for %dD tensor", d, ndim)
		}
		if reduced[d] {
			return nil, fmt.Errorf("duplicate dimension %d", d)
		}
		reduced[d] = true
		axes = append(axes, d)
	}
	if len(axes) == 0 {
		return x.Copy(), nil
	}
	sort.Ints(axes)

	cur := x.Contiguous()
	curShape := x.Shape().Clone()

	for _, d := range axes {
		dimSize := curShape[d]
		innerSize := 1
		for i := d + 1; i < ndim; i++ {
			innerSize *= curShape[i]
		}
		outSize := cur.NumElements() / dimSize

		raw, err := b.runSumDim(cur, dimSize, innerSize, outSize)
		if err != nil {
			return nil, err
		}

		curShape[d] = 1
		next, err := tensor.NewRaw(curShape, tensor.Float32, tensor.WebGPU)
		if err != nil {
			return nil, err
		}
		copy(next.Data(), raw)
		cur = next
	}

	if keepDims {
		return cur, nil
	}

	dropped := make(tensor.Shape, 0, ndim-len(axes))
	for d, size := range curShape {
		if !reduced[d] {
			dropped = append(dropped, size)
		}
	}
	return cur.Reshaped(dropped)
}

// runSumDim reduces one axis of a contiguous float32 tensor and returns the
// raw bytes of the reduced data. outSize = numElements / dimSize; innerSize
// is the product of the dimensions after the reduced axis.
func (b *Backend) runSumDim(x *tensor.RawTensor, dimSize, innerSize, outSize int) ([]byte, error) {
	if x.DType() != tensor.Float32 {
		return nil, fmt.Errorf("webgpu: only float32 is supported, got %s", x.DType())
	}

	//nolint:gosec // G115: ByteSize() returns non-negative int
	xSize := uint64(x.ByteSize())
	resultSize := uint64(outSize * 4)

	shader := b.compileShader("sum_dim", sumDimShader)
	pipeline := b.getOrCreatePipeline("sum_dim", shader)

	bufferX := b.createBuffer(x.Data()[:xSize], wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer bufferX.Release()

	scratch := b.pool.acquire(resultSize, scratchUsage)
	defer b.pool.release(scratch)

	params := make([]byte, 16)
	//nolint:gosec // G115: sizes are non-negative
	binary.LittleEndian.PutUint32(params[0:4], uint32(outSize))
	//nolint:gosec // G115: sizes are non-negative
	binary.LittleEndian.PutUint32(params[4:8], uint32(dimSize))
	//nolint:gosec // G115: sizes are non-negative
	binary.LittleEndian.PutUint32(params[8:12], uint32(innerSize))
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferX, 0, xSize),
		wgpu.BufferBindingEntry(1, scratch.buffer, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferParams, 0, 16),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, outSize)

	return b.readBuffer(scratch.buffer, resultSize)
}

//go:build windows

// Package webgpu provides embedded WGSL compute shaders for tensor operations.
package webgpu

// WGSL compute shaders for the kernels the autodiff layer dispatches.
// Using string constants instead of embed for simplicity.

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

// addShader performs element-wise addition: result = a + b.
const addShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = a[idx] + b[idx];
    }
}
`

// maskedFillShader writes params.value into x wherever the mask is set. The
// mask repeats over x with period mask_size, matching trailing-dimension
// alignment on a contiguous layout. Serves both fill and zero kernels.
const maskedFillShader = `
@group(0) @binding(0) var<storage, read_write> x: array<f32>;
@group(0) @binding(1) var<storage, read> mask: array<u32>;

struct Params {
    size: u32,
    mask_size: u32,
    value: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size && mask[idx % params.mask_size] != 0u) {
        x[idx] = params.value;
    }
}
`

// maskedSumShader reduces x at masked positions into one partial sum per
// workgroup. The host adds up the partials.
const maskedSumShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read> mask: array<u32>;
@group(0) @binding(2) var<storage, read_write> partials: array<f32>;

struct Params {
    size: u32,
    mask_size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

var<workgroup> scratch: array<f32, 256>;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(local_invocation_id) local_id: vec3<u32>,
        @builtin(workgroup_id) group_id: vec3<u32>) {
    let idx = global_id.x;
    var v = 0.0;
    if (idx < params.size && mask[idx % params.mask_size] != 0u) {
        v = x[idx];
    }
    scratch[local_id.x] = v;
    workgroupBarrier();

    var stride = 128u;
    while (stride > 0u) {
        if (local_id.x < stride) {
            scratch[local_id.x] = scratch[local_id.x] + scratch[local_id.x + stride];
        }
        workgroupBarrier();
        stride = stride / 2u;
    }

    if (local_id.x == 0u) {
        partials[group_id.x] = scratch[0];
    }
}
`

// sumDimShader reduces one axis of a contiguous tensor. Each thread owns one
// output element: out index decomposes into (outer, inner) around the reduced
// axis, and the thread walks the dim_size inputs between them.
const sumDimShader = `
@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    out_size: u32,
    dim_size: u32,
    inner_size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx >= params.out_size) {
        return;
    }
    let outer = idx / params.inner_size;
    let inner = idx % params.inner_size;
    let base = outer * params.dim_size * params.inner_size + inner;

    var sum = 0.0;
    for (var k = 0u; k < params.dim_size; k = k + 1u) {
        sum = sum + x[base + k * params.inner_size];
    }
    result[idx] = sum;
}
`

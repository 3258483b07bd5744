// Copyright ©2024 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package strida provides GPU-style elementwise activation kernels for
// neural networks, executed on CPU through the GUDA launch model.
//
// STRIDA implements the forward and gradient kernels of the standard
// activation family (ReLU and its relatives, GELU) the way they are written
// for a GPU: flat buffers, grid-stride loops, fixed threads-per-block launch
// geometry, and vectorized half-precision packing with a scalar epilogue for
// odd element counts. The "device" is the host CPU; blocks are distributed
// across a worker pool and threads within a block run sequentially.
//
// Kernels are exposed as stateless functors over DevicePtr buffer views:
//
//	d_in, _ := strida.Malloc(n * 4)
//	d_out, _ := strida.Malloc(n * 4)
//	strida.Relu[float32](d_in, d_out, n)
//	strida.Synchronize()
//
// A launch that cannot be configured or dispatched is a programming or
// environment error, not a runtime condition: it aborts the process. A
// zero-length input is a successful no-op.
package strida

package strida

import (
	"k8s.io/klog/v2"
)

// Fixed thread-per-block constants per kernel family. These mirror the
// geometry the kernels were tuned with: the relu family saturates memory
// bandwidth with wide blocks, the gelu family is compute-bound and prefers
// narrower ones.
const (
	reluThreadPerBlock = 512
	geluThreadPerBlock = 256
)

// residentBlocksPerCore caps how many blocks the launcher schedules per CPU
// core. It stands in for GPU occupancy limits: grid-stride kernels cover the
// remaining elements by striding, so the cap never loses work.
const residentBlocksPerCore = 4

// LaunchConfig is a 1D launch geometry: how many blocks to launch and how
// many threads each block runs.
type LaunchConfig struct {
	BlockCount     int
	ThreadPerBlock int
}

// fixedBlockSizeConfig computes the launch geometry for workCount parallel
// iterations at a fixed block size, capped at the device occupancy limit.
// Every index in [0, workCount) is covered by at least one thread only when
// the kernel grid-strides; plain kernels must use uncappedConfig.
func fixedBlockSizeConfig(workCount, threadPerBlock int) LaunchConfig {
	if threadPerBlock <= 0 {
		klog.Fatalf("launch config: thread-per-block must be positive, got %d", threadPerBlock)
	}
	blockCount := divUp(workCount, threadPerBlock)
	maxBlocks := defaultDevice.NumCores * residentBlocksPerCore
	if blockCount > maxBlocks {
		blockCount = maxBlocks
	}
	return LaunchConfig{BlockCount: blockCount, ThreadPerBlock: threadPerBlock}
}

// uncappedConfig computes a geometry with exactly enough threads to give
// every index in [0, workCount) its own thread. Used by kernels that do a
// single bounds-checked store instead of a grid-stride loop.
func uncappedConfig(workCount, threadPerBlock int) LaunchConfig {
	if threadPerBlock <= 0 {
		klog.Fatalf("launch config: thread-per-block must be positive, got %d", threadPerBlock)
	}
	return LaunchConfig{BlockCount: divUp(workCount, threadPerBlock), ThreadPerBlock: threadPerBlock}
}

func divUp(a, b int) int {
	return (a + b - 1) / b
}

// mustLaunch dispatches fn with the given geometry on the default stream and
// aborts the process if the launch itself fails. A failed launch is a
// programming or environment error; there is no recoverable path.
func mustLaunch(op string, fn KernelFunc, cfg LaunchConfig) {
	grid := Dim3{X: cfg.BlockCount, Y: 1, Z: 1}
	block := Dim3{X: cfg.ThreadPerBlock, Y: 1, Z: 1}
	if err := LaunchFunc(fn, grid, block); err != nil {
		klog.Fatalf("%s: kernel launch failed: %+v", op, err)
	}
}

package strida

import "testing"

func TestDivUp(t *testing.T) {
	cases := []struct {
		a, b, want int
	}{
		{0, 512, 0},
		{1, 512, 1},
		{512, 512, 1},
		{513, 512, 2},
		{5, 2, 3},
		{4, 4, 1},
	}
	for _, tc := range cases {
		if got := divUp(tc.a, tc.b); got != tc.want {
			t.Errorf("divUp(%d, %d): expected %d, got %d", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestFixedBlockSizeConfig(t *testing.T) {
	cfg := fixedBlockSizeConfig(1000, reluThreadPerBlock)
	if cfg.ThreadPerBlock != reluThreadPerBlock {
		t.Errorf("expected %d threads per block, got %d", reluThreadPerBlock, cfg.ThreadPerBlock)
	}
	if cfg.BlockCount != 2 {
		t.Errorf("expected 2 blocks for 1000 items at 512/block, got %d", cfg.BlockCount)
	}

	// Small work gets a single block
	cfg = fixedBlockSizeConfig(1, reluThreadPerBlock)
	if cfg.BlockCount != 1 {
		t.Errorf("expected 1 block, got %d", cfg.BlockCount)
	}
}

func TestFixedBlockSizeConfigOccupancyCap(t *testing.T) {
	// A huge element count must be capped; grid-stride kernels pick up the
	// rest.
	maxBlocks := defaultDevice.NumCores * residentBlocksPerCore
	cfg := fixedBlockSizeConfig(1<<30, reluThreadPerBlock)
	if cfg.BlockCount > maxBlocks {
		t.Errorf("block count %d exceeds occupancy cap %d", cfg.BlockCount, maxBlocks)
	}
	if cfg.BlockCount < 1 {
		t.Errorf("expected at least one block, got %d", cfg.BlockCount)
	}
}

func TestUncappedConfigCoversAllIndices(t *testing.T) {
	for _, n := range []int{1, 255, 256, 257, 100000} {
		cfg := uncappedConfig(n, geluThreadPerBlock)
		if cfg.BlockCount*cfg.ThreadPerBlock < n {
			t.Errorf("n=%d: geometry %d×%d does not cover all indices",
				n, cfg.BlockCount, cfg.ThreadPerBlock)
		}
		// No more than one extra block worth of slack
		if cfg.BlockCount*cfg.ThreadPerBlock >= n+cfg.ThreadPerBlock {
			t.Errorf("n=%d: geometry %d×%d overshoots by a full block",
				n, cfg.BlockCount, cfg.ThreadPerBlock)
		}
	}
}

func TestLaunchRejectsInvalidGeometry(t *testing.T) {
	err := LaunchFunc(func(ThreadID, ...interface{}) {}, Dim3{X: -1, Y: 1, Z: 1}, Dim3{X: 256, Y: 1, Z: 1})
	if err == nil {
		t.Error("expected error for negative grid dimension")
	}

	err = LaunchFunc(func(ThreadID, ...interface{}) {}, Dim3{X: 1, Y: 1, Z: 1}, Dim3{})
	if err == nil {
		t.Error("expected error for empty block with non-empty grid")
	}
}

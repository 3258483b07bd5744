package strida

import (
	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks available CPU instruction set extensions
type CPUFeatures struct {
	HasAVX  bool
	HasAVX2 bool
	HasFMA  bool
	HasF16C bool
	HasSSE4 bool
}

// Global CPU feature detection
var cpuFeatures CPUFeatures

// useNativeHalf2 selects the packed half-pair path in ReluGradHalf. It is
// resolved exactly once, here, never per call: hardware with fast fp16
// convert plus wide integer compare takes the packed branch, everything else
// falls back to the unpacked two-wide float32 path.
var useNativeHalf2 bool

func init() {
	detectCPUFeatures()
	useNativeHalf2 = cpuFeatures.HasF16C && cpuFeatures.HasAVX2
}

// detectCPUFeatures populates the global cpuFeatures struct
func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4: cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:  cpu.X86.HasAVX,
		HasAVX2: cpu.X86.HasAVX2,
		HasFMA:  cpu.X86.HasFMA,
		// x/sys/cpu does not expose an F16C bit. Every AVX2+FMA part
		// ships F16C (it predates both in Intel and AMD lines), so it
		// is inferred from those.
		HasF16C: cpu.X86.HasAVX2 && cpu.X86.HasFMA,
	}
}

// HasPackedHalf reports whether the packed half-pair kernel path is active.
func HasPackedHalf() bool {
	return useNativeHalf2
}

// GetCPUInfo returns a string describing available CPU features
func GetCPUInfo() string {
	features := []string{}

	if cpuFeatures.HasSSE4 {
		features = append(features, "SSE4")
	}
	if cpuFeatures.HasAVX {
		features = append(features, "AVX")
	}
	if cpuFeatures.HasAVX2 {
		features = append(features, "AVX2")
	}
	if cpuFeatures.HasFMA {
		features = append(features, "FMA")
	}
	if cpuFeatures.HasF16C {
		features = append(features, "F16C")
	}

	if len(features) == 0 {
		return "No SIMD extensions detected"
	}

	result := "CPU features: "
	for i, f := range features {
		if i > 0 {
			result += ", "
		}
		result += f
	}
	return result
}

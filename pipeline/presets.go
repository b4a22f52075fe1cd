package pipeline

import "github.com/gltfpipe/glboptimize/internal/texture"

func ptrInt(v int) *int             { return &v }
func ptrFloat32(v float32) *float32 { return &v }

// FastPreset favors turnaround over size: clean plus a low-effort draco
// pass (spec §6 "Preset configurations").
func FastPreset() Options {
	return Options{
		Clean: CleanOptions{Enabled: true},
		Draco: DracoOptions{Enabled: true, CompressionLevel: ptrInt(3)},
	}
}

// BalancedPreset trades moderate processing time for a solid size
// reduction across geometry and textures.
func BalancedPreset() Options {
	return Options{
		Clean:    CleanOptions{Enabled: true},
		Merge:    MergeOptions{Enabled: true},
		Simplify: SimplifyOptions{Enabled: true, TargetRatio: ptrFloat32(0.75)},
		Draco:    DracoOptions{Enabled: true, CompressionLevel: ptrInt(7)},
		Texture:  TextureOptions{Enabled: true, Mode: texture.ModeETC1S, Quality: ptrInt(128)},
	}
}

// MaximumPreset favors final size over processing time.
func MaximumPreset() Options {
	return Options{
		Clean:    CleanOptions{Enabled: true},
		Merge:    MergeOptions{Enabled: true},
		Simplify: SimplifyOptions{Enabled: true, TargetRatio: ptrFloat32(0.5), Error: ptrFloat32(0.02)},
		Draco:    DracoOptions{Enabled: true, CompressionLevel: ptrInt(10)},
		Texture:  TextureOptions{Enabled: true, Mode: texture.ModeETC1S, Quality: ptrInt(80)},
	}
}

// Presets maps a preset name to its constructor, for the CLI shell and
// any caller that wants to resolve a name at runtime.
var Presets = map[string]func() Options{
	"fast":     FastPreset,
	"balanced": BalancedPreset,
	"maximum":  MaximumPreset,
}

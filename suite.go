package glprobe

// Fill colors used by the upload probes.
var (
	// Background is written to every texel before any buffer upload.
	Background = Pixel{0xFF, 0xFF, 0xFF, 0xFF}
	// BufferFill is the content of the pixel unpack buffer.
	BufferFill = Pixel{0x00, 0xFF, 0x00, 0xFF}
)

// DefaultSuite returns every probe in the order the harness runs them.
func DefaultSuite() []Scenario {
	swap := RedBlueSwap
	return []Scenario{
		SwizzleScenario{
			Label:       "swizzle",
			TextureSize: 64,
			Layers:      2,
			Swizzle:     &swap,
			DrawSize:    256,
		},
		SwizzleScenario{
			Label:       "swizzle-512",
			TextureSize: 512,
			Layers:      2,
			Swizzle:     &swap,
			DrawSize:    256,
		},
		// Without a swizzle textureSize must always be right; a failure here
		// means the size probe itself is broken on this driver.
		SwizzleScenario{
			Label:       "swizzle-baseline",
			TextureSize: 64,
			Layers:      2,
			DrawSize:    256,
		},
		UploadScenario{
			Label:       "PBO uploads",
			TextureSize: Extent3D{Width: 256, Height: 64, Layers: 1},
			Background:  Background,
			Fill:        BufferFill,
			Copies: []UploadRegion{
				{Origin: Origin3D{X: 128}, Width: 1, Height: 1, Offset: 16384, StrideTexels: 4},
			},
		},
		UploadScenario{
			Label:       "PBO uploads to layers",
			TextureSize: Extent3D{Width: 256, Height: 16, Layers: 2},
			Background:  Background,
			Fill:        BufferFill,
			Copies: []UploadRegion{
				{Origin: Origin3D{X: 16}, Width: 16, Height: 1, Offset: 512, StrideTexels: 16},
				{Origin: Origin3D{Layer: 1}, Width: 16, Height: 1, Offset: 0, StrideTexels: 16},
			},
			Untouched: []Origin3D{{}},
		},
	}
}

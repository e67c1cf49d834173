package canopy

import (
	"encoding/json"
	"fmt"
)

// TextureRegion describes a sub-rectangle within an atlas. Value type stored
// directly on nodes; it does not own the atlas and many regions may share one.
type TextureRegion struct {
	Atlas  AtlasID
	X, Y   uint16 // top-left corner within the atlas
	Width  uint16
	Height uint16
}

// NewRegion returns the region (x, y, w, h) of atlas.
func NewRegion(atlas AtlasID, x, y, w, h int) TextureRegion {
	return TextureRegion{Atlas: atlas, X: uint16(x), Y: uint16(y), Width: uint16(w), Height: uint16(h)}
}

// IsZero reports whether the region references nothing.
func (r TextureRegion) IsZero() bool {
	return r == TextureRegion{}
}

// Sub returns the region (x, y, w, h) relative to r's top-left corner.
func (r TextureRegion) Sub(x, y, w, h int) TextureRegion {
	return TextureRegion{
		Atlas:  r.Atlas,
		X:      r.X + uint16(x),
		Y:      r.Y + uint16(y),
		Width:  uint16(w),
		Height: uint16(h),
	}
}

// SplitHorizontal cuts r into n equal frames laid out left to right, as in
// a horizontal sprite-sheet strip. Panics if n <= 0.
func (r TextureRegion) SplitHorizontal(n int) []TextureRegion {
	if n <= 0 {
		panic("canopy: frame count must be positive")
	}
	w := int(r.Width) / n
	frames := make([]TextureRegion, n)
	for i := range frames {
		frames[i] = r.Sub(i*w, 0, w, int(r.Height))
	}
	return frames
}

// SplitVertical cuts r into n equal frames laid out top to bottom.
// Panics if n <= 0.
func (r TextureRegion) SplitVertical(n int) []TextureRegion {
	if n <= 0 {
		panic("canopy: frame count must be positive")
	}
	h := int(r.Height) / n
	frames := make([]TextureRegion, n)
	for i := range frames {
		frames[i] = r.Sub(0, i*h, int(r.Width), h)
	}
	return frames
}

// Grid cuts r into cols*rows equal frames in row-major order.
// Panics if cols or rows <= 0.
func (r TextureRegion) Grid(cols, rows int) []TextureRegion {
	if cols <= 0 || rows <= 0 {
		panic("canopy: grid dimensions must be positive")
	}
	w := int(r.Width) / cols
	h := int(r.Height) / rows
	frames := make([]TextureRegion, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			frames = append(frames, r.Sub(x*w, y*h, w, h))
		}
	}
	return frames
}

// RegionSet holds the named regions of one atlas.
type RegionSet struct {
	Atlas   AtlasID
	regions map[string]TextureRegion
}

// Region returns the region for name. Unknown names return the zero region,
// which the traversal never draws.
func (s *RegionSet) Region(name string) (TextureRegion, bool) {
	r, ok := s.regions[name]
	return r, ok
}

// Len returns the number of named regions.
func (s *RegionSet) Len() int {
	return len(s.regions)
}

// Retarget returns a copy of the set pointing at another atlas with the same
// layout, as produced by a hot reload.
func (s *RegionSet) Retarget(atlas AtlasID) *RegionSet {
	out := &RegionSet{Atlas: atlas, regions: make(map[string]TextureRegion, len(s.regions))}
	for name, r := range s.regions {
		r.Atlas = atlas
		out.regions[name] = r
	}
	return out
}

// LoadRegions parses TexturePacker JSON data describing the frames of a
// single atlas. Supports both the hash format (single "frames" object) and
// the array format ("textures" array); for the array format only the first
// texture page is read.
func LoadRegions(jsonData []byte, atlas AtlasID) (*RegionSet, error) {
	// Probe top-level keys to detect format.
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("canopy: failed to parse atlas JSON: %w", err)
	}

	set := &RegionSet{Atlas: atlas, regions: make(map[string]TextureRegion)}

	var frames map[string]jsonFrame
	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("canopy: failed to parse atlas textures array: %w", err)
		}
		if len(textures) == 0 {
			return nil, fmt.Errorf("canopy: atlas JSON has an empty \"textures\" array")
		}
		frames = textures[0].Frames
	case probe.Frames != nil:
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("canopy: failed to parse atlas frames: %w", err)
		}
	default:
		return nil, fmt.Errorf("canopy: atlas JSON has neither \"frames\" nor \"textures\" key")
	}

	for name, f := range frames {
		if f.Rotated {
			return nil, fmt.Errorf("canopy: frame %q is rotated; pack atlases without rotation", name)
		}
		set.regions[name] = NewRegion(atlas, f.Frame.X, f.Frame.Y, f.Frame.W, f.Frame.H)
	}
	return set, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame   jsonRect `json:"frame"`
	Rotated bool     `json:"rotated"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

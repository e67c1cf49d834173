package canopy

import "fmt"

// Animation plays a sequence of regions at a fixed frame rate. It is the
// payload of an animated sprite node; Stage.Update advances it.
type Animation struct {
	Frames    []TextureRegion
	FrameTime float64 // seconds per frame
	Loop      bool

	elapsed float64
	index   int
	done    bool
}

// NewAnimation creates an animation playing frames at fps frames per second.
// Panics if frames is empty or fps is not positive.
func NewAnimation(frames []TextureRegion, fps float64, loop bool) *Animation {
	if len(frames) == 0 {
		panic("canopy: animation needs at least one frame")
	}
	if fps <= 0 {
		panic(fmt.Sprintf("canopy: animation frame rate %v must be positive", fps))
	}
	return &Animation{Frames: frames, FrameTime: 1 / fps, Loop: loop}
}

// Update advances playback by dt seconds. A non-looping animation holds its
// last frame once finished.
func (a *Animation) Update(dt float64) {
	if a.done || dt <= 0 || len(a.Frames) == 0 || a.FrameTime <= 0 {
		return
	}
	a.elapsed += dt
	for a.elapsed >= a.FrameTime {
		a.elapsed -= a.FrameTime
		if a.index+1 < len(a.Frames) {
			a.index++
			continue
		}
		if !a.Loop {
			a.done = true
			a.elapsed = 0
			return
		}
		a.index = 0
	}
}

// Frame returns the region currently shown.
func (a *Animation) Frame() TextureRegion {
	if len(a.Frames) == 0 {
		return TextureRegion{}
	}
	return a.Frames[min(a.index, len(a.Frames)-1)]
}

// Index returns the current frame index.
func (a *Animation) Index() int { return a.index }

// Done reports whether a non-looping animation has finished.
func (a *Animation) Done() bool { return a.done }

// Reset rewinds to the first frame.
func (a *Animation) Reset() {
	a.index = 0
	a.elapsed = 0
	a.done = false
}

// retarget points every frame at atlas. Returns whether any frame changed.
func (a *Animation) retarget(old, atlas AtlasID) bool {
	changed := false
	for i := range a.Frames {
		if a.Frames[i].Atlas == old {
			a.Frames[i].Atlas = atlas
			changed = true
		}
	}
	return changed
}

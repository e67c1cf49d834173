package canopy

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"golang.org/x/image/draw"
)

// Texture lifecycle errors.
var (
	ErrInvalidPixels = errors.New("canopy: pixel buffer does not match dimensions")
	ErrUnknownAtlas  = errors.New("canopy: unknown atlas")
	ErrAtlasEvicted  = errors.New("canopy: atlas already evicted")
)

// AtlasID is the logical identity of an atlas. IDs increase monotonically
// from 1 and are never reused.
type AtlasID uint32

// AtlasInfo describes an atlas known to the render goroutine.
type AtlasInfo struct {
	ID            AtlasID
	Width, Height int
	Resident      bool // uploaded and bindable
	RenderTarget  bool // created with CreateRenderTarget
}

type atlasState uint8

const (
	atlasResident atlasState = iota
	atlasFailed
	atlasEvicted
)

type atlasEntry struct {
	info   AtlasInfo
	state  atlasState
	handle TextureHandle
	pixels []byte // CPU-side cache; nil for render targets
}

type uploadTask struct {
	id            AtlasID
	pixels        []byte
	width, height int
}

// TextureEngine owns atlas lifecycles: CPU pixel buffers, the pending upload
// and eviction queues, and the AtlasID to GPU handle mapping.
//
// CreateAtlas may be called from any goroutine. Every other method must be
// called on the goroutine that owns the backend's GPU context.
type TextureEngine struct {
	backend Backend
	opts    TextureOptions

	// Shared with producer goroutines.
	lastID    atomic.Uint32
	uploads   *fifo[uploadTask]
	evictions *fifo[AtlasID]

	// Render goroutine only.
	atlases map[AtlasID]*atlasEntry
	evicted map[AtlasID]struct{} // evicted before their upload was flushed
	gone    idSet                // evictions that have been flushed
	taskBuf []uploadTask
	idBuf   []AtlasID
}

// NewTextureEngine creates an engine that uploads through backend with
// nearest filtering and mipmaps.
func NewTextureEngine(backend Backend) *TextureEngine {
	return &TextureEngine{
		backend:   backend,
		opts:      TextureOptions{Filter: FilterNearest, Mipmaps: true},
		uploads:   newFIFO[uploadTask](),
		evictions: newFIFO[AtlasID](),
		atlases:   make(map[AtlasID]*atlasEntry),
		evicted:   make(map[AtlasID]struct{}),
	}
}

// SetTextureOptions changes the options used for subsequent uploads.
func (e *TextureEngine) SetTextureOptions(opts TextureOptions) {
	e.opts = opts
}

// CreateAtlas accepts width*height*4 bytes of RGBA8 pixel data, assigns the
// next AtlasID, and queues the upload. No GPU call happens here; the atlas
// becomes bindable after the next FlushUploads. The engine takes ownership
// of pixels. Safe for concurrent use.
func (e *TextureEngine) CreateAtlas(pixels []byte, width, height int) (AtlasID, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return 0, fmt.Errorf("%w: %d bytes for %dx%d", ErrInvalidPixels, len(pixels), width, height)
	}
	// The ID is assigned and the task pushed under the queue lock so that
	// upload order always matches ID order.
	task := e.uploads.pushFunc(func() uploadTask {
		return uploadTask{id: AtlasID(e.lastID.Add(1)), pixels: pixels, width: width, height: height}
	})
	return task.id, nil
}

// CreateAtlasFromImage converts img to straight-alpha RGBA8 and queues it
// like CreateAtlas. Safe for concurrent use.
func (e *TextureEngine) CreateAtlasFromImage(img image.Image) (AtlasID, error) {
	b := img.Bounds()
	n := b.Dx() * b.Dy() * 4
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) || len(nrgba.Pix) < n {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Copy(nrgba, image.Point{}, img, b, draw.Src, nil)
	}
	// A sub-image of a taller parent still carries the parent's tail.
	return e.CreateAtlas(nrgba.Pix[:n:n], b.Dx(), b.Dy())
}

// PendingUploads returns the number of queued upload tasks.
func (e *TextureEngine) PendingUploads() int {
	return e.uploads.len()
}

// PendingEvictions returns the number of queued eviction tasks.
func (e *TextureEngine) PendingEvictions() int {
	return e.evictions.len()
}

// FlushUploads drains the upload queue in creation order, creating a GPU
// texture for each task. Tasks for atlases evicted while still queued are
// dropped. A failed upload is logged and leaves the atlas unbindable.
// Returns the number of textures created.
func (e *TextureEngine) FlushUploads() int {
	e.taskBuf = e.uploads.drain(e.taskBuf[:0])
	created := 0
	for i := range e.taskBuf {
		task := &e.taskBuf[i]
		if _, gone := e.evicted[task.id]; gone {
			delete(e.evicted, task.id)
			e.gone.add(task.id)
			task.pixels = nil
			continue
		}
		entry := &atlasEntry{
			info:   AtlasInfo{ID: task.id, Width: task.width, Height: task.height},
			pixels: task.pixels,
		}
		h, err := e.backend.CreateTexture(task.pixels, task.width, task.height, e.opts)
		if err != nil || h == 0 {
			Logger().Warn("canopy: atlas upload failed", "atlas", task.id, "err", err)
			entry.state = atlasFailed
		} else {
			if e.opts.Mipmaps {
				e.backend.GenerateMipmaps(h)
			}
			entry.handle = h
			entry.info.Resident = true
			created++
		}
		e.atlases[task.id] = entry
		task.pixels = nil
	}
	return created
}

// CreateRenderTarget allocates an empty drawable atlas immediately. Unlike
// CreateAtlas it calls the backend synchronously, so it must run on the
// render goroutine.
func (e *TextureEngine) CreateRenderTarget(width, height int) (AtlasID, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: render target %dx%d", ErrInvalidPixels, width, height)
	}
	h, err := e.backend.CreateRenderTarget(width, height)
	if err != nil {
		return 0, fmt.Errorf("canopy: create render target: %w", err)
	}
	id := AtlasID(e.lastID.Add(1))
	e.atlases[id] = &atlasEntry{
		info:   AtlasInfo{ID: id, Width: width, Height: height, Resident: true, RenderTarget: true},
		handle: h,
	}
	return id, nil
}

// Bind selects the atlas for drawing. It returns false without blocking when
// the atlas is still waiting for upload, failed to upload, or was evicted;
// callers must then skip the draw.
func (e *TextureEngine) Bind(id AtlasID) bool {
	h, ok := e.Handle(id)
	if !ok {
		return false
	}
	return e.backend.BindTexture(h)
}

// Handle returns the GPU handle of a resident atlas.
func (e *TextureEngine) Handle(id AtlasID) (TextureHandle, bool) {
	entry, ok := e.atlases[id]
	if !ok || entry.state != atlasResident {
		return 0, false
	}
	return entry.handle, true
}

// Atlas returns what the render goroutine knows about id. Atlases still in
// the upload queue, and atlases whose eviction was flushed, are not reported.
func (e *TextureEngine) Atlas(id AtlasID) (AtlasInfo, bool) {
	entry, ok := e.atlases[id]
	if !ok {
		return AtlasInfo{}, false
	}
	return entry.info, true
}

// Pixels returns the CPU-side pixel cache of an uploaded atlas.
// The returned slice must not be modified.
func (e *TextureEngine) Pixels(id AtlasID) ([]byte, bool) {
	entry, ok := e.atlases[id]
	if !ok || entry.pixels == nil {
		return nil, false
	}
	return entry.pixels, true
}

// EnqueueEviction marks the atlas for teardown at the next FlushEvictions.
// The atlas stops binding immediately. Evicting an atlas twice returns
// ErrAtlasEvicted; an ID that was never issued returns ErrUnknownAtlas.
func (e *TextureEngine) EnqueueEviction(id AtlasID) error {
	if id == 0 || uint32(id) > e.lastID.Load() {
		return fmt.Errorf("%w: %d", ErrUnknownAtlas, id)
	}
	if e.gone.has(id) {
		return fmt.Errorf("%w: %d", ErrAtlasEvicted, id)
	}
	entry, ok := e.atlases[id]
	switch {
	case ok && entry.state == atlasEvicted:
		return fmt.Errorf("%w: %d", ErrAtlasEvicted, id)
	case ok:
		entry.state = atlasEvicted
		entry.info.Resident = false
	default:
		// Still queued for upload.
		if _, gone := e.evicted[id]; gone {
			return fmt.Errorf("%w: %d", ErrAtlasEvicted, id)
		}
		e.evicted[id] = struct{}{}
	}
	e.evictions.push(id)
	return nil
}

// FlushEvictions drains the eviction queue, releasing GPU handles and CPU
// pixel caches. Flushed atlases are forgotten except for one bit recording
// that their ID was evicted. Returns the number of textures deleted.
func (e *TextureEngine) FlushEvictions() int {
	e.idBuf = e.evictions.drain(e.idBuf[:0])
	deleted := 0
	for _, id := range e.idBuf {
		entry, ok := e.atlases[id]
		if !ok {
			// Upload not flushed yet; FlushUploads drops it.
			continue
		}
		if entry.handle != 0 {
			e.backend.DeleteTexture(entry.handle)
			deleted++
		}
		delete(e.atlases, id)
		e.gone.add(id)
	}
	return deleted
}

// Known returns the number of atlases the render goroutine holds an entry
// for: resident, failed, or evicted but not yet flushed.
func (e *TextureEngine) Known() int {
	return len(e.atlases)
}

// idSet is a bitset over AtlasIDs.
type idSet []uint64

func (s *idSet) add(id AtlasID) {
	i := int(id / 64)
	for len(*s) <= i {
		*s = append(*s, 0)
	}
	(*s)[i] |= 1 << (id % 64)
}

func (s idSet) has(id AtlasID) bool {
	i := int(id / 64)
	return i < len(s) && s[i]&(1<<(id%64)) != 0
}

// Len returns the number of atlases that are resident.
func (e *TextureEngine) Len() int {
	n := 0
	for _, entry := range e.atlases {
		if entry.state == atlasResident {
			n++
		}
	}
	return n
}

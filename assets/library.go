package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/canopy"
)

// Atlas is one loaded image file.
type Atlas struct {
	Name          string // file name relative to the library directory
	ID            canopy.AtlasID
	Width, Height int
	// Regions holds the frames of the TexturePacker JSON file next to the
	// image (same base name, .json extension), or nil when there is none.
	Regions *canopy.RegionSet
}

// Region returns a named region, falling back to the whole image when the
// atlas has no region table or the name is empty.
func (a *Atlas) Region(name string) (canopy.TextureRegion, bool) {
	if name == "" {
		return canopy.NewRegion(a.ID, 0, 0, a.Width, a.Height), true
	}
	if a.Regions == nil {
		return canopy.TextureRegion{}, false
	}
	return a.Regions.Region(name)
}

// Library loads atlas images from one directory. Loading may run on any
// goroutine; it only queues uploads on the engine.
type Library struct {
	engine *canopy.TextureEngine
	dir    string

	mu      sync.Mutex
	atlases map[string]*Atlas
}

// NewLibrary returns a library reading files under dir.
func NewLibrary(engine *canopy.TextureEngine, dir string) *Library {
	return &Library{engine: engine, dir: dir, atlases: make(map[string]*Atlas)}
}

// Dir returns the library directory.
func (l *Library) Dir() string { return l.dir }

// Atlas returns a loaded atlas by name.
func (l *Library) Atlas(name string) (*Atlas, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.atlases[name]
	return a, ok
}

// Load decodes the named image, queues its upload, and records it.
func (l *Library) Load(name string) (*Atlas, error) {
	a, err := l.read(name)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.atlases[name] = a
	l.mu.Unlock()
	return a, nil
}

func (l *Library) read(name string) (*Atlas, error) {
	path := filepath.Join(l.dir, name)
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	id, err := l.engine.CreateAtlasFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("assets: %s: %w", name, err)
	}
	b := img.Bounds()
	a := &Atlas{Name: name, ID: id, Width: b.Dx(), Height: b.Dy()}

	jsonPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	data, err := os.ReadFile(jsonPath)
	switch {
	case err == nil:
		regions, err := canopy.LoadRegions(data, id)
		if err != nil {
			return nil, fmt.Errorf("assets: %s: %w", jsonPath, err)
		}
		a.Regions = regions
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("assets: read %s: %w", jsonPath, err)
	}
	return a, nil
}

// LoadAll loads names in parallel. The first failure cancels the rest and is
// returned; atlases already queued stay loaded.
func (l *Library) LoadAll(ctx context.Context, names ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := l.Load(name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	canopy.Logger().Info("assets: atlases queued", "count", len(names), "dir", l.dir)
	return nil
}

// LoadDir loads every image file directly under the library directory.
func (l *Library) LoadDir(ctx context.Context) error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("assets: read dir %s: %w", l.dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return l.LoadAll(ctx, names...)
}

// Reload decodes name again into a fresh atlas and records it in place of
// the old one. The old atlas is left alone; see ApplyChanges.
func (l *Library) Reload(name string) (old, updated *Atlas, err error) {
	prev, ok := l.Atlas(name)
	if !ok {
		return nil, nil, fmt.Errorf("assets: %s is not loaded", name)
	}
	a, err := l.read(name)
	if err != nil {
		return nil, nil, err
	}
	l.mu.Lock()
	l.atlases[name] = a
	l.mu.Unlock()
	return prev, a, nil
}

// ApplyChanges reloads every loaded atlas whose file changed, retargets the
// stage's sprites to the new atlas, and queues the old one for eviction.
// Must run on the render goroutine. Returns the number of atlases reloaded.
func (l *Library) ApplyChanges(stage *canopy.Stage, changed []string) int {
	reloaded := 0
	for _, path := range changed {
		name, err := filepath.Rel(l.dir, path)
		if err != nil {
			name = filepath.Base(path)
		}
		if _, ok := l.Atlas(name); !ok {
			continue
		}
		old, a, err := l.Reload(name)
		if err != nil {
			canopy.Logger().Warn("assets: reload failed", "atlas", name, "err", err)
			continue
		}
		nodes := stage.RetargetAtlas(old.ID, a.ID)
		if err := stage.Engine().EnqueueEviction(old.ID); err != nil {
			canopy.Logger().Warn("assets: evict replaced atlas", "atlas", name, "err", err)
		}
		canopy.Logger().Info("assets: hot reload applied", "atlas", name, "old", old.ID, "new", a.ID, "nodes", nodes)
		reloaded++
	}
	return reloaded
}

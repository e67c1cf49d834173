package assets

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/phanxgames/canopy"
)

// nopBackend accepts every call and hands out increasing handles.
type nopBackend struct {
	next    canopy.TextureHandle
	deleted []canopy.TextureHandle
}

func (b *nopBackend) CreateTexture([]byte, int, int, canopy.TextureOptions) (canopy.TextureHandle, error) {
	b.next++
	return b.next, nil
}
func (b *nopBackend) GenerateMipmaps(canopy.TextureHandle)          {}
func (b *nopBackend) BindTexture(h canopy.TextureHandle) bool       { return h != 0 }
func (b *nopBackend) DeleteTexture(h canopy.TextureHandle)          { b.deleted = append(b.deleted, h) }
func (b *nopBackend) SetViewport(int, int)                          {}
func (b *nopBackend) Clear(canopy.TextureHandle, canopy.Color)      {}
func (b *nopBackend) DrawQuads(canopy.TextureHandle, []canopy.Quad) {}
func (b *nopBackend) CreateRenderTarget(int, int) (canopy.TextureHandle, error) {
	b.next++
	return b.next, nil
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

const heroJSON = `{"frames":{"idle":{"frame":{"x":0,"y":0,"w":2,"h":2},"rotated":false}}}`

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.png", "B.PNG", "c.jpeg", "d.webp", "dir/e.tiff", "f.bmp"} {
		assert.True(t, IsImageFile(name), name)
	}
	for _, name := range []string{"a.json", "b", "c.png.txt", "d.svg"} {
		assert.False(t, IsImageFile(name), name)
	}
}

func TestWatchedPath(t *testing.T) {
	p, ok := watchedPath("/art/hero.png")
	assert.True(t, ok)
	assert.Equal(t, "/art/hero.png", p)

	p, ok = watchedPath("/art/hero.JSON")
	assert.True(t, ok)
	assert.Equal(t, "/art/hero.png", p)

	_, ok = watchedPath("/art/notes.txt")
	assert.False(t, ok)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), solid(3, 2, color.RGBA{R: 0xff, A: 0xff}))

	img, err := DecodeFile(filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	f, err := os.Create(filepath.Join(dir, "b.bmp"))
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, solid(4, 4, color.RGBA{B: 0xff, A: 0xff})))
	require.NoError(t, f.Close())
	img, err = DecodeFile(filepath.Join(dir, "b.bmp"))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = DecodeFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.png"), []byte("not an image"), 0o644))
	_, err = DecodeFile(filepath.Join(dir, "junk.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "junk.png")
}

func TestLibraryLoadDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "hero.png"), solid(4, 2, color.White))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero.json"), []byte(heroJSON), 0o644))
	writePNG(t, filepath.Join(dir, "tiles.png"), solid(8, 8, color.Black))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	engine := canopy.NewTextureEngine(&nopBackend{})
	lib := NewLibrary(engine, dir)
	require.NoError(t, lib.LoadDir(context.Background()))
	assert.Equal(t, 2, engine.PendingUploads())

	hero, ok := lib.Atlas("hero.png")
	require.True(t, ok)
	assert.Equal(t, 4, hero.Width)
	require.NotNil(t, hero.Regions)
	idle, ok := hero.Region("idle")
	require.True(t, ok)
	assert.Equal(t, canopy.NewRegion(hero.ID, 0, 0, 2, 2), idle)

	whole, ok := hero.Region("")
	require.True(t, ok)
	assert.Equal(t, canopy.NewRegion(hero.ID, 0, 0, 4, 2), whole)

	tiles, ok := lib.Atlas("tiles.png")
	require.True(t, ok)
	assert.Nil(t, tiles.Regions)
	_, ok = tiles.Region("anything")
	assert.False(t, ok)
	assert.NotEqual(t, hero.ID, tiles.ID)

	assert.Equal(t, 2, engine.FlushUploads())
	assert.True(t, engine.Bind(hero.ID))
}

func TestLibraryLoadErrors(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "bad.png"), solid(2, 2, color.White))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{nope"), 0o644))

	lib := NewLibrary(canopy.NewTextureEngine(&nopBackend{}), dir)
	_, err := lib.Load("bad.png")
	assert.Error(t, err, "broken region table")
	_, ok := lib.Atlas("bad.png")
	assert.False(t, ok)

	assert.Error(t, lib.LoadAll(context.Background(), "missing.png"))
	assert.Error(t, NewLibrary(nil, filepath.Join(dir, "nope")).LoadDir(context.Background()))

	_, _, err = lib.Reload("never-loaded.png")
	assert.Error(t, err)
}

func TestApplyChangesRetargetsSprites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	writePNG(t, path, solid(4, 4, color.White))

	backend := &nopBackend{}
	stage := canopy.NewStage(backend, canopy.DefaultConfig())
	lib := NewLibrary(stage.Engine(), dir)
	hero, err := lib.Load("hero.png")
	require.NoError(t, err)

	region, _ := hero.Region("")
	sprite := canopy.NewSprite("hero", region)
	stage.Root().AddChild(sprite)
	stage.Draw()

	writePNG(t, path, solid(8, 4, color.White))
	n := lib.ApplyChanges(stage, []string{path, filepath.Join(dir, "unknown.png")})
	assert.Equal(t, 1, n)

	updated, ok := lib.Atlas("hero.png")
	require.True(t, ok)
	assert.NotEqual(t, hero.ID, updated.ID)
	assert.Equal(t, 8, updated.Width)
	assert.Equal(t, updated.ID, sprite.Region.Atlas)
	assert.False(t, stage.Engine().Bind(hero.ID), "old atlas stops binding")

	stage.Draw()
	assert.Len(t, backend.deleted, 1, "old texture released at end of frame")
	assert.True(t, stage.Engine().Bind(updated.ID))
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hero.json"), []byte(heroJSON), 0o644))

	select {
	case got := <-w.Events:
		assert.Equal(t, filepath.Join(dir, "hero.png"), got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherReportsAfterLastWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("partial"), 0o644))
	time.Sleep(debounce / 3)
	lastWrite := time.Now()
	writePNG(t, path, solid(2, 2, color.White))

	select {
	case got := <-w.Events:
		assert.Equal(t, path, got)
		assert.GreaterOrEqual(t, time.Since(lastWrite), debounce, "reported before writes settled")
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	_, err = DecodeFile(path)
	assert.NoError(t, err, "the reported file is complete")

	select {
	case got := <-w.Events:
		t.Errorf("second report for %s", got)
	case <-time.After(3 * debounce):
	}
}

func TestWatcherCloseClosesChannels(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close is a no-op")

	_, ok := <-w.Events
	assert.False(t, ok)
	assert.Empty(t, w.Poll())
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

// Package canopy is a retained-mode 2D scene graph with streamed texture
// atlases and bitmap text.
//
// A [Stage] owns a tree of [Node] values and a [TextureEngine]. Once per
// frame [Stage.Draw] flushes pending texture uploads, clears the frame, walks
// the tree depth-first emitting textured quads, draws an optional cursor
// overlay, submits the quads to a [Backend] in batches, and finally flushes
// pending evictions. The Ebitengine backend lives in canopy/ebitengpu.
//
// # Quick start
//
//	stage := canopy.NewStage(backend, canopy.DefaultConfig())
//
//	id, _ := stage.Engine().CreateAtlas(pixels, 256, 256)
//	hero := canopy.NewSprite("hero", canopy.NewRegion(id, 0, 0, 32, 32))
//	hero.SetPosition(100, 50)
//	stage.Root().AddChild(hero)
//
//	// every frame
//	stage.Update(dt)
//	stage.Draw()
//
// # Scene graph
//
// Nodes come in a closed set of kinds: groups ([NewGroup]), sprites
// ([NewSprite]), animated sprites ([NewAnimatedSprite]) and bitmap text
// ([NewText]). Only groups hold children; the last child paints on top.
// A child's parent link is weak and attaching a node detaches it from its
// previous group first.
//
// Absolute transforms are recomputed on demand by walking the parent chain
// up to the stage root: positions are scaled by the parent's scale and then
// offset, scale and alpha multiply, rotation (in degrees) adds, and
// visibility is the AND of the chain. See [Node.Absolute].
//
// # Textures
//
// [TextureEngine.CreateAtlas] may be called from any goroutine. It assigns
// an [AtlasID] and queues the upload; the atlas becomes drawable after the
// next frame's flush. Sprites whose atlas is not yet resident, or was
// evicted, are silently skipped. Evicting an atlas twice is an error.
//
// # Text
//
// [BitmapFont] is an immutable glyph table over one atlas. [Layout] places
// glyphs left to right, breaking lines on '\n' and, when a bound width is
// set, once the cursor passes BoundWidth minus five glyph widths. Color runs
// can be given directly or parsed from inline markup with [ParseMarkup].
//
// # Logging
//
// canopy is silent unless a logger is installed with [SetLogger].
package canopy

// Command canopy-demo opens a window showing sprites, tiling, animated
// frames, and bitmap text drawn by canopy on Ebitengine.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/assets"
	"github.com/phanxgames/canopy/ebitengpu"
	"github.com/phanxgames/canopy/fontgen"
)

const tile = 16

func main() {
	configPath := flag.String("config", "", "YAML config file")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	canopy.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := canopy.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = canopy.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	backend := ebitengpu.New()
	stage := canopy.NewStage(backend, cfg)
	engine := stage.Engine()

	sheet, err := engine.CreateAtlas(checkerSheet(4), 4*tile, tile)
	if err != nil {
		log.Fatal(err)
	}
	frames := canopy.NewRegion(sheet, 0, 0, 4*tile, tile).SplitHorizontal(4)

	font, err := fontgen.Basic(engine)
	if err != nil {
		log.Fatal(err)
	}

	w, h := stage.Size()
	floor := canopy.NewSprite("floor", frames[0])
	floor.RepeatX = float64(w) / tile
	floor.Y = float64(h - tile)
	stage.Root().AddChild(floor)

	world := canopy.NewGroup("world")
	world.SetPosition(float64(w)/2, float64(h)/2)
	stage.Root().AddChild(world)

	spinner := canopy.NewAnimatedSprite("spinner", canopy.NewAnimation(frames, 6, true))
	spinner.SetScale(4, 4)
	world.AddChild(spinner)
	stage.AddTween(canopy.TweenRotation(spinner, 360, 4, ease.InOutQuad))

	title := canopy.NewText("title", "[yellow]canopy[] demo\n[#80c0ff]bitmap text[] with [red]color runs[]", font)
	title.Text.Markup = true
	title.Text.CacheAsSprite = true
	title.SetPosition(8, 8)
	stage.Root().AddChild(title)

	cursor := canopy.NewSprite("cursor", frames[3])
	cursor.Alpha = 0.8
	stage.SetCursor(cursor)

	var lib *assets.Library
	var watcher *assets.Watcher
	if dir := cfg.Assets.Dir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			lib = assets.NewLibrary(engine, dir)
			if err := lib.LoadDir(context.Background()); err != nil {
				log.Fatal(err)
			}
			if cfg.Assets.Watch {
				if watcher, err = assets.NewWatcher(dir); err != nil {
					log.Fatal(err)
				}
				defer watcher.Close()
			}
		}
	}

	err = ebitengpu.Run(stage, backend, ebitengpu.RunConfig{Title: "canopy demo", Resizable: true}, func(dt float64) error {
		mx, my := ebiten.CursorPosition()
		cursor.SetPosition(float64(mx), float64(my))
		if watcher != nil {
			lib.ApplyChanges(stage, watcher.Poll())
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
}

// checkerSheet builds a strip of n tile-sized frames, each a checkerboard in
// a different color.
func checkerSheet(n int) []byte {
	palette := [][3]byte{{0x3a, 0x7d, 0x44}, {0xd9, 0x8c, 0x3a}, {0x4a, 0x6f, 0xd9}, {0xf0, 0xf0, 0xf0}}
	w := n * tile
	pix := make([]byte, w*tile*4)
	for y := 0; y < tile; y++ {
		for x := 0; x < w; x++ {
			c := palette[(x/tile)%len(palette)]
			shade := byte(0xff)
			if (x/4+y/4)%2 == 1 {
				shade = 0xb0
			}
			i := (y*w + x) * 4
			pix[i] = byte(uint16(c[0]) * uint16(shade) / 0xff)
			pix[i+1] = byte(uint16(c[1]) * uint16(shade) / 0xff)
			pix[i+2] = byte(uint16(c[2]) * uint16(shade) / 0xff)
			pix[i+3] = 0xff
		}
	}
	return pix
}

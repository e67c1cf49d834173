package ebitengpu

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canopy"
)

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title     string `yaml:"title"`
	TPS       int    `yaml:"tps"` // ticks per second; 0 = ebiten default (60)
	Resizable bool   `yaml:"resizable"`
	Scale     int    `yaml:"scale"` // window size multiplier; 0 = 1
}

// Game adapts a canopy.Stage to ebiten.Game.
type Game struct {
	Stage   *canopy.Stage
	Backend *Backend

	// OnUpdate runs before the stage update each tick. Returning an error
	// ends the game loop.
	OnUpdate func(dt float64) error

	resizable bool
}

// Update advances the stage by one tick.
func (g *Game) Update() error {
	dt := 1 / float64(ebiten.TPS())
	if g.OnUpdate != nil {
		if err := g.OnUpdate(dt); err != nil {
			return err
		}
	}
	g.Stage.Update(dt)
	return nil
}

// Draw renders the stage into screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.Backend.SetScreen(screen)
	g.Stage.Draw()
}

// Layout returns the stage size, or resizes the stage to the window when
// the window is resizable.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.resizable && outsideWidth > 0 && outsideHeight > 0 {
		g.Stage.Resize(outsideWidth, outsideHeight)
	}
	return g.Stage.Size()
}

// Run opens a window and drives stage until the window closes or onUpdate
// returns an error. It blocks on the calling goroutine, which becomes the
// render goroutine.
func Run(stage *canopy.Stage, backend *Backend, cfg RunConfig, onUpdate func(dt float64) error) error {
	w, h := stage.Size()
	scale := max(cfg.Scale, 1)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(w*scale, h*scale)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	canopy.Logger().Info("ebitengpu: starting", "title", cfg.Title, "width", w, "height", h)
	return ebiten.RunGame(&Game{
		Stage:     stage,
		Backend:   backend,
		OnUpdate:  onUpdate,
		resizable: cfg.Resizable,
	})
}

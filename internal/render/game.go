// Package render draws snapshots with ebiten and turns mouse input into engine commands.
package render

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids-quadtree/internal/engine"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-quadtree/pkg/ui"
)

// maxTrianglesPerBatch keeps vertex indices inside uint16.
const maxTrianglesPerBatch = 65535 / 3

var (
	whiteImage   = ebiten.NewImage(3, 3)
	background   = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	emitterColor = color.RGBA{R: 120, G: 60, B: 200, A: 90}
	regionColor  = color.RGBA{R: 60, G: 160, B: 90, A: 120}
)

type Game struct {
	ctx    context.Context
	engine *engine.Engine
	logger log.Logger

	lastState *simulation.Snapshot
	width     int
	height    int

	// UI Controls
	panel                 *ui.Panel
	widgetEmitterRadius   *ui.Slider
	widgetEmitterShrink   *ui.Slider
	widgetPause           *ui.Checkbox
	widgetDisplayQuadtree *ui.Checkbox

	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	lastTick  time.Time
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame wires the control panel to e. The engine must already be running.
func NewGame(ctx context.Context, e *engine.Engine, cfg *simulation.Config, logger log.Logger) *Game {
	g := &Game{
		ctx:       ctx,
		engine:    e,
		logger:    logger,
		lastState: &simulation.Snapshot{}, // Avoid nil pointer
		width:     int(cfg.WorldWidth),
		height:    int(cfg.WorldHeight),
	}

	panel := ui.NewPanel("Controls", 10, 10, 220, 260)
	panel.AddSection("Emitters (click to spawn)")
	g.widgetEmitterRadius = panel.AddSlider("Radius", 10, 300, cfg.EmitterRadius)
	g.widgetEmitterShrink = panel.AddSlider("Shrink / tick", 0.1, 5, cfg.EmitterShrinkRate)
	panel.AddButton("Clear emitters", func() {
		if err := e.ClearEmitters(ctx); err != nil {
			logger.Warnf("clear emitters: %v", err)
		}
	})
	panel.EndSection()

	panel.AddSection("Simulation")
	g.widgetPause = panel.AddCheckbox("Pause", false)
	g.widgetDisplayQuadtree = panel.AddCheckbox("Show quadtree", false)
	panel.EndSection()
	g.panel = panel

	return g
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()
	if err := g.applyControls(); err != nil {
		return err
	}

	// Keep only the newest snapshot
	for drained := false; !drained; {
		select {
		case snap := <-g.engine.Snapshots():
			g.lastState = snap
		default:
			drained = true
		}
	}

	if g.widgetPause.Value {
		g.lastTick = time.Time{}
		return nil
	}
	dt := time.Second / time.Duration(max(ebiten.TPS(), 1))
	if !g.lastTick.IsZero() {
		dt = start.Sub(g.lastTick)
	}
	g.lastTick = start
	if err := g.engine.Tick(g.ctx, dt); err != nil {
		return fmt.Errorf("tick: %w", err)
	}
	return nil
}

func (g *Game) applyControls() error {
	if g.widgetEmitterRadius.Changed() || g.widgetEmitterShrink.Changed() {
		if err := g.engine.SetEmitterDefaults(g.ctx, g.widgetEmitterRadius.Value, g.widgetEmitterShrink.Value); err != nil {
			return err
		}
	}
	if g.widgetDisplayQuadtree.Changed() {
		if err := g.engine.SetOverlay(g.ctx, g.widgetDisplayQuadtree.Value); err != nil {
			return err
		}
	}
	g.widgetPause.Changed()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if !g.panel.Contains(mx, my) {
			if err := g.engine.SpawnEmitter(g.ctx, float64(mx), float64(my)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)
	snap := g.lastState

	for _, r := range snap.Regions {
		vector.StrokeRect(screen,
			float32(r.MinX()), float32(r.MinY()),
			float32(2*r.HalfWidth), float32(2*r.HalfHeight),
			1, regionColor, false)
	}

	for _, e := range snap.Emitters {
		vector.FillCircle(screen, float32(e.Position.X), float32(e.Position.Y), float32(e.Radius), emitterColor, true)
	}

	g.drawAgents(screen, snap.Agents)

	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nTick:     %d\nAgents:   %d\nEmitters: %d\nStep:   %.2fms\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		snap.Tick,
		len(snap.Agents),
		len(snap.Emitters),
		float64(snap.Stats.Duration.Microseconds())/1000.0,
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, g.width-160, 10)
}

// drawAgents batches all agent triangles into as few DrawTriangles calls as possible.
func (g *Game) drawAgents(screen *ebiten.Image, agents []simulation.AgentView) {
	op := &ebiten.DrawTrianglesOptions{}
	for len(agents) > 0 {
		n := min(len(agents), maxTrianglesPerBatch)
		g.vertices = g.vertices[:0]
		g.indices = g.indices[:0]
		for i, a := range agents[:n] {
			for _, p := range a.Triangle() {
				g.vertices = append(g.vertices, ebiten.Vertex{
					DstX: float32(p.X), DstY: float32(p.Y),
					SrcX: 1, SrcY: 1,
					ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
				})
			}
			base := uint16(3 * i)
			g.indices = append(g.indices, base, base+1, base+2)
		}
		screen.DrawTriangles(g.vertices, g.indices, whiteImage, op)
		agents = agents[n:]
	}
}

// Layout follows the window size and resizes the world when it changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != g.width || outsideHeight != g.height) {
		g.width, g.height = outsideWidth, outsideHeight
		if err := g.engine.Resize(g.ctx, float64(outsideWidth), float64(outsideHeight)); err != nil {
			g.logger.Warnf("resize: %v", err)
		}
	}
	return g.width, g.height
}

func init() {
	whiteImage.Fill(color.RGBA{R: 100, G: 200, B: 255, A: 255})
}

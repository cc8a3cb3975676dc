package main

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"

	"github.com/ebitenui/ebitenui"

	"github.com/pcallahan/gridstage/anim"
	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/motion"
	"github.com/pcallahan/gridstage/scene"
	"github.com/pcallahan/gridstage/token"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	boardWidth  = 24
	boardHeight = 14
	tilePx      = 44

	boardOffsetX = 20
	boardOffsetY = 40

	frameDT = 1.0 / 60.0
)

type Game struct {
	frames int

	stage   *scene.Stage
	board   *grid.Board
	terrain *grid.HeightField
	coord   *motion.Coordinator
	ui      *ebitenui.UI
	watch   *anim.Watcher

	// nil means pick speed from route distance.
	speed       *motion.SpeedMode
	diagnostics bool
	clipboard   bool
	status      string
}

func NewGame(configPath, profilesPath string, clipboardReady bool) (*Game, error) {
	cfg := motion.DefaultConfig()
	if configPath != "" {
		loaded, err := motion.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	profiles := anim.NewLibrary()
	if profilesPath != "" {
		loaded, err := anim.LoadLibrary(profilesPath)
		if err != nil {
			log.Printf("failed to load profiles %s: %v", profilesPath, err)
		} else {
			profiles = loaded
		}
	}

	board := grid.NewBoard(boardWidth, boardHeight)
	terrain := buildDemoTerrain(board)
	stage := scene.NewStage()

	coord, err := motion.NewCoordinator(motion.Params{
		Board:    board,
		Terrain:  terrain,
		Stage:    stage,
		Clips:    demoClips(),
		Profiles: profiles,
		Models:   &scene.StaticModelSource{},
		Config:   cfg,
	})
	if err != nil {
		return nil, err
	}

	g := &Game{
		stage:     stage,
		board:     board,
		terrain:   terrain,
		coord:     coord,
		clipboard: clipboardReady,
		status:    "click a token, then click a tile",
	}
	g.ui = NewPanelUI(g)

	for _, spot := range [][2]int{{2, 3}, {4, 10}, {18, 6}} {
		h := coord.PlaceToken("grunt", spot[0], spot[1])
		if !coord.SelectedToken().Valid() {
			coord.SetSelectedToken(h)
		}
	}

	if profilesPath != "" {
		watch, err := anim.NewWatcher(filepath.Dir(profilesPath))
		if err != nil {
			log.Printf("profile watch: %v", err)
		} else {
			g.watch = watch
		}
	}

	return g, nil
}

func (g *Game) Close() {
	if g.watch != nil {
		_ = g.watch.Close()
	}
	g.coord.Close()
}

// buildDemoTerrain lays out a plateau with a cliff tall enough to exercise
// every landing variant, plus a low shelf reachable by climbing.
func buildDemoTerrain(board *grid.Board) *grid.HeightField {
	terrain := grid.NewHeightField(board.Width, board.Height)
	terrain.Fill(0, 0, 7, 13, 12)  // 6 world units: hard landing off the east edge
	terrain.Fill(0, 0, 3, 6, 20)   // 10 world units: roll territory
	terrain.Fill(14, 2, 17, 5, 4)  // 2 world units: climbable shelf
	terrain.Fill(10, 9, 12, 11, 1) // half-unit bump, plain walking
	return terrain
}

func demoClips() *anim.Registry {
	set := anim.NewSet()
	for _, clip := range []*anim.Clip{
		{Name: "idle", Duration: 1, Loop: true},
		{Name: "walk", Duration: 0.8, Loop: true},
		{Name: "climb", Duration: 1.2, Loop: true},
		{Name: "fall_loop", Duration: 0.6, Loop: true},
		{Name: "land", Duration: 0.35, RootMotion: grid.Vec3{Z: 0.1}},
		{Name: "land_hard", Duration: 0.6, RootMotion: grid.Vec3{Z: 0.25}},
		{Name: "roll", Duration: 0.7, RootMotion: grid.Vec3{Z: 0.6}},
	} {
		set.Register(clip)
	}
	registry := anim.NewRegistry()
	registry.Register("grunt", set)
	return registry
}

func (g *Game) Update() error {
	g.frames++

	g.drainProfileReloads()
	g.handleInput()
	g.ui.Update()
	g.stage.Step(frameDT)

	return nil
}

func (g *Game) drainProfileReloads() {
	if g.watch == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watch.Events:
			if !ok {
				g.watch = nil
				return
			}
			if err := g.coord.ReloadProfiles(name); err != nil {
				log.Printf("reload %s: %v", name, err)
				continue
			}
			g.status = "profiles reloaded"
		case err, ok := <-g.watch.Errors:
			if !ok {
				g.watch = nil
				return
			}
			log.Printf("profile watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) handleInput() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		if gx, gy, ok := g.cellAt(mx, my); ok {
			g.clickCell(gx, gy)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.coord.StopToken(g.coord.SelectedToken())
		g.status = "stop"
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.setDiagnostics(!g.diagnostics)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyLog()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.coord.RotateToken(g.coord.SelectedToken(), 0.4)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.coord.RotateToken(g.coord.SelectedToken(), -0.4)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.coord.SetFacingLeft(!g.coord.FacingLeft())
	}
}

func (g *Game) clickCell(gx, gy int) {
	// Clicking a token selects it; clicking ground routes the selection.
	var clicked token.Handle
	g.coord.Tokens().Each(func(h token.Handle, tok *token.Token) {
		if tok.GridX == gx && tok.GridY == gy {
			clicked = h
		}
	})
	if clicked.Valid() {
		g.coord.SetSelectedToken(clicked)
		g.status = fmt.Sprintf("selected token %d", clicked.ID)
		return
	}

	selected := g.coord.SelectedToken()
	if !selected.Valid() {
		return
	}
	res := g.coord.NavigateToGrid(selected, gx, gy, motion.NavigateOptions{PreferredSpeed: g.speed})
	if res == nil {
		g.status = "unreachable"
		return
	}
	g.status = fmt.Sprintf("%s to %d,%d", res.Speed, gx, gy)
	if res.Climb != nil {
		g.status += " (climb)"
	}
}

func (g *Game) setDiagnostics(on bool) {
	g.diagnostics = on
	g.coord.SetPathingLoggingEnabled(on)
	if on {
		g.status = "diagnostics on"
	} else {
		g.status = "diagnostics off"
	}
}

func (g *Game) copyLog() {
	dump := g.coord.PathingLogDump()
	if dump == "" {
		g.status = "log empty"
		return
	}
	if !g.clipboard {
		g.status = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(dump))
	g.status = "log copied"
}

func (g *Game) cellAt(mx, my int) (int, int, bool) {
	gx := (mx - boardOffsetX) / tilePx
	gy := (my - boardOffsetY) / tilePx
	if mx < boardOffsetX || my < boardOffsetY || !g.board.InBounds(gx, gy) {
		return 0, 0, false
	}
	return gx, gy, true
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawBoard(screen)
	g.drawTokens(screen)
	if g.diagnostics {
		g.drawDiagnostics(screen)
	}
	g.ui.Draw(screen)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f    %s", ebiten.ActualFPS(), g.status))
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	for gy := 0; gy < g.board.Height; gy++ {
		for gx := 0; gx < g.board.Width; gx++ {
			level := g.terrain.TerrainHeight(gx, gy)
			shade := uint8(60 + min(level*8, 140))
			px := float32(boardOffsetX + gx*tilePx)
			py := float32(boardOffsetY + gy*tilePx)
			vector.DrawFilledRect(screen, px, py, tilePx-1, tilePx-1,
				color.NRGBA{R: shade, G: shade, B: shade / 2, A: 255}, false)
		}
	}
}

func (g *Game) drawTokens(screen *ebiten.Image) {
	selected := g.coord.SelectedToken()
	g.coord.Tokens().Each(func(h token.Handle, tok *token.Token) {
		pos := tok.World
		if tok.Mesh != nil {
			pos = tok.Mesh.WorldPosition()
		}
		px, py := g.worldToScreen(pos)

		body := colornames.Steelblue
		if h == selected {
			body = colornames.Orange
		}
		vector.DrawFilledCircle(screen, px, py, tilePx*0.3, body, true)

		dir := grid.FacingDir(tok.FacingAngle)
		tipX := px + float32(dir.X)*tilePx*0.45
		tipY := py + float32(dir.Y)*tilePx*0.45
		vector.StrokeLine(screen, px, py, tipX, tipY, 2, colornames.White, true)

		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.1f", pos.Y), int(px)-8, int(py)-tilePx/2-12)
	})
}

func (g *Game) drawDiagnostics(screen *ebiten.Image) {
	events := g.coord.PathingLogArchive()
	start := 0
	if len(events) > 12 {
		start = len(events) - 12
	}
	y := boardOffsetY
	for _, ev := range events[start:] {
		ebitenutil.DebugPrintAt(screen, ev.String(), baseWidth-430, y)
		y += 14
	}
}

func (g *Game) worldToScreen(p grid.Vec3) (float32, float32) {
	x := boardOffsetX + p.X*tilePx
	y := boardOffsetY + p.Z*tilePx
	return float32(x), float32(y)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

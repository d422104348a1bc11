package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/inamate/spider/internal/config"
	"github.com/inamate/spider/internal/document"
	"github.com/inamate/spider/internal/engine"
	"github.com/inamate/spider/internal/render"
	"github.com/inamate/spider/internal/spider"
)

const statusRows = 1

var statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)

type App struct {
	screen   tcell.Screen
	engine   *engine.Engine
	renderer *render.TerminalRenderer
	pointer  pointer
	log      *slog.Logger

	drawn uint64
}

// NewApp initializes screen and binds it to e.
func NewApp(screen tcell.Screen, e *engine.Engine, logger *slog.Logger) (*App, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()

	return &App{
		screen:   screen,
		engine:   e,
		renderer: render.NewTerminalRenderer(screen, render.DefaultCamera()),
		log:      logger,
	}, nil
}

func (a *App) apply(in engine.Intent) {
	if err := a.engine.Apply(in); err != nil {
		a.log.Debug("intent rejected", "kind", in.Kind, "error", err)
	}
}

func (a *App) dump() {
	for _, j := range a.engine.Joints() {
		a.log.Info("joint", "name", j.Name, "depth", j.Depth, "angles", j.Angles, "selected", j.Selected)
	}
}

func (a *App) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		in, cmd := mapKey(ev, a.engine.Rig().PartOrder)
		switch cmd {
		case cmdQuit:
			return false
		case cmdDump:
			a.dump()
		case cmdIntent:
			a.apply(in)
		}

	case *tcell.EventMouse:
		w, h := a.screen.Size()
		if h -= statusRows; w <= 0 || h <= 0 {
			return true
		}
		for _, in := range a.pointer.mapMouse(ev, w, h) {
			a.apply(in)
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.drawn = 0
	}
	return true
}

func (a *App) draw() {
	if a.engine.Version() == a.drawn {
		return
	}
	a.drawn = a.engine.Version()

	a.renderer.Begin(statusRows)
	a.engine.Frame(a.renderer)

	st := a.engine.State()
	_, h := a.screen.Size()
	status := fmt.Sprintf(" axis %s | side %s | pose %s | legs %v | %d selected | t pose  c stop  r view  q quit ",
		st.Axis, st.Side, poseName(st.Pose), st.Legs, len(st.Selected))
	render.DrawText(a.screen, 0, h-1, status, statusStyle)

	a.screen.Show()
}

func poseName(p string) string {
	if p == "" {
		return "rest"
	}
	return p
}

func (a *App) Run(fps int) {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	a.draw()
	for {
		select {
		case ev := <-eventChan:
			if !a.handleInput(ev) {
				return
			}
		case <-ticker.C:
			a.engine.Update()
			a.draw()
		}
	}
}

func (a *App) Close() {
	a.screen.Fini()
}

func main() {
	logFile := flag.String("log", "", "write logs to this file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var logger *slog.Logger
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.Level()}))
	} else {
		logger = slog.New(slog.DiscardHandler)
	}
	slog.SetDefault(logger)

	library, err := document.LoadLibrary(cfg.PosesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load poses: %v\n", err)
		os.Exit(1)
	}

	e := engine.NewEngine(spider.Build(), library, engine.Options{
		RotationStep: cfg.RotationStep,
		ViewStep:     cfg.ViewStep,
		Logger:       logger,
	})

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	app, err := NewApp(screen, e, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Run(cfg.FPS)
}

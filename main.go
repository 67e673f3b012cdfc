package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	fyneapp "fyne.io/fyne/v2/app"

	"ClassroomBoard/internal/board"
	"ClassroomBoard/internal/client"
	"ClassroomBoard/internal/config"
	"ClassroomBoard/internal/logger"
	boardnet "ClassroomBoard/internal/net"
	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/state"
	"ClassroomBoard/internal/ui"
	"ClassroomBoard/internal/validate"
)

const (
	appID           = "com.classroomboard.app"
	discoverTimeout = 5 * time.Second
)

func main() {
	conf, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	lg := logger.New(conf)
	if f, ok := lg.(interface{ Flush() }); ok {
		defer f.Flush()
	}

	args := os.Args
	if len(args) > 1 && strings.HasPrefix(args[1], boardnet.CustomURLScheme) {
		runViewer(conf, lg, args[1])
	} else {
		runPresenter(conf, lg)
	}
}

func newSurfaces(conf *config.Config, n board.Notifier) (slide, whiteboard *board.Surface) {
	slide = board.New(board.Options{
		Name:        ui.ElementSlide,
		Width:       conf.Slide.Width,
		Height:      conf.Slide.Height,
		LineWidth:   conf.Slide.LineWidth,
		StrokeColor: conf.Pen.Color,
		Notifier:    n,
	})
	whiteboard = board.New(board.Options{
		Name:        ui.ElementWhiteboard,
		Width:       conf.Whiteboard.Width,
		Height:      conf.Whiteboard.Height,
		LineWidth:   conf.Whiteboard.LineWidth,
		StrokeColor: conf.Pen.Color,
		Notifier:    n,
	})
	return slide, whiteboard
}

func runPresenter(conf *config.Config, lg logger.Logger) {
	lg.Info("[MAIN] Starting as PRESENTER")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	toasts := ui.NewToastLayer()
	notifier := notify.New(toasts, conf.Notify.Duration, lg)
	defer notifier.Close()

	store := state.NewClassroomStore()
	slide, whiteboard := newSurfaces(conf, notifier)

	cl, err := client.New(
		client.Options{BaseURL: conf.Server.URL, ClassID: conf.Server.ClassID, Timeout: conf.Server.Timeout},
		client.Deps{
			Store:     store,
			Notifier:  notifier,
			Validator: validate.New(store, notifier),
			Saver:     client.DirSaver{Dir: conf.Export.Dir},
			Log:       lg,
		},
	)
	if err != nil {
		lg.Warn("[MAIN] Backend features disabled", err)
		cl = nil
	}

	shareLink := ""
	if conf.Mirror.Enabled {
		hub := boardnet.NewHub(snapshotOf(lg, slide, whiteboard), lg)
		for _, s := range []*board.Surface{slide, whiteboard} {
			publish(hub, s)
		}
		defer hub.Close()

		mux := http.NewServeMux()
		mux.Handle(boardnet.MirrorPath, hub)
		srv := &http.Server{Addr: fmt.Sprintf(":%d", conf.Mirror.Port), Handler: mux}
		go func() {
			lg.Info(fmt.Sprintf("[MAIN] Mirror listening on port %d", conf.Mirror.Port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				lg.Error("[MAIN] Mirror server stopped", err)
			}
		}()
		defer srv.Close()

		if server, err := boardnet.Advertise(conf.Mirror.Port); err != nil {
			lg.Warn("[MAIN] mDNS advertisement failed", err)
		} else {
			defer server.Shutdown()
		}

		ip, err := boardnet.GetOutgoingIP(conf.Network.RouteAddr)
		if err != nil {
			lg.Warn("[MAIN] Could not determine local IP", err)
			ip = "127.0.0.1"
		}
		shareLink = boardnet.ShareLink(ip, conf.Mirror.Port)
		lg.Info("[MAIN] Share link: " + shareLink)
	}

	monitor := boardnet.NewStatusMonitor(func() bool {
		return boardnet.Online(conf.Network.RouteAddr)
	}, conf.Network.CheckInterval, notifier, lg)
	go monitor.Run(ctx)

	a := ui.NewApp(fyneapp.NewWithID(appID), ui.Options{
		Config:     conf,
		Log:        lg,
		Notifier:   notifier,
		Toasts:     toasts,
		Client:     cl,
		Store:      store,
		Slide:      slide,
		Whiteboard: whiteboard,
		ShareLink:  shareLink,
	})
	a.Run()
}

// publish forwards every change of s to the mirror viewers.
func publish(hub *boardnet.Hub, s *board.Surface) {
	name := s.Name()
	s.OnSegment = hub.PublishSegment
	s.OnClear = func() { hub.PublishClear(name) }
	s.OnSlide = func(img image.Image) { hub.PublishSlide(name, img) }
}

// snapshotOf brings a new viewer up to date: the slide first, so that a
// later clear on the viewer redraws it, then the current raster.
func snapshotOf(lg logger.Logger, surfaces ...*board.Surface) func() []boardnet.Message {
	return func() []boardnet.Message {
		var msgs []boardnet.Message
		for _, s := range surfaces {
			if slide := s.Slide(); slide != nil {
				if data, err := boardnet.EncodeImage(slide); err == nil {
					msgs = append(msgs, boardnet.Message{Type: boardnet.TypeSlide, Surface: s.Name(), Image: data})
				} else {
					lg.Error("[MAIN] Failed to encode slide", err)
				}
			}
			data, err := boardnet.EncodeImage(s.Snapshot())
			if err != nil {
				lg.Error("[MAIN] Failed to encode snapshot", err)
				continue
			}
			msgs = append(msgs, boardnet.Message{Type: boardnet.TypeSnapshot, Surface: s.Name(), Image: data})
		}
		return msgs
	}
}

func runViewer(conf *config.Config, lg logger.Logger, link string) {
	lg.Info("[MAIN] Starting as VIEWER")
	toasts := ui.NewToastLayer()
	notifier := notify.New(toasts, conf.Notify.Duration, lg)
	defer notifier.Close()

	slide, whiteboard := newSurfaces(conf, notifier)
	viewer := boardnet.NewViewer(map[string]boardnet.Surface{
		slide.Name():      slide,
		whiteboard.Name(): whiteboard,
	}, lg)

	a := ui.NewApp(fyneapp.NewWithID(appID), ui.Options{
		Config:     conf,
		Log:        lg,
		Notifier:   notifier,
		Toasts:     toasts,
		Slide:      slide,
		Whiteboard: whiteboard,
		ReadOnly:   true,
	})
	go connectToPresenter(a, viewer, link, lg)
	a.Run()
}

func connectToPresenter(a *ui.App, viewer *boardnet.Viewer, link string, lg logger.Logger) {
	ctx := a.Context()
	time.Sleep(500 * time.Millisecond) // Give UI time to launch

	if strings.Trim(strings.TrimPrefix(link, boardnet.CustomURLScheme), "/") == "" {
		a.SetStatus("Looking for a presenter...")
		addr, err := boardnet.Discover(ctx, discoverTimeout)
		if err != nil {
			lg.Warn("[MAIN] Discovery failed", err)
			a.SetStatus(fmt.Sprintf("No presenter found: %v", err))
			return
		}
		link = boardnet.CustomURLScheme + addr
	}

	wsURL, err := boardnet.ParseLink(link)
	if err != nil {
		a.SetStatus(err.Error())
		return
	}
	conn, err := boardnet.Dial(ctx, wsURL)
	if err != nil {
		lg.Warn("[MAIN] Connection failed", err)
		a.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		return
	}
	a.SetStatus("Connected to presenter " + strings.TrimPrefix(link, boardnet.CustomURLScheme))

	if err := viewer.Run(ctx, conn); err != nil && ctx.Err() == nil {
		lg.Warn("[MAIN] Disconnected from presenter", err)
		a.SetStatus(fmt.Sprintf("Disconnected from presenter: %v", err))
	}
}

// Package ui is the Fyne window: the slide and whiteboard surfaces, the tool
// bar, the roster panel, the class timer and notification toasts.
package ui

import (
	"context"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ClassroomBoard/internal/board"
	"ClassroomBoard/internal/client"
	"ClassroomBoard/internal/config"
	"ClassroomBoard/internal/export"
	"ClassroomBoard/internal/logger"
	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/shortcut"
	"ClassroomBoard/internal/state"
	"ClassroomBoard/internal/timer"
)

// Element ids that can be configured out with ui.hide.
const (
	ElementSlide       = "pptCanvas"
	ElementWhiteboard  = "whiteboard"
	ElementColorPicker = "colorPicker"
	ElementQuestion    = "questionText"
	ElementStudentName = "studentName"
	ElementTimer       = "classroomTimer"
)

const (
	msgSlideFailed = "Failed to load slide"
	msgPDFDone     = "PDF exported"
	msgPDFFailed   = "Failed to export PDF"
)

// Layout holds the named elements of the window. Any of them may be nil,
// in which case the feature behind it is skipped.
type Layout struct {
	Slide       *SurfaceWidget
	Whiteboard  *SurfaceWidget
	ColorPicker *widget.Entry
	Question    *widget.Label
	StudentName *widget.Entry
	Timer       *widget.Label
}

type Options struct {
	Config     *config.Config
	Log        logger.Logger
	Notifier   *notify.Service
	Toasts     *ToastLayer
	Client     *client.Client // nil disables the backend features
	Store      *state.ClassroomStore
	Slide      *board.Surface
	Whiteboard *board.Surface
	ShareLink  string
	ReadOnly   bool // mirror viewer
}

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	opts    Options
	ctx     context.Context
	cancel  context.CancelFunc

	Layout      Layout
	tabs        *container.AppTabs
	surfaces    []*SurfaceWidget
	controllers []*board.ToolController
	toolbar     *Toolbar
	roster      *Roster
	timer       *timer.Timer
	timerAction *widget.ToolbarAction
	shortcuts   *shortcut.Dispatcher
	status      *widget.Label
}

// labelDisplay shows timer ticks on a label from the ticker goroutine.
type labelDisplay struct {
	label *widget.Label
}

func (d labelDisplay) SetText(text string) {
	fyne.Do(func() { d.label.SetText(text) })
}

func NewApp(fa fyne.App, opts Options) *App {
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.Store == nil {
		opts.Store = state.NewClassroomStore()
	}
	if opts.Notifier == nil {
		var sink notify.Sink
		if opts.Toasts != nil {
			sink = opts.Toasts
		}
		opts.Notifier = notify.New(sink, opts.Config.Notify.Duration, opts.Log)
	}
	if opts.Toasts != nil {
		n := opts.Notifier
		opts.Toasts.OnDismiss = func(id string) { n.Dismiss(id) }
	}
	conf := opts.Config

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		fyneApp:   fa,
		window:    fa.NewWindow(conf.AppName),
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		shortcuts: shortcut.NewDispatcher(),
		status:    widget.NewLabel(""),
	}
	a.window.Resize(fyne.NewSize(1280, 800))

	a.buildSurfaces()
	a.buildTimer()
	a.bindShortcuts()

	var center fyne.CanvasObject = widget.NewLabel("No drawing surface configured")
	if a.tabs != nil {
		center = a.tabs
		if a.toolbar != nil {
			center = container.NewBorder(a.toolbar.Object(), nil, nil, nil, a.tabs)
		}
	}

	var right fyne.CanvasObject
	if opts.Client != nil && !opts.ReadOnly && !conf.Hidden(ElementStudentName) {
		a.roster = NewRoster(ctx, opts.Client, opts.Store, opts.Notifier, a.elapsed)
		a.Layout.StudentName = a.roster.StudentName
		right = container.NewGridWrap(fyne.NewSize(260, 600), a.roster.Object())
	}

	top := container.NewVBox(a.actions())
	if !conf.Hidden(ElementQuestion) {
		a.Layout.Question = widget.NewLabelWithStyle(conf.UI.Question, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
		top.Add(a.Layout.Question)
	}
	if opts.ShareLink != "" {
		a.status.SetText("Share link: " + opts.ShareLink)
	}

	content := container.NewBorder(top, a.status, nil, right, center)
	if opts.Toasts != nil {
		a.window.SetContent(container.NewStack(content, opts.Toasts.Object()))
	} else {
		a.window.SetContent(content)
	}

	fa.Lifecycle().SetOnStopped(a.stop)
	return a
}

func (a *App) Window() fyne.Window { return a.window }

func (a *App) Context() context.Context { return a.ctx }

// Run shows the window and blocks until the application quits.
func (a *App) Run() {
	if a.opts.Client != nil && !a.opts.ReadOnly {
		go a.fetch()
	}
	a.window.ShowAndRun()
}

func (a *App) stop() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.cancel()
}

// SetStatus may be called from any goroutine.
func (a *App) SetStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

func (a *App) buildSurfaces() {
	conf := a.opts.Config
	confirmer := dialogConfirmer{window: a.window}

	var items []*container.TabItem
	add := func(id, title string, s *board.Surface) *SurfaceWidget {
		if s == nil || conf.Hidden(id) {
			return nil
		}
		w := NewSurfaceWidget(s, a.opts.ReadOnly)
		s.SetConfirmer(confirmer)
		a.surfaces = append(a.surfaces, w)
		a.controllers = append(a.controllers, board.NewToolController(s, w))
		items = append(items, container.NewTabItem(title, container.NewScroll(w)))
		return w
	}
	a.Layout.Slide = add(ElementSlide, "Slide", a.opts.Slide)
	a.Layout.Whiteboard = add(ElementWhiteboard, "Whiteboard", a.opts.Whiteboard)
	if len(items) == 0 {
		return
	}
	a.tabs = container.NewAppTabs(items...)

	if a.opts.ReadOnly {
		return
	}
	lineWidth := a.controllers[0].State().LineWidth
	a.toolbar = NewToolbar(a.activeController, a.opts.Notifier, !conf.Hidden(ElementColorPicker), lineWidth)
	a.Layout.ColorPicker = a.toolbar.colorPicker
	for _, c := range a.controllers {
		a.toolbar.Bind(c)
	}
	a.tabs.OnSelected = func(*container.TabItem) { a.toolbar.Sync() }
	a.toolbar.Sync()
}

func (a *App) buildTimer() {
	if a.opts.Config.Hidden(ElementTimer) || a.opts.ReadOnly {
		return
	}
	a.Layout.Timer = widget.NewLabel(timer.Format(0))
	a.timer = timer.New(labelDisplay{label: a.Layout.Timer}, a.opts.Config.Timer.Period)
}

func (a *App) elapsed() time.Duration {
	if a.timer == nil {
		return 0
	}
	return a.timer.Elapsed()
}

func (a *App) activeIndex() int {
	if a.tabs == nil {
		return -1
	}
	return a.tabs.SelectedIndex()
}

func (a *App) activeController() *board.ToolController {
	i := a.activeIndex()
	if i < 0 || i >= len(a.controllers) {
		return nil
	}
	return a.controllers[i]
}

// ActiveSurface is the surface on the selected tab, or nil.
func (a *App) ActiveSurface() *board.Surface {
	if c := a.activeController(); c != nil {
		return c.Surface()
	}
	return nil
}

func (a *App) actions() fyne.CanvasObject {
	items := []widget.ToolbarItem{}
	if !a.opts.ReadOnly {
		if a.Layout.Slide != nil {
			items = append(items, widget.NewToolbarAction(theme.FolderOpenIcon(), a.openSlide))
		}
		if a.tabs != nil {
			items = append(items, widget.NewToolbarAction(theme.DeleteIcon(), a.clearActive))
		}
	}
	if a.tabs != nil {
		items = append(items, widget.NewToolbarAction(theme.DocumentPrintIcon(), a.savePDF))
	}
	if a.opts.Client != nil && !a.opts.ReadOnly {
		items = append(items,
			widget.NewToolbarSeparator(),
			widget.NewToolbarAction(theme.ViewRefreshIcon(), func() { go a.fetch() }),
			widget.NewToolbarAction(theme.DownloadIcon(), func() { go a.exportData() }),
		)
	}
	if a.timer != nil {
		a.timerAction = widget.NewToolbarAction(theme.MediaPlayIcon(), a.toggleTimer)
		items = append(items, widget.NewToolbarSeparator(), a.timerAction)
	}

	bar := widget.NewToolbar(items...)
	if a.Layout.Timer == nil {
		return bar
	}
	return container.NewBorder(nil, nil, nil, a.Layout.Timer, bar)
}

// toggleTimer starts a stopped class timer and stops a running one.
func (a *App) toggleTimer() {
	if a.timer.Running() {
		a.timer.Stop()
		a.timerAction.SetIcon(theme.MediaPlayIcon())
		return
	}
	a.timer.Start()
	a.timerAction.SetIcon(theme.MediaStopIcon())
}

func (a *App) guard(name string, fn func()) {
	a.opts.Notifier.Guard(name, fn)
}

func (a *App) fetch() {
	a.guard("FETCH", func() {
		if _, err := a.opts.Client.FetchClassroomData(a.ctx); err != nil {
			return
		}
		if a.roster != nil {
			a.roster.Reload()
		}
	})
}

func (a *App) exportData() {
	a.guard("EXPORT", func() {
		_, _ = a.opts.Client.ExportData(a.ctx)
	})
}

func (a *App) clearActive() {
	a.guard("CLEAR", func() {
		if s := a.ActiveSurface(); s != nil {
			if err := s.Clear(); err != nil {
				a.opts.Log.Warn("[UI] Clear", err)
			}
		}
	})
}

func (a *App) setTool(tool state.Tool) {
	a.guard("TOOL", func() {
		if a.toolbar != nil {
			a.toolbar.setTool(tool)
		}
	})
}

func (a *App) openSlide() {
	slide := a.opts.Slide
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			a.opts.Log.Error("[UI] Open slide", err)
			a.opts.Notifier.Notify(msgSlideFailed, notify.Danger)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		img, _, err := image.Decode(r)
		if err != nil {
			a.opts.Log.Error("[UI] Decode slide "+r.URI().Name(), err)
			a.opts.Notifier.Notify(msgSlideFailed, notify.Danger)
			return
		}
		slide.LoadImage(img)
		if a.tabs != nil && a.Layout.Slide != nil {
			a.tabs.SelectIndex(0)
		}
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif"}))
	d.Show()
}

func (a *App) pages() []export.Page {
	pages := make([]export.Page, 0, len(a.surfaces))
	for i, w := range a.surfaces {
		pages = append(pages, export.Page{Title: a.tabs.Items[i].Text, Image: w.Surface().Snapshot()})
	}
	return pages
}

func (a *App) savePDF() {
	pages := a.pages()
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			a.opts.Log.Error("[UI] Save PDF", err)
			a.opts.Notifier.Notify(msgPDFFailed, notify.Danger)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := export.WritePDF(w, pages); err != nil {
			a.opts.Log.Error("[UI] Write PDF", err)
			a.opts.Notifier.Notify(msgPDFFailed, notify.Danger)
			return
		}
		a.opts.Notifier.Notify(msgPDFDone, notify.Success)
	}, a.window)
	d.SetFileName("classboard.pdf")
	d.Show()
}

func (a *App) bindShortcuts() {
	if a.opts.ReadOnly {
		return
	}
	a.shortcuts.On(shortcut.Pen, func() { a.setTool(state.ToolPen) })
	a.shortcuts.On(shortcut.Eraser, func() { a.setTool(state.ToolEraser) })
	a.shortcuts.On(shortcut.Clear, a.clearActive)
	if a.opts.Client != nil {
		a.shortcuts.On(shortcut.Export, func() { go a.exportData() })
	}

	c := a.window.Canvas()
	c.SetOnTypedRune(func(r rune) {
		a.shortcuts.Dispatch(string(r), false)
	})
	for _, key := range []fyne.KeyName{fyne.KeyS, fyne.KeyZ} {
		for _, mod := range []fyne.KeyModifier{fyne.KeyModifierControl, fyne.KeyModifierSuper} {
			k := key
			c.AddShortcut(&desktop.CustomShortcut{KeyName: k, Modifier: mod}, func(fyne.Shortcut) {
				a.shortcuts.Dispatch(string(k), true)
			})
		}
	}
}

// Press runs the shortcut for key as if it had been typed.
func (a *App) Press(key string, modifier bool) shortcut.Action {
	return a.shortcuts.Dispatch(key, modifier)
}

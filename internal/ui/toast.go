package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ClassroomBoard/internal/board"
	"ClassroomBoard/internal/notify"
)

// ToastLayer stacks notification toasts in the top-right corner of the
// window. It is a notify.Sink and may be fed from any goroutine.
type ToastLayer struct {
	// OnDismiss is called with the toast id when the user closes a toast.
	OnDismiss func(id string)

	box    *fyne.Container
	object fyne.CanvasObject

	mu    sync.Mutex
	items map[string]*toastItem
}

type toastItem struct {
	object fyne.CanvasObject
	close  *widget.Button
}

var _ notify.Sink = (*ToastLayer)(nil)

func NewToastLayer() *ToastLayer {
	l := &ToastLayer{
		box:   container.NewVBox(),
		items: make(map[string]*toastItem),
	}
	l.object = container.NewBorder(nil, nil, nil,
		container.NewVBox(l.box, layout.NewSpacer()))
	return l
}

// Object is the overlay to stack above the window content.
func (l *ToastLayer) Object() fyne.CanvasObject { return l.object }

func severityColor(s notify.Severity) color.Color {
	switch s {
	case notify.Success:
		return theme.Color(theme.ColorNameSuccess)
	case notify.Warning:
		return theme.Color(theme.ColorNameWarning)
	case notify.Danger:
		return theme.Color(theme.ColorNameError)
	}
	return theme.Color(theme.ColorNamePrimary)
}

func (l *ToastLayer) Show(t notify.Toast) {
	fyne.Do(func() {
		bg := canvas.NewRectangle(severityColor(t.Severity))
		bg.CornerRadius = theme.InputRadiusSize()
		label := widget.NewLabel(t.Message)
		closeBtn := widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
			if l.OnDismiss != nil {
				l.OnDismiss(t.ID)
			}
		})
		closeBtn.Importance = widget.LowImportance
		item := &toastItem{
			object: container.NewStack(bg, container.NewPadded(
				container.NewBorder(nil, nil, nil, closeBtn, label))),
			close: closeBtn,
		}

		l.mu.Lock()
		l.items[t.ID] = item
		l.mu.Unlock()
		l.box.Add(item.object)
	})
}

func (l *ToastLayer) Remove(id string) {
	fyne.Do(func() {
		l.mu.Lock()
		item, ok := l.items[id]
		delete(l.items, id)
		l.mu.Unlock()
		if ok {
			l.box.Remove(item.object)
		}
	})
}

// Count returns the number of toasts on screen.
func (l *ToastLayer) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// dialogConfirmer asks through a modal confirm dialog.
type dialogConfirmer struct {
	window fyne.Window
}

var _ board.Confirmer = dialogConfirmer{}

func (c dialogConfirmer) Confirm(message string, onResult func(ok bool)) {
	fyne.Do(func() {
		dialog.ShowConfirm("Confirm", message, onResult, c.window)
	})
}

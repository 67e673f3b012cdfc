package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"ClassroomBoard/internal/client"
	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/state"
)

const msgSelectStudent = "Select a student first"

// Roster lists the classroom students and takes new names and answers.
type Roster struct {
	ctx      context.Context
	client   *client.Client
	store    *state.ClassroomStore
	notifier *notify.Service
	elapsed  func() time.Duration

	StudentName *widget.Entry
	Answer      *widget.Entry
	list        *widget.List
	round       *widget.Label
	students    []state.Student // UI goroutine only
	selected    string
	object      fyne.CanvasObject
}

func NewRoster(ctx context.Context, c *client.Client, store *state.ClassroomStore, n *notify.Service, elapsed func() time.Duration) *Roster {
	r := &Roster{ctx: ctx, client: c, store: store, notifier: n, elapsed: elapsed}

	r.StudentName = widget.NewEntry()
	r.StudentName.SetPlaceHolder("Student name")
	r.StudentName.OnSubmitted = r.addStudent

	r.Answer = widget.NewEntry()
	r.Answer.SetPlaceHolder("Answer")
	r.Answer.OnSubmitted = r.submitAnswer

	r.round = widget.NewLabel("")
	r.list = widget.NewList(
		func() int { return len(r.students) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(r.students) {
				return
			}
			st := r.students[id]
			o.(*widget.Label).SetText(fmt.Sprintf("%s  %.0f pts (%d/%d)",
				st.Name, st.Score, st.CorrectRounds, st.TotalRounds))
		},
	)
	r.list.OnSelected = func(id widget.ListItemID) {
		if id < len(r.students) {
			r.selected = r.students[id].Name
		}
	}
	r.list.OnUnselected = func(widget.ListItemID) { r.selected = "" }

	top := container.NewVBox(widget.NewLabel("Students"), r.StudentName, r.round)
	r.object = container.NewBorder(top, r.Answer, nil, nil, r.list)
	return r
}

func (r *Roster) Object() fyne.CanvasObject { return r.object }

// Reload shows the store's students. It may be called from any goroutine.
func (r *Roster) Reload() {
	students := r.store.Students()
	round := ""
	if c := r.store.Get(); c != nil {
		round = fmt.Sprintf("Round %d", c.CurrentRound)
	}
	fyne.Do(func() {
		r.students = students
		r.round.SetText(round)
		r.list.Refresh()
	})
}

func (r *Roster) addStudent(name string) {
	go r.notifier.Guard("ROSTER", func() {
		if err := r.client.AddStudent(r.ctx, name); err != nil {
			return
		}
		fyne.Do(func() { r.StudentName.SetText("") })
		r.Reload()
	})
}

func (r *Roster) submitAnswer(answer string) {
	student := r.selected
	if student == "" {
		r.notifier.Notify(msgSelectStudent, notify.Warning)
		return
	}
	took := r.elapsed().Seconds()
	go r.notifier.Guard("ROSTER", func() {
		if err := r.client.SubmitAnswer(r.ctx, student, answer, took); err != nil {
			return
		}
		fyne.Do(func() { r.Answer.SetText("") })
		if _, err := r.client.FetchClassroomData(r.ctx); err == nil {
			r.Reload()
		}
	})
}

package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		key      string
		modifier bool
		want     Action
	}{
		{"s", true, Export},
		{"S", true, Export},
		{"z", true, Undo},
		{"Z", true, Undo},
		{"p", true, None},
		{"c", true, None},
		{"p", false, Pen},
		{"e", false, Eraser},
		{"c", false, Clear},
		{"P", false, None},
		{"s", false, None},
		{"x", false, None},
		{"", false, None},
	}
	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.key, tt.modifier))
		})
	}
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher()
	var ran []Action
	for _, a := range []Action{Export, Pen, Eraser, Clear} {
		a := a
		d.On(a, func() { ran = append(ran, a) })
	}

	assert.Equal(t, Pen, d.Dispatch("p", false))
	assert.Equal(t, Export, d.Dispatch("S", true))
	assert.Equal(t, Undo, d.Dispatch("z", true), "resolved even though nothing is bound")
	assert.Equal(t, None, d.Dispatch("q", false))
	assert.Equal(t, Clear, d.Dispatch("c", false))

	assert.Equal(t, []Action{Pen, Export, Clear}, ran)
}

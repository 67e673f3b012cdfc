package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ClassroomBoard/internal/notify"
	"ClassroomBoard/internal/state"
)

type sentNotification struct {
	message  string
	severity notify.Severity
}

type fakeNotifier struct {
	sent []sentNotification
}

func (n *fakeNotifier) Notify(message string, severity notify.Severity) {
	n.sent = append(n.sent, sentNotification{message, severity})
}

func newStore(names ...string) *state.ClassroomStore {
	students := make(map[string]state.Student, len(names))
	for _, n := range names {
		students[n] = state.Student{Name: n}
	}
	s := state.NewClassroomStore()
	s.Set(&state.Classroom{Students: students})
	return s
}

func TestValidator_StudentName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		store   *state.ClassroomStore
		want    bool
		wantMsg string
	}{
		{name: "empty", input: "", store: newStore(), wantMsg: "Please enter the student name"},
		{name: "whitespace", input: "   \t", store: newStore(), wantMsg: "Please enter the student name"},
		{name: "21 characters", input: strings.Repeat("A", 21), store: newStore(), wantMsg: "Student name cannot exceed 20 characters"},
		{name: "20 characters", input: strings.Repeat("A", 20), store: newStore(), want: true},
		{name: "20 runes", input: strings.Repeat("é", 20), store: newStore(), want: true},
		{name: "existing", input: "Bob", store: newStore("Bob"), wantMsg: "This student already exists"},
		{name: "absent", input: "Alice", store: newStore("Bob"), want: true},
		{name: "no classroom yet", input: "Alice", store: state.NewClassroomStore(), want: true},
		{name: "nil store", input: "Alice", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &fakeNotifier{}
			v := New(tt.store, n)

			assert.Equal(t, tt.want, v.StudentName(tt.input))
			if tt.want {
				assert.Empty(t, n.sent)
				return
			}
			assert.Equal(t, []sentNotification{{tt.wantMsg, notify.Warning}}, n.sent)
		})
	}
}

func TestValidator_Answer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"  ", false},
		{"42", true},
		{" x ", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n := &fakeNotifier{}
			v := New(newStore(), n)
			assert.Equal(t, tt.want, v.Answer(tt.input))
			if tt.want {
				assert.Empty(t, n.sent)
			} else {
				assert.Equal(t, []sentNotification{{"Please enter an answer", notify.Warning}}, n.sent)
			}
		})
	}
}

func TestValidator_NilNotifier(t *testing.T) {
	v := New(nil, nil)
	assert.False(t, v.StudentName(""))
	assert.True(t, v.StudentName("Alice"))
}

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeqTracker_Accept(t *testing.T) {
	tr := NewSeqTracker()

	tests := []struct {
		name string
		site string
		seq  uint64
		want bool
	}{
		{name: "first from a", site: "a", seq: 1, want: true},
		{name: "newer from a", site: "a", seq: 3, want: true},
		{name: "duplicate from a", site: "a", seq: 3, want: false},
		{name: "stale from a", site: "a", seq: 2, want: false},
		{name: "first from b", site: "b", seq: 1, want: true},
		{name: "no site", site: "", seq: 0, want: true},
		{name: "no site again", site: "", seq: 0, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Accept(tt.site, tt.seq))
		})
	}
	assert.Equal(t, uint64(3), tr.Last("a"))

	tr.Reset("a")
	assert.True(t, tr.Accept("a", 1))
}

func TestClock_Tick(t *testing.T) {
	c := NewClock()
	assert.NotEmpty(t, c.Site())
	assert.NotEqual(t, c.Site(), NewClock().Site())
	assert.Equal(t, uint64(1), c.Tick())
	assert.Equal(t, uint64(2), c.Tick())
}

func TestTool_Valid(t *testing.T) {
	assert.True(t, ToolPen.Valid())
	assert.True(t, ToolEraser.Valid())
	assert.False(t, Tool("marker").Valid())
	assert.False(t, Tool("").Valid())
}

func TestClassroomStore(t *testing.T) {
	s := NewClassroomStore()
	assert.Nil(t, s.Get())
	assert.False(t, s.HasStudent("Bob"))
	assert.Nil(t, s.Students())

	s.Set(&Classroom{
		CurrentRound: 2,
		Students: map[string]Student{
			"Bob":   {Name: "Bob", Score: 10},
			"Alice": {Score: 5},
		},
	})
	assert.True(t, s.HasStudent("Bob"))
	assert.False(t, s.HasStudent("bob"))
	assert.False(t, s.HasStudent("Carol"))

	students := s.Students()
	if assert.Len(t, students, 2) {
		assert.Equal(t, "Alice", students[0].Name)
		assert.Equal(t, "Bob", students[1].Name)
	}
	assert.Equal(t, 2, s.Get().CurrentRound)
}

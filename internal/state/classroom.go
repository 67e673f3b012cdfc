package state

import (
	"encoding/json"
	"sort"
	"sync"
)

// Student is one roster entry as returned by /get_classroom_data.
type Student struct {
	Name           string  `json:"name"`
	Score          float64 `json:"score"`
	TotalRounds    int     `json:"total_rounds"`
	CorrectRounds  int     `json:"correct_rounds"`
	LastAnswerTime float64 `json:"last_answer_time"`
	LastAnswer     string  `json:"last_answer"`
	Expression     string  `json:"expression,omitempty"`
	Animation      string  `json:"animation,omitempty"`
	AvatarColor    string  `json:"avatar_color,omitempty"`
}

// Classroom is the backend classroom state. Raw keeps the body as received so
// callers that treat it as opaque lose nothing.
type Classroom struct {
	Success      *bool              `json:"success,omitempty"`
	Message      string             `json:"message,omitempty"`
	CurrentRound int                `json:"current_round"`
	Students     map[string]Student `json:"students"`
	Raw          json.RawMessage    `json:"-"`
}

// ClassroomStore holds the process-wide classroom state. It has no
// invalidation beyond Set.
type ClassroomStore struct {
	data *Classroom
	mu   sync.RWMutex
}

func NewClassroomStore() *ClassroomStore {
	return &ClassroomStore{}
}

func (s *ClassroomStore) Set(c *Classroom) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = c
}

// Get returns the current classroom, or nil before the first fetch.
func (s *ClassroomStore) Get() *Classroom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// HasStudent reports whether name is already a key of the student mapping.
func (s *ClassroomStore) HasStudent(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil || s.data.Students == nil {
		return false
	}
	_, ok := s.data.Students[name]
	return ok
}

// Students returns the roster sorted by name.
func (s *ClassroomStore) Students() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil
	}
	students := make([]Student, 0, len(s.data.Students))
	for name, st := range s.data.Students {
		if st.Name == "" {
			st.Name = name
		}
		students = append(students, st)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students
}

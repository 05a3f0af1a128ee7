package courses

import (
	"strings"
	"time"
)

// Level of a course
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// ParseLevel matches a level case insensitively. ok is false for unknown levels.
func ParseLevel(s string) (Level, bool) {
	for _, l := range []Level{LevelBeginner, LevelIntermediate, LevelAdvanced} {
		if strings.EqualFold(string(l), strings.TrimSpace(s)) {
			return l, true
		}
	}
	return "", false
}

type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

type Section struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Duration string   `json:"duration"`
	Lessons  []Lesson `json:"lessons,omitempty"`
}

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Course is a catalogue entry as served by GET /courses and GET /courses/{id}
type Course struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	University         string    `json:"university"`
	Instructor         string    `json:"instructor"`
	Duration           string    `json:"duration"`
	Level              Level     `json:"level"`
	Price              float64   `json:"price"`
	Rating             float64   `json:"rating"`
	EnrollmentCount    int       `json:"enrollmentCount"`
	ImageURL           string    `json:"imageUrl"`
	LearningObjectives []string  `json:"learningObjectives"`
	Prerequisites      []string  `json:"prerequisites"`
	Sections           []Section `json:"sections"`
	Reviews            []Review  `json:"reviews"`
}

// University groups the catalogue by institution.
type University struct {
	Name        string `json:"name"`
	CourseCount int    `json:"courseCount"`
}

// Universities lists the institutions in the catalogue in first-seen order.
func Universities(catalogue []Course) []University {
	index := make(map[string]int)
	var out []University
	for _, c := range catalogue {
		key := strings.ToLower(c.University)
		if i, ok := index[key]; ok {
			out[i].CourseCount++
			continue
		}
		index[key] = len(out)
		out = append(out, University{Name: c.University, CourseCount: 1})
	}
	return out
}

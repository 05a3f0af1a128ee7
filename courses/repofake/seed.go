package fakecourserepo

import (
	"time"

	"github.com/jrsteele09/go-campus/courses"
)

const placeholderImage = "/api/placeholder/400/300"

// Catalogue is the demo course list the reference backend starts with.
func Catalogue() []courses.Course {
	return []courses.Course{
		{
			ID:              "1",
			Title:           "Introduction to Computer Science",
			Description:     "Comprehensive program covering programming, algorithms, and software development.",
			University:      "Tech University",
			Instructor:      "Dr. Grace Morgan",
			Duration:        "12 weeks",
			Level:           courses.LevelBeginner,
			Price:           49,
			Rating:          4.7,
			EnrollmentCount: 1250,
			ImageURL:        placeholderImage,
			LearningObjectives: []string{
				"Write simple programs in a high level language",
				"Reason about algorithmic cost",
			},
			Prerequisites: []string{},
			Sections: []courses.Section{
				{ID: "1-1", Title: "Getting started", Duration: "2h", Lessons: []courses.Lesson{
					{ID: "1-1-1", Title: "What is computation?", Duration: "25m"},
					{ID: "1-1-2", Title: "Your first program", Duration: "40m"},
				}},
				{ID: "1-2", Title: "Control flow", Duration: "3h"},
			},
			Reviews: []courses.Review{
				{ID: "r1", UserID: "u-100", UserName: "Sam", Rating: 5, Comment: "Clear and well paced.", CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
			},
		},
		{
			ID:                 "2",
			Title:              "Data Structures and Algorithms",
			Description:        "Lists, trees, graphs and the algorithms that operate on them.",
			University:         "Tech University",
			Instructor:         "Prof. Alan Reyes",
			Duration:           "10 weeks",
			Level:              courses.LevelIntermediate,
			Price:              79,
			Rating:             4.8,
			EnrollmentCount:    980,
			ImageURL:           placeholderImage,
			LearningObjectives: []string{"Choose the right data structure", "Analyse time and space complexity"},
			Prerequisites:      []string{"Introduction to Computer Science"},
			Sections:           []courses.Section{},
			Reviews:            []courses.Review{},
		},
		{
			ID:                 "3",
			Title:              "Business Administration",
			Description:        "Advanced study of business management and organizational leadership.",
			University:         "Global Business School",
			Instructor:         "Dr. Priya Nair",
			Duration:           "2 years",
			Level:              courses.LevelAdvanced,
			Price:              299,
			Rating:             4.5,
			EnrollmentCount:    430,
			ImageURL:           placeholderImage,
			LearningObjectives: []string{"Lead cross functional teams", "Read a balance sheet"},
			Prerequisites:      []string{"Undergraduate degree"},
			Sections:           []courses.Section{},
			Reviews:            []courses.Review{},
		},
		{
			ID:                 "4",
			Title:              "Machine Learning Foundations",
			Description:        "Regression, classification and model evaluation from first principles.",
			University:         "University of Technology",
			Instructor:         "Dr. Lena Fischer",
			Duration:           "8 weeks",
			Level:              courses.LevelIntermediate,
			Price:              0,
			Rating:             4.6,
			EnrollmentCount:    2100,
			ImageURL:           placeholderImage,
			LearningObjectives: []string{"Train and evaluate supervised models"},
			Prerequisites:      []string{"Linear algebra", "Python"},
			Sections:           []courses.Section{},
			Reviews:            []courses.Review{},
		},
	}
}

// Seed loads Catalogue into the repo.
func (r *FakeCourseRepo) Seed() *FakeCourseRepo {
	for _, c := range Catalogue() {
		_ = r.Upsert(c)
	}
	return r
}

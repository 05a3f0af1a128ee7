package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jrsteele09/go-campus/courses"
	"github.com/jrsteele09/go-campus/newsletter"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	statBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func price(p float64) string {
	if p == 0 {
		return "Free"
	}
	return "$" + strconv.FormatFloat(p, 'f', 2, 64)
}

func renderCourses(w io.Writer, list []courses.Course) {
	if len(list) == 0 {
		fmt.Fprintln(w, hintStyle.Render("No courses match your filters."))
		return
	}
	t := newTable("ID", "Title", "University", "Level", "Price", "Rating")
	for _, c := range list {
		t.Row(c.ID, c.Title, c.University, string(c.Level), price(c.Price), strconv.FormatFloat(c.Rating, 'f', 1, 64))
	}
	fmt.Fprintln(w, t.Render())
}

func renderCourse(w io.Writer, c courses.Course) {
	fmt.Fprintln(w, titleStyle.Render(c.Title))
	fmt.Fprintf(w, "%s · %s · %s · %s\n", c.University, c.Instructor, c.Level, price(c.Price))
	fmt.Fprintf(w, "%s\n\n", c.Description)
	if len(c.LearningObjectives) > 0 {
		fmt.Fprintln(w, titleStyle.Render("What you'll learn"))
		for _, o := range c.LearningObjectives {
			fmt.Fprintf(w, "  • %s\n", o)
		}
	}
	if len(c.Sections) > 0 {
		t := newTable("Section", "Duration", "Lessons")
		for _, s := range c.Sections {
			t.Row(s.Title, s.Duration, strconv.Itoa(len(s.Lessons)))
		}
		fmt.Fprintln(w, t.Render())
	}
}

func renderUniversities(w io.Writer, list []courses.University) {
	t := newTable("University", "Courses")
	for _, u := range list {
		t.Row(u.Name, strconv.Itoa(u.CourseCount))
	}
	fmt.Fprintln(w, t.Render())
}

func progressBar(p int) string {
	const width = 20
	filled := courses.ClampProgress(p) * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + " " + strconv.Itoa(p) + "%"
}

func renderDashboard(w io.Writer, name string, enrolled []courses.Enrollment) {
	fmt.Fprintln(w, titleStyle.Render("Welcome back, "+name))
	stats := courses.Stats(enrolled)
	boxes := []string{
		statBoxStyle.Render(fmt.Sprintf("%d\nin progress", stats.CoursesInProgress)),
		statBoxStyle.Render(fmt.Sprintf("%d\ncompleted", stats.CoursesCompleted)),
		statBoxStyle.Render(fmt.Sprintf("%d\ncertificates", stats.CertificatesEarned)),
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	if len(enrolled) == 0 {
		fmt.Fprintln(w, hintStyle.Render("You are not enrolled in any courses yet. Try `campus courses`."))
		return
	}
	t := newTable("ID", "Course", "Progress", "Last accessed")
	for _, e := range enrolled {
		t.Row(e.CourseID, e.Course.Title, progressBar(e.Progress), e.LastAccessed.Format("2006-01-02"))
	}
	fmt.Fprintln(w, t.Render())
}

func renderSubscription(w io.Writer, s newsletter.Subscription) {
	t := newTable("Topic", "Subscribed")
	t.Row("Course updates", strconv.FormatBool(s.Preferences.CourseUpdates))
	t.Row("Promotions", strconv.FormatBool(s.Preferences.Promotions))
	t.Row("Newsletters", strconv.FormatBool(s.Preferences.Newsletters))
	fmt.Fprintln(w, titleStyle.Render(s.Email))
	fmt.Fprintln(w, t.Render())
}

package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
	"github.com/gosuri/uitable"
)

// selectCourses keeps the courses matching every given filter. Names match
// the course name or the course code exactly. Without filters nothing is
// selected.
func selectCourses(courses []canvas.Course, termIDs []int, names []string) []canvas.Course {
	names = normalizeNames(names)
	if len(termIDs) == 0 && len(names) == 0 {
		return nil
	}

	terms := make(map[int64]struct{}, len(termIDs))
	for _, id := range termIDs {
		terms[int64(id)] = struct{}{}
	}

	var selected []canvas.Course
	for _, course := range courses {
		if len(terms) > 0 {
			if _, ok := terms[courseTermID(course)]; !ok {
				continue
			}
		}

		if len(names) > 0 && !matchesName(course, names) {
			continue
		}

		selected = append(selected, course)
	}

	return selected
}

func normalizeNames(names []string) []string {
	trimmed := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			trimmed = append(trimmed, name)
		}
	}
	return utils.DedupeStrings(trimmed)
}

func matchesName(course canvas.Course, names []string) bool {
	return utils.StringInSlice(course.Name, names) || utils.StringInSlice(course.CourseCode, names)
}

func courseTermID(course canvas.Course) int64 {
	if course.Term != nil {
		return course.Term.ID
	}
	return course.EnrollmentTermID
}

// printCourses writes the courses grouped by term, most recent term first
func printCourses(w io.Writer, courses []canvas.Course) {
	type term struct {
		id      int64
		name    string
		courses []canvas.Course
	}

	byTerm := map[int64]*term{}
	for _, course := range courses {
		id := courseTermID(course)
		t, ok := byTerm[id]
		if !ok {
			t = &term{id: id, name: "Term " + fmt.Sprint(id)}
			if course.Term != nil && course.Term.Name != "" {
				t.name = course.Term.Name
			}
			byTerm[id] = t
		}
		t.courses = append(t.courses, course)
	}

	terms := make([]*term, 0, len(byTerm))
	for _, t := range byTerm {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].id > terms[j].id })

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("TERM ID", "TERM", "COURSE CODE", "COURSE")

	for _, t := range terms {
		sort.Slice(t.courses, func(i, j int) bool { return t.courses[i].CourseCode < t.courses[j].CourseCode })
		for _, course := range t.courses {
			table.AddRow(t.id, t.name, course.CourseCode, course.Name)
		}
	}

	fmt.Fprintln(w, table.String())
}

package discoverer

import (
	"context"
	"fmt"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// SyllabusNode stores the course syllabus as syllabus.html
type SyllabusNode struct {
	scope
	section
}

func (n *SyllabusNode) Key() string { return fmt.Sprintf("course/%d/syllabus", n.CourseID) }

func (n *SyllabusNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	course, dump, err := fetchOne[canvas.Course](ctx, env, fmt.Sprintf("/api/v1/courses/%d?include[]=syllabus_body", n.CourseID))
	if err != nil {
		return Expansion{}, err
	}

	if course.SyllabusBody == "" {
		return Expansion{}, nil
	}

	expansion := Expansion{
		Items:    []*models.Item{n.inlineItem("syllabus.html", wrapHTML(course.Name+" syllabus", course.SyllabusBody), "")},
		Children: []Node{&HTMLNode{scope: n.scope, Owner: n.Key(), Body: course.SyllabusBody}},
	}
	expansion.Add(n.jsonItem(env, "syllabus", dump))

	return expansion, nil
}

package discoverer

import (
	"context"
	"fmt"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
)

// AssignmentsNode lists the course assignments. Each assignment gets its
// own directory holding the description and the user's submission files.
type AssignmentsNode struct {
	scope
	section
}

func (n *AssignmentsNode) Key() string { return fmt.Sprintf("course/%d/assignments", n.CourseID) }

func (n *AssignmentsNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	assignments, dump, err := fetchAll[canvas.Assignment](ctx, env, n.endpoint("assignments"))
	if err != nil {
		return Expansion{}, err
	}

	var expansion Expansion
	expansion.Add(n.jsonItem(env, "assignments", dump))
	for _, assignment := range assignments {
		sub := n.at(assignment.Name)

		expansion.Children = append(expansion.Children, &SubmissionNode{scope: sub, AssignmentID: assignment.ID})

		if assignment.Description == "" {
			continue
		}

		expansion.Items = append(expansion.Items,
			sub.inlineItem("description.html", wrapHTML(assignment.Name, assignment.Description), assignment.UpdatedAt))
		expansion.Children = append(expansion.Children, &HTMLNode{
			scope: sub,
			Owner: fmt.Sprintf("assignment/%d", assignment.ID),
			Body:  assignment.Description,
		})
	}

	return expansion, nil
}

// SubmissionNode yields the attachments of the user's own submission
type SubmissionNode struct {
	scope
	section
	AssignmentID int64
}

func (n *SubmissionNode) Key() string { return fmt.Sprintf("assignment/%d/submission", n.AssignmentID) }

func (n *SubmissionNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	submission, dump, err := fetchOne[canvas.Submission](ctx, env, n.endpoint("assignments/%d/submissions/self", n.AssignmentID))
	if err != nil {
		return Expansion{}, err
	}

	expansion := Expansion{Items: n.fileItems(env, submission.Attachments, displayName)}
	expansion.Add(n.jsonItem(env, "submission", dump))

	return expansion, nil
}

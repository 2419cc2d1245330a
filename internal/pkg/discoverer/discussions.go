package discoverer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

var discussionTemplate = template.Must(template.New("discussion").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
</head>
<body>
    <div class="discussion-post">
        <div class="discussion-title">{{.Title}}</div>
        <div class="discussion-meta">{{.Author}}{{if .PostedAt}} | {{.PostedAt}}{{end}}</div>
        <div class="discussion-message">{{.Message}}</div>
    </div>
{{- if .Comments}}
    <div class="comments-section">
        <div class="comments-header">Comments ({{len .Comments}})</div>
{{- range .Comments}}
        <div class="comment">
            <div class="comment-meta">{{.UserName}}{{if .CreatedAt}} | {{.CreatedAt}}{{end}}</div>
            <div class="comment-message">{{.Message}}</div>
        </div>
{{- end}}
    </div>
{{- end}}
</body>
</html>
`))

type discussionPage struct {
	Title    string
	Author   string
	PostedAt string
	Message  template.HTML
	Comments []commentEntry
}

type commentEntry struct {
	UserName  string
	CreatedAt string
	Message   template.HTML
}

// DiscussionsNode lists discussion topics, or announcements only
type DiscussionsNode struct {
	scope
	section
	Announcements bool
}

func (n *DiscussionsNode) Key() string {
	if n.Announcements {
		return fmt.Sprintf("course/%d/announcements", n.CourseID)
	}
	return fmt.Sprintf("course/%d/discussions", n.CourseID)
}

func (n *DiscussionsNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	endpoint := n.endpoint("discussion_topics")
	if n.Announcements {
		endpoint += "?only_announcements=true"
	}

	discussions, dump, err := fetchAll[canvas.Discussion](ctx, env, endpoint)
	if err != nil {
		return Expansion{}, err
	}

	var expansion Expansion
	if n.Announcements {
		expansion.Add(n.jsonItem(env, "announcements", dump))
	} else {
		expansion.Add(n.jsonItem(env, "discussions", dump))
	}
	for _, discussion := range discussions {
		sub := n.at(discussion.Title)

		expansion.Items = append(expansion.Items, sub.fileItems(env, discussion.Attachments, attachmentName)...)
		expansion.Children = append(expansion.Children, &DiscussionViewNode{scope: sub, Discussion: discussion})

		if discussion.Message != "" {
			expansion.Children = append(expansion.Children, &HTMLNode{
				scope: sub,
				Owner: fmt.Sprintf("discussion/%d", discussion.ID),
				Body:  discussion.Message,
			})
		}
	}

	return expansion, nil
}

// DiscussionViewNode renders a discussion thread to HTML and yields the
// files attached to its comments
type DiscussionViewNode struct {
	scope
	Discussion canvas.Discussion
}

func (n *DiscussionViewNode) Key() string { return fmt.Sprintf("discussion/%d/view", n.Discussion.ID) }

func (n *DiscussionViewNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	var (
		comments []canvas.Comment
		dump     []byte
	)

	view, raw, err := fetchOne[canvas.DiscussionView](ctx, env, n.endpoint("discussion_topics/%d/view", n.Discussion.ID))
	switch {
	case err == nil:
		comments = flattenComments(view.View)
		dump = raw
	case canvas.IsSkippable(err):
		env.Logger.Debug("discussion thread unavailable", "discussion", n.Discussion.ID, "err", err)
	default:
		return Expansion{}, err
	}

	page, err := renderDiscussion(n.Discussion, comments)
	if err != nil {
		return Expansion{}, err
	}

	expansion := Expansion{
		Items: []*models.Item{n.inlineItem(n.Discussion.Title+".html", page, n.Discussion.PostedAt)},
	}
	expansion.Add(n.jsonItem(env, n.Discussion.Title, dump))

	var messages strings.Builder
	for _, comment := range comments {
		var attachments []canvas.File
		if comment.Attachment != nil {
			attachments = append(attachments, *comment.Attachment)
		}
		attachments = append(attachments, comment.Attachments...)
		expansion.Items = append(expansion.Items, n.fileItems(env, attachments, attachmentName)...)

		messages.WriteString(comment.Message)
	}

	if messages.Len() > 0 {
		expansion.Children = append(expansion.Children, &HTMLNode{
			scope: n.scope,
			Owner: n.Key(),
			Body:  messages.String(),
		})
	}

	return expansion, nil
}

func attachmentName(f canvas.File) string {
	return fmt.Sprintf("%d_%s", f.ID, displayName(f))
}

// flattenComments returns the comments of a thread with their replies, depth first
func flattenComments(comments []canvas.Comment) []canvas.Comment {
	var flat []canvas.Comment
	for _, comment := range comments {
		flat = append(flat, comment)
		flat = append(flat, flattenComments(comment.Replies)...)
	}
	return flat
}

func renderDiscussion(discussion canvas.Discussion, comments []canvas.Comment) ([]byte, error) {
	page := discussionPage{
		Title:    discussion.Title,
		PostedAt: discussion.PostedAt,
		Message:  template.HTML(discussion.Message),
	}
	if discussion.Author != nil {
		page.Author = discussion.Author.DisplayName
	}

	for _, comment := range comments {
		if comment.Message == "" {
			continue
		}
		page.Comments = append(page.Comments, commentEntry{
			UserName:  comment.UserName,
			CreatedAt: comment.CreatedAt,
			Message:   template.HTML(comment.Message),
		})
	}

	var buf bytes.Buffer
	if err := discussionTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

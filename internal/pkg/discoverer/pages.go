package discoverer

import (
	"context"
	"fmt"
	"net/url"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// PagesNode lists the wiki pages of a course
type PagesNode struct {
	scope
	section
}

func (n *PagesNode) Key() string { return fmt.Sprintf("course/%d/pages", n.CourseID) }

func (n *PagesNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	pages, dump, err := fetchAll[canvas.Page](ctx, env, n.endpoint("pages"))
	if err != nil {
		return Expansion{}, err
	}

	var expansion Expansion
	expansion.Add(n.jsonItem(env, "pages", dump))
	for _, page := range pages {
		if page.LockedForUser {
			env.Logger.Debug("locked page skipped", "page", page.URL)
			continue
		}
		expansion.Children = append(expansion.Children, &PageNode{scope: n.at(page.URL), Slug: page.URL})
	}

	return expansion, nil
}

// PageNode fetches the body of one page and stores it as <slug>.html
type PageNode struct {
	scope
	Slug string
}

func (n *PageNode) Key() string { return fmt.Sprintf("page/%d/%s", n.CourseID, n.Slug) }

func (n *PageNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	page, dump, err := fetchOne[canvas.PageBody](ctx, env, n.endpoint("pages/%s", url.PathEscape(n.Slug)))
	if err != nil {
		return Expansion{}, err
	}

	slug := page.URL
	if slug == "" {
		slug = n.Slug
	}

	expansion := Expansion{
		Items: []*models.Item{n.inlineItem(slug+".html", wrapHTML(page.Title, page.Body), page.UpdatedAt)},
	}
	expansion.Add(n.jsonItem(env, slug, dump))
	if page.Body != "" {
		expansion.Children = append(expansion.Children, &HTMLNode{scope: n.scope, Owner: n.Key(), Body: page.Body})
	}

	return expansion, nil
}

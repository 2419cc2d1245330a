package discoverer

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var courseFileRe = regexp.MustCompile(`/courses/\d+/files/(\d+)`)

// HTMLNode scans an HTML body for links to course files hosted on the
// Canvas instance and resolves each of them with a FileRefNode
type HTMLNode struct {
	scope
	Owner string
	Body  string
}

func (n *HTMLNode) Key() string { return "html/" + n.Owner }

func (n *HTMLNode) Expand(_ context.Context, env *Env) (Expansion, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(n.Body))
	if err != nil {
		return Expansion{}, err
	}

	base, err := url.Parse(env.Client.BaseURL())
	if err != nil {
		return Expansion{}, err
	}

	var (
		expansion Expansion
		seen      = make(map[int64]struct{})
	)

	collect := func(raw string) {
		id, ok := linkedFileID(base, raw)
		if !ok {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		expansion.Children = append(expansion.Children, &FileRefNode{scope: n.scope, FileID: id})
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		collect(href)
	})
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		collect(src)
	})

	return expansion, nil
}

// linkedFileID returns the id of the course file raw points at, if raw
// targets the Canvas instance
func linkedFileID(base *url.URL, raw string) (int64, bool) {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}

	u := base.ResolveReference(ref)
	if !strings.EqualFold(u.Host, base.Host) {
		return 0, false
	}

	match := courseFileRe.FindStringSubmatch(u.Path)
	if match == nil {
		return 0, false
	}

	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

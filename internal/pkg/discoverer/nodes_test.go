package discoverer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/reactor"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCanvas serves a small course: a files tree, one module and one page
func fakeCanvas(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routes := map[string]string{
			"/api/v1/courses/1/folders/by_path/": `[{"id":10,"name":"course files","full_name":"course files","parent_folder_id":null,
				"files_url":"{{srv}}/api/v1/folders/10/files","folders_url":"{{srv}}/api/v1/folders/10/folders"}]`,
			"/api/v1/folders/10/files": `[
				{"id":100,"display_name":"syllabus.pdf","url":"{{srv}}/files/100/download","updated_at":"2024-01-02T03:04:05Z","size":42},
				{"id":101,"display_name":"locked.pdf","url":"{{srv}}/files/101/download","updated_at":"2024-01-02T03:04:05Z","locked_for_user":true},
				{"id":102,"display_name":"broken.pdf","url":"{{srv}}/files/102/download","updated_at":"yesterday"}]`,
			"/api/v1/folders/10/folders": `[{"id":11,"name":"Week 1","full_name":"course files/Week 1","parent_folder_id":10,
				"files_url":"{{srv}}/api/v1/folders/11/files","folders_url":"{{srv}}/api/v1/folders/11/folders"}]`,
			"/api/v1/folders/11/files":   `[{"id":110,"display_name":"notes.txt","url":"{{srv}}/files/110/download","updated_at":"2024-02-01T00:00:00Z","size":7}]`,
			"/api/v1/folders/11/folders": `[]`,
			"/api/v1/courses/1/modules":  `[{"id":5,"name":"Intro"}]`,
			"/api/v1/courses/1/modules/5/items": `[
				{"id":1,"title":"Handout","type":"File","content_id":120},
				{"id":2,"title":"Docs","type":"ExternalUrl","external_url":"https://go.dev"},
				{"id":3,"title":"Heading","type":"SubHeader"}]`,
			"/api/v1/files/120":       `{"id":120,"display_name":"handout.pdf","url":"{{srv}}/files/120/download","updated_at":"2024-03-01T00:00:00Z"}`,
			"/api/v1/courses/1/pages": `[{"url":"welcome","title":"Welcome"},{"url":"hidden","title":"Hidden","locked_for_user":true}]`,
			"/api/v1/courses/1/pages/welcome": `{"url":"welcome","title":"Welcome","updated_at":"2024-04-01T00:00:00Z",
				"body":"<p><a href=\"/courses/1/files/130/download\">slides</a><img src=\"/courses/1/files/130/preview\"><img src=\"https://elsewhere.example/courses/1/files/999\"></p>"}`,
			"/api/v1/courses/1/users": `[{"id":7,"name":"Ada","email":"ada@example.edu"}]`,
			"/api/v1/files/130":       `{"id":130,"display_name":"lecture.pdf","url":"{{srv}}/files/130/download","updated_at":"2024-04-02T00:00:00Z"}`,
		}

		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"message":"The specified resource does not exist."}]}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(strings.ReplaceAll(body, "{{srv}}", srv.URL)))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestCourseNode_Discovery(t *testing.T) {
	srv := fakeCanvas(t)

	client, err := canvas.NewClient(srv.URL, "secret", canvas.WithRetryPolicy(canvas.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}))
	require.NoError(t, err)

	dest := t.TempDir()
	course := NewCourseNode(canvas.Course{ID: 1, Name: "Course One", CourseCode: "CS/101"}, dest)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d := New(&Env{Client: client}, Options{})
	items, errs := d.Run(ctx, reactor.NewPhase("discovery", reactor.NewGate(4)), []Node{course})
	require.Empty(t, errs)

	root := filepath.Join(dest, "CS_101")
	byPath := map[string]*models.Item{}
	var paths []string
	for _, item := range items {
		rel, err := filepath.Rel(root, item.TargetPath)
		require.NoError(t, err)
		rel = filepath.ToSlash(rel)
		byPath[rel] = item
		paths = append(paths, rel)
	}
	sort.Strings(paths)

	assert.Equal(t, []string{
		"files/Week 1/notes.txt",
		"files/syllabus.pdf",
		"modules/Intro/Docs.url",
		"modules/Intro/handout.pdf",
		"pages/welcome/lecture.pdf",
		"pages/welcome/welcome.html",
	}, paths)

	syllabus := byPath["files/syllabus.pdf"]
	assert.Equal(t, models.ItemKindFile, syllabus.Kind)
	assert.Equal(t, "CS/101", syllabus.Course)
	assert.Equal(t, "files", syllabus.Container)
	assert.Equal(t, int64(42), syllabus.Size)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), syllabus.UpdatedAt.UTC())
	assert.Equal(t, srv.URL+"/files/100/download", syllabus.URL)

	shortcut := byPath["modules/Intro/Docs.url"]
	assert.Equal(t, models.ItemKindInline, shortcut.Kind)
	assert.Equal(t, "[InternetShortcut]\nURL=https://go.dev\n", string(shortcut.Content))

	page := byPath["pages/welcome/welcome.html"]
	assert.Equal(t, models.ItemKindInline, page.Kind)
	assert.Contains(t, string(page.Content), "<title>Welcome</title>")
	assert.Contains(t, string(page.Content), `href="/courses/1/files/130/download"`)
}

func TestCourseNode_SavesJSON(t *testing.T) {
	srv := fakeCanvas(t)

	client, err := canvas.NewClient(srv.URL, "secret", canvas.WithRetryPolicy(canvas.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}))
	require.NoError(t, err)

	dest := t.TempDir()
	course := NewCourseNode(canvas.Course{ID: 1, Name: "Course One", CourseCode: "CS101"}, dest)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d := New(&Env{Client: client, SaveJSON: true}, Options{})
	items, errs := d.Run(ctx, reactor.NewPhase("discovery", reactor.NewGate(4)), []Node{course})
	require.Empty(t, errs)

	root := filepath.Join(dest, "CS101")
	byPath := map[string]*models.Item{}
	var paths []string
	for _, item := range items {
		rel, err := filepath.Rel(root, item.TargetPath)
		require.NoError(t, err)
		rel = filepath.ToSlash(rel)
		byPath[rel] = item
		paths = append(paths, rel)
	}
	sort.Strings(paths)

	assert.Equal(t, []string{
		"files/Week 1/notes.txt",
		"files/syllabus.pdf",
		"modules/Intro/Docs.url",
		"modules/Intro/handout.pdf",
		"modules/Intro/module_items.json",
		"modules/modules.json",
		"pages/pages.json",
		"pages/welcome/lecture.pdf",
		"pages/welcome/welcome.html",
		"pages/welcome/welcome.json",
		"users.json",
	}, paths)

	users := byPath["users.json"]
	assert.Equal(t, models.ItemKindInline, users.Kind)
	assert.JSONEq(t, `[{"id":7,"name":"Ada","email":"ada@example.edu"}]`, string(users.Content))
	assert.Contains(t, string(users.Content), "\n    \"email\": \"ada@example.edu\"")

	// The dump keeps what the rendered content drops
	assert.Contains(t, string(byPath["pages/pages.json"].Content), `"title": "Hidden"`)
	assert.Contains(t, string(byPath["modules/Intro/module_items.json"].Content), `"type": "SubHeader"`)
	assert.Contains(t, string(byPath["pages/welcome/welcome.json"].Content), `"updated_at": "2024-04-01T00:00:00Z"`)
}

func TestLinkedFileID(t *testing.T) {
	base, err := url.Parse("https://canvas.example.edu")
	require.NoError(t, err)

	tests := []struct {
		raw  string
		id   int64
		want bool
	}{
		{"/courses/12/files/345", 345, true},
		{"/courses/12/files/345/download?wrap=1", 345, true},
		{"https://canvas.example.edu/courses/12/files/6/preview", 6, true},
		{"https://CANVAS.example.edu/courses/12/files/7", 7, true},
		{"https://other.example.edu/courses/12/files/8", 0, false},
		{"/equation_images/x%5E2", 0, false},
		{"/courses/12/pages/intro", 0, false},
		{"mailto:someone@example.edu", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, ok := linkedFileID(base, tt.raw)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestHTMLNode_DedupesLinks(t *testing.T) {
	client, err := canvas.NewClient("https://canvas.example.edu", "secret")
	require.NoError(t, err)

	n := &HTMLNode{
		scope: scope{CourseID: 1, Root: "/dl/c", Path: "/dl/c/pages"},
		Owner: "page/1/intro",
		Body:  `<a href="/courses/1/files/5">a</a><a href="/courses/1/files/5/download">b</a><img src="/courses/1/files/6"><a>no href</a>`,
	}

	expansion, err := n.Expand(context.Background(), &Env{Client: client})
	require.NoError(t, err)
	require.Len(t, expansion.Children, 2)
	assert.Equal(t, "file/5", expansion.Children[0].Key())
	assert.Equal(t, "file/6", expansion.Children[1].Key())
}

func TestFlattenComments(t *testing.T) {
	comments := []canvas.Comment{
		{ID: 1, Replies: []canvas.Comment{{ID: 2, Replies: []canvas.Comment{{ID: 3}}}}},
		{ID: 4},
	}

	var ids []int64
	for _, c := range flattenComments(comments) {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
}

func TestRenderDiscussion(t *testing.T) {
	page, err := renderDiscussion(canvas.Discussion{
		Title:    "Week <1>",
		Message:  "<p>hello</p>",
		PostedAt: "2024-01-01T00:00:00Z",
		Author:   &canvas.DiscussionAuthor{DisplayName: "Prof"},
	}, []canvas.Comment{{UserName: "Student", Message: "<p>reply</p>"}, {UserName: "Silent"}})
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<title>Week &lt;1&gt;</title>")
	assert.Contains(t, html, "<p>hello</p>")
	assert.Contains(t, html, "Prof | 2024-01-01T00:00:00Z")
	assert.Contains(t, html, "Comments (1)")
	assert.Contains(t, html, "<p>reply</p>")
	assert.NotContains(t, html, "Silent")
}

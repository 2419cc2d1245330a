package discoverer

import (
	"context"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"time"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// scope locates a node inside a course and its local directory
type scope struct {
	CourseID   int64
	CourseCode string
	Root       string
	Path       string
}

// Dir returns the local directory the node's content lands in
func (s scope) Dir() string {
	return s.Path
}

// at returns the same course scope rooted at a subdirectory
func (s scope) at(elems ...string) scope {
	sub := s
	parts := make([]string, 0, len(elems)+1)
	parts = append(parts, s.Path)
	for _, elem := range elems {
		parts = append(parts, utils.SanitizeFilename(elem))
	}
	sub.Path = filepath.Join(parts...)
	return sub
}

func (s scope) container() string {
	rel, err := filepath.Rel(s.Root, s.Path)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (s scope) endpoint(format string, args ...any) string {
	return canvas.CourseEndpoint(s.CourseID, fmt.Sprintf(format, args...))
}

// fileItem turns a remote file into a leaf stored as name in the scope
// directory. Locked files and files without a usable timestamp or URL are
// dropped.
func (s scope) fileItem(env *Env, f canvas.File, name string) *models.Item {
	if f.LockedForUser {
		env.Logger.Debug("locked file dropped", "file", f.ID, "name", f.DisplayName)
		return nil
	}

	updatedAt, err := time.Parse(time.RFC3339, f.UpdatedAt)
	if err != nil {
		env.Logger.Warn("file dropped, invalid updated_at", "file", f.ID, "updated_at", f.UpdatedAt)
		return nil
	}

	if f.URL == "" {
		env.Logger.Debug("file dropped, no download url", "file", f.ID, "name", f.DisplayName)
		return nil
	}

	item := models.NewItem(models.ItemKindFile, filepath.Join(s.Path, utils.SanitizeFilename(name)))
	item.RemoteID = fmt.Sprintf("%d", f.ID)
	item.Course = s.CourseCode
	item.Container = s.container()
	item.URL = f.URL
	item.Size = f.Size
	item.UpdatedAt = updatedAt

	return item
}

func (s scope) fileItems(env *Env, files []canvas.File, name func(canvas.File) string) []*models.Item {
	items := make([]*models.Item, 0, len(files))
	for _, f := range files {
		if item := s.fileItem(env, f, name(f)); item != nil {
			items = append(items, item)
		}
	}
	return items
}

// inlineItem returns a leaf whose content is generated locally
func (s scope) inlineItem(name string, content []byte, updatedAt string) *models.Item {
	item := models.NewItem(models.ItemKindInline, filepath.Join(s.Path, utils.SanitizeFilename(name)))
	item.Course = s.CourseCode
	item.Container = s.container()
	item.Content = content
	item.Size = int64(len(content))
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		item.UpdatedAt = t
	}
	return item
}

// jsonItem returns a leaf holding a raw API response, or nil when raw
// responses are not kept
func (s scope) jsonItem(env *Env, name string, dump []byte) *models.Item {
	if !env.SaveJSON || len(dump) == 0 {
		return nil
	}
	return s.inlineItem(name+".json", dump, "")
}

// fetchAll reads a list endpoint, keeping the indented response when raw
// responses are saved
func fetchAll[T any](ctx context.Context, env *Env, endpoint string) ([]T, []byte, error) {
	if env.SaveJSON {
		return canvas.FetchAllJSON[T](ctx, env.Client, endpoint)
	}
	records, err := canvas.FetchAll[T](ctx, env.Client, endpoint)
	return records, nil, err
}

// fetchOne is fetchAll for a single object endpoint
func fetchOne[T any](ctx context.Context, env *Env, endpoint string) (*T, []byte, error) {
	if env.SaveJSON {
		return canvas.FetchOneJSON[T](ctx, env.Client, endpoint)
	}
	out, err := canvas.FetchOne[T](ctx, env.Client, endpoint)
	return out, nil, err
}

func displayName(f canvas.File) string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return f.Filename
}

func wrapHTML(title, body string) []byte {
	return []byte(fmt.Sprintf("<html><head><title>%s</title></head><body>%s</body></html>", html.EscapeString(title), body))
}

// section marks course sections that may be disabled for the user
type section struct{}

func (section) Optional() bool { return true }

// CourseNode is the root of one course
type CourseNode struct {
	scope
	Course canvas.Course
}

// NewCourseNode returns the root node of course, stored under destination
func NewCourseNode(course canvas.Course, destination string) *CourseNode {
	code := course.CourseCode
	if code == "" {
		code = course.Name
	}
	root := filepath.Join(destination, utils.SanitizeFilename(strings.ReplaceAll(code, "/", "_")))

	return &CourseNode{
		scope: scope{
			CourseID:   course.ID,
			CourseCode: code,
			Root:       root,
			Path:       root,
		},
		Course: course,
	}
}

func (n *CourseNode) Key() string { return fmt.Sprintf("course/%d", n.CourseID) }

// Expand returns one node per course section
func (n *CourseNode) Expand(_ context.Context, env *Env) (Expansion, error) {
	expansion := Expansion{
		Children: []Node{
			&FolderListNode{scope: n.at("files"), URL: n.endpoint("folders/by_path/"), Section: true},
			&AssignmentsNode{scope: n.at("assignments")},
			&DiscussionsNode{scope: n.at("discussions")},
			&DiscussionsNode{scope: n.at("announcements"), Announcements: true},
			&PagesNode{scope: n.at("pages")},
			&ModulesNode{scope: n.at("modules")},
			&SyllabusNode{scope: n.scope},
		},
	}
	if env.SaveJSON {
		expansion.Children = append(expansion.Children, &UsersNode{scope: n.scope})
	}
	if env.Panopto != nil {
		expansion.Children = append(expansion.Children, &VideosNode{scope: n.at("videos")})
	}

	return expansion, nil
}

package discoverer

import (
	"context"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/ignore"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/panopto"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// Node is a container of the remote content hierarchy
type Node interface {
	// Key identifies the remote object behind the node
	Key() string
	// Expand fetches the node's direct children and leaves
	Expand(ctx context.Context, env *Env) (Expansion, error)
}

// Located is implemented by nodes whose content lands under a local directory
type Located interface {
	Dir() string
}

// Optional is implemented by nodes for course sections that may be
// disabled. A permission or not-found error on them is not a failure.
type Optional interface {
	Optional() bool
}

// Expansion is the result of expanding one node
type Expansion struct {
	Children []Node
	Items    []*models.Item
}

// Add appends the non-nil leaves to the expansion
func (e *Expansion) Add(items ...*models.Item) {
	for _, item := range items {
		if item != nil {
			e.Items = append(e.Items, item)
		}
	}
}

// Env holds the collaborators shared by every node of a discovery
type Env struct {
	Client *canvas.Client
	Ignore ignore.Predicate
	Logger *log.FieldedLogger
	// SaveJSON stores the raw API responses next to the rendered content
	SaveJSON bool
	// Panopto enables the lecture recordings of each course when set
	Panopto *panopto.Config
}

package discoverer

import (
	"context"
	"fmt"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
)

// FolderListNode lists the folders found at URL. A folder without parent
// is the course root and does not add a directory level.
type FolderListNode struct {
	scope
	URL     string
	Section bool
}

func (n *FolderListNode) Key() string { return "folders/" + n.URL }

func (n *FolderListNode) Optional() bool { return n.Section }

func (n *FolderListNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	folders, err := canvas.FetchAll[canvas.Folder](ctx, env.Client, n.URL)
	if err != nil {
		return Expansion{}, err
	}

	var expansion Expansion
	for _, folder := range folders {
		if folder.LockedForUser {
			env.Logger.Debug("locked folder skipped", "folder", folder.ID, "name", folder.FullName)
			continue
		}

		child := &FolderNode{scope: n.scope, Folder: folder}
		if folder.ParentFolderID != nil {
			child.scope = n.at(folder.Name)
		}
		expansion.Children = append(expansion.Children, child)
	}

	return expansion, nil
}

// FolderNode yields the files of one folder and lists its subfolders
type FolderNode struct {
	scope
	Folder canvas.Folder
}

func (n *FolderNode) Key() string { return fmt.Sprintf("folder/%d", n.Folder.ID) }

func (n *FolderNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	var expansion Expansion

	if n.Folder.FilesURL != "" {
		files, err := canvas.FetchAll[canvas.File](ctx, env.Client, n.Folder.FilesURL)
		if err != nil {
			return Expansion{}, err
		}
		expansion.Items = n.fileItems(env, files, displayName)
	}

	if n.Folder.FoldersURL != "" {
		expansion.Children = append(expansion.Children, &FolderListNode{scope: n.scope, URL: n.Folder.FoldersURL})
	}

	return expansion, nil
}

// FileRefNode resolves a file referenced by id
type FileRefNode struct {
	scope
	FileID int64
}

func (n *FileRefNode) Key() string { return fmt.Sprintf("file/%d", n.FileID) }

func (n *FileRefNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	f, err := canvas.FetchOne[canvas.File](ctx, env.Client, fmt.Sprintf("/api/v1/files/%d", n.FileID))
	if err != nil {
		return Expansion{}, err
	}

	var expansion Expansion
	if item := n.fileItem(env, *f, displayName(*f)); item != nil {
		expansion.Items = append(expansion.Items, item)
	}

	return expansion, nil
}

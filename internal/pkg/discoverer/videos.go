package discoverer

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/panopto"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// VideosNode launches the Panopto tool of a course and lists its
// recordings. A course without the tool yields nothing.
type VideosNode struct {
	scope
	section
}

func (n *VideosNode) Key() string { return fmt.Sprintf("course/%d/videos", n.CourseID) }

func (n *VideosNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	token, err := env.Client.SessionToken(ctx, env.Panopto.LaunchURL(env.Client.BaseURL(), n.CourseID))
	if err != nil {
		return Expansion{}, err
	}

	client, err := panopto.Launch(ctx, *env.Panopto, env.Client.BaseURL(), token.SessionURL)
	if errors.Is(err, panopto.ErrNoLaunchForm) {
		env.Logger.Debug("course has no panopto tool", "course", n.CourseID)
		return Expansion{}, nil
	}
	if err != nil {
		return Expansion{}, err
	}

	return Expansion{
		Children: []Node{&VideoFolderNode{scope: n.scope, Client: client, FolderID: client.FolderID}},
	}, nil
}

// VideoFolderNode lists the recordings and sub-folders of a Panopto folder
type VideoFolderNode struct {
	scope
	Client   *panopto.Client
	FolderID string
}

func (n *VideoFolderNode) Key() string { return "panopto/folder/" + n.FolderID }

func (n *VideoFolderNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	var expansion Expansion

	if env.SaveJSON {
		info, err := n.Client.FolderInfo(ctx, n.FolderID)
		if err != nil {
			return Expansion{}, err
		}
		expansion.Add(n.jsonItem(env, "folder", info))
	}

	sessions, subfolders, dump, err := n.Client.Sessions(ctx, n.FolderID)
	if err != nil {
		return Expansion{}, err
	}
	expansion.Add(n.jsonItem(env, "sessions", dump))

	for _, folder := range subfolders {
		expansion.Children = append(expansion.Children, &VideoFolderNode{
			scope:    n.at(folder.Name),
			Client:   n.Client,
			FolderID: folder.ID,
		})
	}
	for _, session := range sessions {
		expansion.Children = append(expansion.Children, &VideoSessionNode{scope: n.scope, Client: n.Client, Session: session})
	}

	return expansion, nil
}

// VideoSessionNode resolves the file of one recording
type VideoSessionNode struct {
	scope
	Client  *panopto.Client
	Session panopto.Session
}

func (n *VideoSessionNode) Key() string { return "panopto/session/" + n.Session.DeliveryID }

func (n *VideoSessionNode) Expand(ctx context.Context, env *Env) (Expansion, error) {
	started, ok := n.Session.Started()
	if !ok {
		env.Logger.Warn("recording dropped, invalid start time", "session", n.Session.SessionName, "start", n.Session.StartTime)
		return Expansion{}, nil
	}

	streamURL, err := n.Client.StreamURL(ctx, n.Session)
	if errors.Is(err, panopto.ErrNoStream) {
		env.Logger.Warn("recording dropped", "session", n.Session.SessionName, "err", err)
		return Expansion{}, nil
	}
	if err != nil {
		return Expansion{}, err
	}

	name := n.Session.SessionName + path.Ext(streamURL)

	item := models.NewItem(models.ItemKindFile, n.at(name).Path)
	item.RemoteID = n.Session.DeliveryID
	item.Course = n.CourseCode
	item.Container = n.container()
	item.URL = streamURL
	item.UpdatedAt = started

	return Expansion{Items: []*models.Item{item}}, nil
}

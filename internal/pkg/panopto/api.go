package panopto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/grafov/m3u8"
)

const (
	folderInfoPath   = "/Panopto/Services/Data.svc/GetFolderInfo"
	sessionsPath     = "/Panopto/Services/Data.svc/GetSessions"
	deliveryInfoPath = "/Panopto/Pages/Viewer/DeliveryInfo.aspx"

	sessionsPerPage = 100
	defaultCDNHost  = "s-cloudfront.cdn.ap.panopto.com"
)

// FolderInfo returns the raw description of a folder
func (c *Client) FolderInfo(ctx context.Context, folderID string) ([]byte, error) {
	return c.postJSON(ctx, folderInfoPath, map[string]any{"folderID": folderID}, nil)
}

// Sessions returns the recordings and sub-folders of a folder, reading
// every result page. The raw recordings are returned as a JSON array.
func (c *Client) Sessions(ctx context.Context, folderID string) ([]Session, []Folder, []byte, error) {
	var (
		sessions   []Session
		subfolders []Folder
		raw        = []json.RawMessage{}
	)

	for page := 0; ; page++ {
		var result sessionsPage
		body, err := c.postJSON(ctx, sessionsPath, sessionsQuery(folderID, page), &result)
		if err != nil {
			return nil, nil, nil, err
		}

		// Every page repeats the sub-folders
		if page == 0 {
			subfolders = result.D.Subfolders
		}
		if len(result.D.Results) == 0 {
			break
		}
		sessions = append(sessions, result.D.Results...)

		var rawPage struct {
			D struct {
				Results []json.RawMessage `json:"Results"`
			} `json:"d"`
		}
		if err := json.Unmarshal(body, &rawPage); err == nil {
			raw = append(raw, rawPage.D.Results...)
		}
	}

	dump, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, nil, nil, err
	}

	return sessions, subfolders, append(dump, '\n'), nil
}

func sessionsQuery(folderID string, page int) map[string]any {
	return map[string]any{
		"queryParameters": map[string]any{
			"query":                     nil,
			"sortColumn":                1,
			"sortAscending":             false,
			"maxResults":                sessionsPerPage,
			"page":                      page,
			"startDate":                 nil,
			"endDate":                   nil,
			"folderID":                  folderID,
			"bookmarked":                false,
			"getFolderData":             true,
			"isSharedWithMe":            false,
			"isSubscriptionsPage":       false,
			"includeArchived":           true,
			"includeArchivedStateCount": true,
			"sessionListOnlyArchived":   false,
			"includePlaylists":          true,
		},
	}
}

// StreamURL resolves the downloadable file of a recording: the first
// segment of the highest bandwidth variant of its HLS stream
func (c *Client) StreamURL(ctx context.Context, session Session) (string, error) {
	form := url.Values{
		"deliveryId":                 {session.DeliveryID},
		"invocationId":               {""},
		"isLiveNotes":                {"false"},
		"refreshAuthCookie":          {"true"},
		"isActiveBroadcast":          {"false"},
		"isEditing":                  {"false"},
		"isKollectiveAgentInstalled": {"false"},
		"isEmbed":                    {"false"},
		"responseType":               {"json"},
	}

	body, err := c.send(ctx, http.MethodPost, c.endpoint(deliveryInfoPath), []byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}

	var info deliveryInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return "", &canvas.APIError{Kind: canvas.KindDecode, URL: c.endpoint(deliveryInfoPath), Err: err}
	}

	root := streamRoot(session, info.ViewerFileID)

	master, err := c.playlist(ctx, root+"/master.m3u8")
	if err != nil {
		return "", err
	}
	masterPlaylist, ok := master.(*m3u8.MasterPlaylist)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a master playlist", ErrNoStream, root)
	}

	variant := bestVariant(masterPlaylist)
	if variant == nil {
		return "", fmt.Errorf("%w: %s has no variant", ErrNoStream, root)
	}

	index, err := c.playlist(ctx, root+"/"+variant.URI)
	if err != nil {
		return "", err
	}
	mediaPlaylist, ok := index.(*m3u8.MediaPlaylist)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a media playlist", ErrNoStream, variant.URI)
	}

	segment := firstSegment(mediaPlaylist)
	if segment == "" {
		return "", fmt.Errorf("%w: %s has no segment", ErrNoStream, variant.URI)
	}

	return root + "/" + path.Join(path.Dir(variant.URI), segment), nil
}

// streamRoot returns the HLS directory of a recording on the CDN named by
// its iOS video URL
func streamRoot(session Session, viewerFileID string) string {
	scheme, host := "https", defaultCDNHost
	if u, err := url.Parse(session.IosVideoURL); err == nil && u.Host != "" {
		host = u.Host
		if u.Scheme != "" {
			scheme = u.Scheme
		}
	}

	return fmt.Sprintf("%s://%s/sessions/%s/%s-%s.hls", scheme, host, session.SessionID, session.DeliveryID, viewerFileID)
}

func (c *Client) playlist(ctx context.Context, rawURL string) (m3u8.Playlist, error) {
	body, err := c.send(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return nil, err
	}

	playlist, _, err := m3u8.DecodeFrom(bytes.NewReader(body), true)
	if err != nil {
		return nil, &canvas.APIError{Kind: canvas.KindDecode, URL: rawURL, Err: err}
	}

	return playlist, nil
}

func bestVariant(playlist *m3u8.MasterPlaylist) *m3u8.Variant {
	var best *m3u8.Variant
	for _, variant := range playlist.Variants {
		if variant == nil || strings.TrimSpace(variant.URI) == "" {
			continue
		}
		if best == nil || variant.Bandwidth > best.Bandwidth {
			best = variant
		}
	}
	return best
}

func firstSegment(playlist *m3u8.MediaPlaylist) string {
	for _, segment := range playlist.Segments {
		if segment != nil && segment.URI != "" {
			return segment.URI
		}
	}
	return ""
}

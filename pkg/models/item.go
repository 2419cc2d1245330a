package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemKind tells the transfer executor where the bytes of an item come from
type ItemKind int

const (
	// ItemKindFile is a remote file streamed from its URL
	ItemKindFile ItemKind = iota
	// ItemKindInline is generated content (HTML body, internet shortcut) held in Content
	ItemKindInline
)

func (k ItemKind) String() string {
	switch k {
	case ItemKindFile:
		return "file"
	case ItemKindInline:
		return "inline"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Item is one downloadable leaf found during discovery.
// It is never modified after being appended to an ItemCollection.
type Item struct {
	ID         string    // ID is a run-local unique identifier
	RemoteID   string    // RemoteID is the identifier of the object on the remote API, if any
	Course     string    // Course is the course code the item belongs to
	Container  string    // Container is the logical path inside the course (e.g. "files/Week 1")
	Kind       ItemKind  // Kind selects how the content is obtained
	URL        string    // URL is the download locator for ItemKindFile
	Size       int64     // Size is the remote size in bytes, 0 if unknown
	UpdatedAt  time.Time // UpdatedAt is the remote modification time, zero if unknown
	TargetPath string    // TargetPath is the absolute local destination
	Content    []byte    // Content holds the payload of ItemKindInline items
}

// NewItem returns an item with a fresh run-local ID
func NewItem(kind ItemKind, targetPath string) *Item {
	return &Item{
		ID:         uuid.New().String(),
		Kind:       kind,
		TargetPath: targetPath,
	}
}

// GetShortID returns the first 5 characters of the item ID, for logs
func (i *Item) GetShortID() string {
	if len(i.ID) < 5 {
		return i.ID
	}
	return i.ID[:5]
}

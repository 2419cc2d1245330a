package models

import (
	"sync"
)

// ItemCollection is the append-only set of items discovered during one phase.
// Any number of goroutines may Append until Freeze is called, after which
// the collection is read-only.
type ItemCollection struct {
	mu     sync.Mutex
	items  []*Item
	frozen bool
}

// NewItemCollection returns an empty, unfrozen collection
func NewItemCollection() *ItemCollection {
	return &ItemCollection{}
}

// Append adds items to the collection. It returns ErrCollectionFrozen once
// the collection has been frozen.
func (c *ItemCollection) Append(items ...*Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrCollectionFrozen
	}

	c.items = append(c.items, items...)
	return nil
}

// Freeze makes the collection read-only and returns its content
func (c *ItemCollection) Freeze() []*Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frozen = true
	return c.items
}

// Frozen reports whether Freeze has been called
func (c *ItemCollection) Frozen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.frozen
}

// Len returns the number of items appended so far
func (c *ItemCollection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}

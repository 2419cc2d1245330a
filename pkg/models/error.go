package models

import "errors"

var (
	// ErrCollectionFrozen is returned when appending to a collection after its phase barrier fired
	ErrCollectionFrozen = errors.New("item collection is frozen")
)

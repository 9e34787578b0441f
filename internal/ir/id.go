package ir

import "github.com/google/uuid"

// ID is a stable identity for an IR node, distinct from both Go pointer
// identity and structural/value equality. It is assigned once at
// construction and never recomputed, so two structurally-identical nodes
// (e.g. two Signals with the same name/width) still compare unequal by ID.
type ID uuid.UUID

// NewID allocates a fresh, globally-unique ID.
func NewID() ID {
	return ID(uuid.New())
}

// String renders the ID in canonical UUID form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

package models

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ItemRef is a tagged reference to an item. Clients may still send the
// legacy integer key from the old inventory system; the reference is parsed
// once at the API boundary and resolved to the canonical uuid before any
// write, so nothing downstream ever sniffs formats.
type ItemRef struct {
	UUID     uuid.UUID
	LegacyID int64
	byLegacy bool
}

// ParseItemRef accepts either a uuid string or a positive integer key.
func ParseItemRef(raw string) (ItemRef, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return ItemRef{UUID: id}, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return ItemRef{}, fmt.Errorf("item reference %q is neither a uuid nor a positive integer", raw)
	}
	return ItemRef{LegacyID: n, byLegacy: true}, nil
}

// ByLegacy reports whether the reference used the old integer key.
func (r ItemRef) ByLegacy() bool { return r.byLegacy }

func (r ItemRef) String() string {
	if r.byLegacy {
		return strconv.FormatInt(r.LegacyID, 10)
	}
	return r.UUID.String()
}

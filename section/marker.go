package section

import (
	"fmt"

	"github.com/google/uuid"
)

// Marker is the 16-byte delimiter written after the header and after every
// section of one file. It is generated once per writer session.
//
// Markers are a sync pattern for inspection tools; readers locate content
// through the footer and never scan for them.
type Marker [MarkerSize]byte

// NewMarker returns a random marker.
func NewMarker() (Marker, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Marker{}, fmt.Errorf("generate section marker: %w", err)
	}

	return Marker(id), nil
}

// String formats the marker like a UUID.
func (m Marker) String() string {
	return uuid.UUID(m).String()
}

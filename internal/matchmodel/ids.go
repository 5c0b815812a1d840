package matchmodel

import "github.com/google/uuid"

// NewID mints an opaque identifier for organizations, programs, or match
// records created in-process rather than loaded from a store. No code in
// this module calls it; stored records keep the IDs they were saved with.
func NewID() string {
	return uuid.NewString()
}

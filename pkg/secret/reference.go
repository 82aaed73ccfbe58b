package secret

import (
	"strings"

	"github.com/google/uuid"
)

const referencePrefix = "secret:"

// NewReference returns a fresh opaque reference.
func NewReference() string {
	return referencePrefix + uuid.NewString()
}

// ReferenceID strips the reference prefix. ok is false for strings that are not references.
func ReferenceID(reference string) (id string, ok bool) {
	id, ok = strings.CutPrefix(reference, referencePrefix)
	if !ok || id == "" {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

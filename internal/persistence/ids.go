package persistence

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// holdNamespace scopes hold IDs so they cannot collide with other
// name-based UUIDs.
var holdNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cled:hold"))

// HoldID derives a document ID from a hold's scene handle. The same handle
// always maps to the same ID, but handles are reissued every session, so
// IDs only link records inside one document.
func HoldID(uid uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uid)
	return uuid.NewSHA1(holdNamespace, b[:]).String()
}

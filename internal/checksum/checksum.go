// Package checksum provides the short content hash used in tag dedup keys.
package checksum

import (
	"encoding/hex"
	"hash/fnv"
)

// Short returns an 8-character hex FNV-1a digest of s. It is fast and
// deterministic; it only needs to distinguish differing tag payloads on the
// same line, not to be collision-resistant.
func Short(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

package stable

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/taigrr/colorhash"
)

// Digest returns the hex SHA-256 of the canonical encoding of v. Because
// the encoding is deterministic, the digest is a stable cache key across
// processes and re-runs.
func Digest(v any) (string, error) {
	b, err := Serialize(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// ShardedPath maps a digest to a bucketed storage path, distributing
// content-addressed blobs across at most 1000 directories. The bucket is
// derived from a secondary hash of the digest so that lexicographically
// close digests do not cluster.
func ShardedPath(digest string) string {
	bucket := colorhash.HashString(digest) % 1000
	return fmt.Sprintf("%d-%05d-%s", bucket, 0, digest)
}

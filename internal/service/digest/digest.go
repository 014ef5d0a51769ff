// Package digest computes the hash service's value digest.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Sum returns the lowercase hex SHA-256 of the decimal form of v.
func Sum(v uint64) string {
	sum := sha256.Sum256([]byte(strconv.FormatUint(v, 10)))
	return hex.EncodeToString(sum[:])
}

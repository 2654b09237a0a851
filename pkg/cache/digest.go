package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 of data. Documents are hashed in
// canonical form, so two spellings of the same process share a digest.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// keyFor returns "<kind>:<digest>" over the msgpack encoding of parts.
// Option structs encode field by field in declaration order, and floats keep
// their exact bits, so 150 and 150.0000001 never share a layout.
func keyFor(kind string, parts ...any) string {
	data, _ := Encode(parts) // strings and flat option structs always encode
	return kind + ":" + Hash(data)
}

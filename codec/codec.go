// Package codec provides the value (de)serializers used by nebulex.
//
// Byte-backed level stores (bigcache, ristretto, redis, local) hold framed
// entries; a Codec[V] converts the caller's value type to and from the
// payload embedded in that framing.
package codec

// Codec encodes/decodes values V to []byte for storage in a level.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

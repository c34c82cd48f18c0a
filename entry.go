package nebulex

// Entry is the object shape of a cached value: the logical key, the decoded
// value, and the version token assigned when the entry was written. The
// token feeds optimistic checks via WithVersion.
type Entry[V any] struct {
	Key     string
	Value   V
	Version uint64
}

// Update is the tagged result of a GetAndUpdate function: replace the entry
// with a new value, or remove it. A tagged result avoids sentinel values
// that could collide with legitimate data.
type Update[V any] struct {
	value  V
	remove bool
}

// Replace requests the entry be written with v.
func Replace[V any](v V) Update[V] { return Update[V]{value: v} }

// Remove requests the entry be deleted.
func Remove[V any]() Update[V] { return Update[V]{remove: true} }

// Package dedupe collapses row sequences into unique-by-key sets with a
// configurable conflict policy. It is a pure transformation: no I/O, no
// side effects beyond the returned result.
package dedupe

// Policy selects which row wins when two rows share a key.
type Policy string

const (
	// First keeps the earliest row seen for a key.
	First Policy = "first"
	// Last keeps the latest row seen for a key.
	Last Policy = "last"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == First || p == Last
}

// Result holds the outcome of a dedupe pass. Keys preserves
// first-insertion order so output iteration is stable.
type Result[T any] struct {
	Total int
	Keys  []string
	ByKey map[string]T
}

// Rows returns the unique rows in first-insertion key order.
func (r Result[T]) Rows() []T {
	out := make([]T, 0, len(r.Keys))
	for _, k := range r.Keys {
		out = append(out, r.ByKey[k])
	}
	return out
}

// ByKey deduplicates rows by the key function. Rows whose key is empty
// are excluded from the unique set but still counted in Total. On a key
// collision the incoming row replaces the stored one only under the
// Last policy.
func ByKey[T any](rows []T, key func(T) string, policy Policy) Result[T] {
	res := Result[T]{ByKey: make(map[string]T, len(rows))}
	for _, row := range rows {
		res.Total++
		k := key(row)
		if k == "" {
			continue
		}
		if _, seen := res.ByKey[k]; seen {
			if policy == Last {
				res.ByKey[k] = row
			}
			continue
		}
		res.Keys = append(res.Keys, k)
		res.ByKey[k] = row
	}
	return res
}

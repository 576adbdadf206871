package store

// Resolver locates the existing record matching a candidate, if any.
//
// It is a closed variant over two strategies, selected when the Store is
// constructed:
//
//   - Equality: the first element structurally equal to the candidate.
//     Suited to append-like data where an exact duplicate must not be
//     re-inserted but partial updates are not expected.
//   - Key: the first element whose projected key equals the candidate's,
//     ignoring every other field. Suited to frequently-updated records with
//     a small natural identity.
type Resolver[T comparable] struct {
	// key is nil for the equality strategy.
	key func(T) any
}

// Equality returns a resolver matching on structural equality.
func Equality[T comparable]() Resolver[T] {
	return Resolver[T]{}
}

// Key returns a resolver matching on the key projected by fn.
func Key[T comparable, K comparable](fn func(T) K) Resolver[T] {
	return Resolver[T]{key: func(rec T) any { return fn(rec) }}
}

// locate returns the position of the match in rows, or false if absent.
func (r Resolver[T]) locate(rows []T, rec T) (int, bool) {
	if r.key == nil {
		for i := range rows {
			if rows[i] == rec {
				return i, true
			}
		}
		return 0, false
	}
	k := r.key(rec)
	for i := range rows {
		if r.key(rows[i]) == k {
			return i, true
		}
	}
	return 0, false
}

package store

// actionKind is the computed effect of a single mutation request.
type actionKind int

const (
	actionNoOp actionKind = iota
	actionInsert
	actionReplaceAt
	actionRemoveAt
)

func (k actionKind) String() string {
	switch k {
	case actionInsert:
		return "insert"
	case actionReplaceAt:
		return "replace"
	case actionRemoveAt:
		return "remove"
	default:
		return "noop"
	}
}

// action is computed fresh for every mutation and never persisted.
type action[T comparable] struct {
	kind   actionKind
	index  int
	record T
}

// planUpsert decides between insert, replace and no-op.
//
// A key match with changed non-key fields is a replace: full structural
// equality is always checked before skipping the write, regardless of the
// resolver strategy.
func planUpsert[T comparable](rows []T, rec T, pos int, found bool) action[T] {
	if !found {
		return action[T]{kind: actionInsert, record: rec}
	}
	if rows[pos] == rec {
		return action[T]{kind: actionNoOp}
	}
	return action[T]{kind: actionReplaceAt, index: pos, record: rec}
}

// planDelete decides between remove and no-op. Deleting an absent record is
// a normal no-op, not an error.
func planDelete[T comparable](pos int, found bool) action[T] {
	if !found {
		return action[T]{kind: actionNoOp}
	}
	return action[T]{kind: actionRemoveAt, index: pos}
}

// materialize builds the resulting collection without mutating rows.
func (a action[T]) materialize(rows []T) []T {
	switch a.kind {
	case actionInsert:
		next := make([]T, len(rows)+1)
		copy(next, rows)
		next[len(rows)] = a.record
		return next
	case actionReplaceAt:
		next := make([]T, len(rows))
		copy(next, rows)
		next[a.index] = a.record
		return next
	case actionRemoveAt:
		next := make([]T, 0, len(rows)-1)
		next = append(next, rows[:a.index]...)
		return append(next, rows[a.index+1:]...)
	default:
		return rows
	}
}

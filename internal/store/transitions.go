package store

import "fmt"

// transitions lists, per status, the statuses it may move to. Board columns
// accept a card from any other column, so the tables below are complete
// graphs; tightening a workflow means removing edges here.
type transitions[S ~string] map[S][]S

func permissive[S ~string](all []S) transitions[S] {
	t := make(transitions[S], len(all))
	for _, from := range all {
		t[from] = append([]S(nil), all...)
	}
	return t
}

func (t transitions[S]) allows(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError reports a status change that the table does not allow.
type TransitionError struct {
	Kind string
	From string
	To   string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("invalid %s status transition %s -> %s", e.Kind, e.From, e.To)
}

func ensureTransition[S ~string](t transitions[S], kind string, from, to S) error {
	if t.allows(from, to) {
		return nil
	}
	return TransitionError{Kind: kind, From: string(from), To: string(to)}
}

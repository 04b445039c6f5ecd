package session

import "errors"

// State is the lifecycle position of one message code.
type State int

const (
	Unfetched State = iota
	Loaded
	Decrypted
	AttemptsExhausted
	Deleted
	Expired
)

var stateNames = [...]string{
	Unfetched:         "unfetched",
	Loaded:            "loaded",
	Decrypted:         "decrypted",
	AttemptsExhausted: "attempts_exhausted",
	Deleted:           "deleted",
	Expired:           "expired",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == AttemptsExhausted || s == Deleted || s == Expired
}

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrExpired           = errors.New("message expired")
	ErrAttemptsExhausted = errors.New("no attempts left, message destroyed")
)

// transitions lists every allowed edge. Loaded to Loaded is a superseding fetch;
// Loaded to Deleted is a withdrawal before reading.
var transitions = map[State][]State{
	Unfetched: {Loaded, Expired},
	Loaded:    {Loaded, Decrypted, AttemptsExhausted, Expired, Deleted},
	Decrypted: {Deleted},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

package feed

// State is the lifecycle of a feed session.
//
//	LOADING ──► ACTIVE ──► EMPTY
//	   ▲  │       │ ▲
//	   │  │       ▼ │
//	   │  │    LOADING (queue drained, reply pending)
//	   │  └──────────────► EMPTY
//	   └──── EMPTY (Reset only)
//
// EMPTY has no automatic way out; Reset models the user re-uploading a resume.
type State string

const (
	StateLoading State = "LOADING"
	StateActive  State = "ACTIVE"
	StateEmpty   State = "EMPTY"
)

var validTransitions = map[State][]State{
	StateLoading: {StateActive, StateEmpty},
	StateActive:  {StateActive, StateLoading, StateEmpty},
	StateEmpty:   {StateLoading},
}

// IsTransitionAllowed reports whether the lifecycle may move from → to.
func IsTransitionAllowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

package paging

// CursorState tells a never-fetched query apart from an exhausted one.
type CursorState int

const (
	NotFetched CursorState = iota
	HasMore
	Exhausted
)

func (s CursorState) String() string {
	switch s {
	case NotFetched:
		return "not_fetched"
	case HasMore:
		return "has_more"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

func (s CursorState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Cursor is the continuation point of one query. The zero value is NotFetched.
type Cursor struct {
	State CursorState `json:"state" msgpack:"state"`
	Token string      `json:"token,omitempty" msgpack:"token,omitempty"`
}

// advance returns the cursor following a successful page whose next token is next.
func advance(next string) Cursor {
	if next == "" {
		return Cursor{State: Exhausted}
	}
	return Cursor{State: HasMore, Token: next}
}

package remote

// Message types.
const (
	TypeSet           = "set"
	TypeSetNormalized = "set_normalized"
	TypeReset         = "reset"
	TypeGet           = "get"
	TypeState         = "state"
	TypeError         = "error"
)

// Message is the single JSON envelope used in both directions.
type Message struct {
	Type   string             `json:"type"`
	ID     string             `json:"id,omitempty"`
	Value  *float64           `json:"value,omitempty"`
	Params map[string]float64 `json:"params,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func stateMessage(params map[string]float64) Message {
	return Message{Type: TypeState, Params: params}
}

func errorMessage(err error) Message {
	return Message{Type: TypeError, Error: err.Error()}
}

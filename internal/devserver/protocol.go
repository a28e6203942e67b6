package devserver

import "github.com/vango-dev/canopy/pkg/dom/memdom"

// Message is sent from the server to the preview client.
type Message struct {
	Type string `json:"type"`

	// Mutations lists the changes of one drain in order.
	Mutations []memdom.Mutation `json:"mutations,omitempty"`

	// HTML is the full annotated body. It is set when the drain changed the
	// structure of the document, which the client cannot replay from
	// mutations alone.
	HTML string `json:"html,omitempty"`

	Error string `json:"error,omitempty"`
}

// Message types.
const (
	MessagePatch = "patch"
	MessageError = "error"
)

// Event is sent from the preview client to the server.
type Event struct {
	Type   string `json:"type"`
	Target int    `json:"target"`
	Value  string `json:"value,omitempty"`
}

// structural reports whether mutations contain changes the client must
// resync through HTML.
func structural(mutations []memdom.Mutation) bool {
	for _, m := range mutations {
		switch m.Kind {
		case memdom.MutationInsert, memdom.MutationRemove, memdom.MutationText:
			return true
		}
	}
	return false
}

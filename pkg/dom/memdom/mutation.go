package memdom

// MutationKind identifies a recorded DOM change.
type MutationKind uint8

const (
	MutationInsert MutationKind = iota + 1
	MutationRemove
	MutationAttr
	MutationRemoveAttr
	MutationText
	MutationProp
	MutationStyle
)

// String returns the string representation of the MutationKind.
func (k MutationKind) String() string {
	switch k {
	case MutationInsert:
		return "insert"
	case MutationRemove:
		return "remove"
	case MutationAttr:
		return "attr"
	case MutationRemoveAttr:
		return "removeAttr"
	case MutationText:
		return "text"
	case MutationProp:
		return "prop"
	case MutationStyle:
		return "style"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name so JSON streams stay readable.
func (k MutationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Mutation is a single change applied to a node.
type Mutation struct {
	Kind   MutationKind `json:"kind"`
	Target int          `json:"target"`
	Parent int          `json:"parent,omitempty"`

	// Before is the id of the reference node for inserts; 0 means append.
	Before int    `json:"before,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`

	// HTML is the serialized subtree for inserts.
	HTML string `json:"html,omitempty"`
}

// Recorder collects mutations for inspection in tests.
type Recorder struct {
	Mutations []Mutation
	stop      func()
}

// Record starts collecting the mutations of d.
func Record(d *Document) *Recorder {
	r := &Recorder{}
	r.stop = d.Observe(func(m Mutation) {
		r.Mutations = append(r.Mutations, m)
	})
	return r
}

// Stop detaches the recorder.
func (r *Recorder) Stop() {
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
}

// Reset discards the mutations collected so far.
func (r *Recorder) Reset() {
	r.Mutations = nil
}

// Count returns the number of recorded mutations of the given kind.
func (r *Recorder) Count(kind MutationKind) int {
	n := 0
	for _, m := range r.Mutations {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/render"
)

// Object names inside a stored snapshot.
const (
	HTMLFile     = "index.html"
	ManifestFile = "manifest.yaml"
)

// Store persists snapshots.
type Store interface {
	// Save writes both objects of snap under snap.ID.
	Save(ctx context.Context, snap *Snapshot) error

	// Load reads the snapshot stored under id.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// List returns the stored ids in lexical order.
	List(ctx context.Context) ([]string, error)
}

// Node is one wrapper of the captured tree.
type Node struct {
	Kind     string `yaml:"kind"`
	Name     string `yaml:"name,omitempty"`
	ID       string `yaml:"id,omitempty"`
	Key      string `yaml:"key,omitempty"`
	Text     string `yaml:"text,omitempty"`
	Pending  bool   `yaml:"pending,omitempty"`
	Children []Node `yaml:"children,omitempty"`
}

// Manifest describes a snapshot.
type Manifest struct {
	ID        string    `yaml:"id"`
	Created   time.Time `yaml:"created"`
	Instances int       `yaml:"instances"`
	Tree      []Node    `yaml:"tree"`
}

// Snapshot is a captured tree.
type Snapshot struct {
	Manifest
	HTML string
}

// htmlSerializer is implemented by DOM nodes that can serialize their
// children, such as memdom nodes.
type htmlSerializer interface {
	InnerHTML() string
}

// now is replaced in tests.
var now = time.Now

// Take captures the current tree of a mounted renderer.
func Take(r *render.Renderer) (*Snapshot, error) {
	if !r.Mounted() {
		return nil, errors.New(errors.ErrSnapshotStore).
			WithDetail("renderer is not mounted")
	}
	ser, ok := r.Container().(htmlSerializer)
	if !ok {
		return nil, errors.New(errors.ErrSnapshotStore).
			WithDetailf("container %T cannot serialize HTML", r.Container())
	}
	return &Snapshot{
		Manifest: Manifest{
			ID:        uuid.NewString(),
			Created:   now().UTC(),
			Instances: r.Instances(),
			Tree:      Tree(r),
		},
		HTML: ser.InnerHTML(),
	}, nil
}

// Tree rebuilds the nested wrapper tree from a depth-first walk.
func Tree(r *render.Renderer) []Node {
	type frame struct {
		depth int
		node  *Node
	}
	var roots []Node
	var stack []frame
	r.Walk(func(info render.NodeInfo) bool {
		n := Node{
			Kind:    info.Kind,
			Name:    info.Name,
			ID:      info.ID,
			Key:     info.Key,
			Text:    info.Text,
			Pending: info.Pending,
		}
		for len(stack) > 0 && stack[len(stack)-1].depth >= info.Depth {
			stack = stack[:len(stack)-1]
		}
		var added *Node
		if len(stack) == 0 {
			roots = append(roots, n)
			added = &roots[len(roots)-1]
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, n)
			added = &parent.Children[len(parent.Children)-1]
		}
		stack = append(stack, frame{depth: info.Depth, node: added})
		return true
	})
	return roots
}

// MarshalManifest encodes the manifest as YAML.
func (s *Snapshot) MarshalManifest() ([]byte, error) {
	return yaml.Marshal(&s.Manifest)
}

func decode(html, manifest []byte) (*Snapshot, error) {
	snap := &Snapshot{HTML: string(html)}
	if err := yaml.Unmarshal(manifest, &snap.Manifest); err != nil {
		return nil, errors.New(errors.ErrSnapshotStore).Wrap(err).
			WithDetail("invalid " + ManifestFile)
	}
	return snap, nil
}

package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/render"
	"github.com/vango-dev/canopy/pkg/vdom"
)

func mountDemo(t *testing.T) *render.Renderer {
	t.Helper()
	leaf := render.Create(nil).Component("Leaf", func(*render.Context) *vdom.VNode {
		return vdom.Span("x")
	})
	r := render.New(memdom.NewDocument(), func() *vdom.VNode {
		return vdom.Div(vdom.Key("k"), vdom.Comp(leaf, nil), vdom.P("y"))
	}, render.WithSync(true))
	if err := r.Mount(); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return r
}

func fixedClock(t *testing.T) time.Time {
	t.Helper()
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
	return at
}

func TestTake(t *testing.T) {
	at := fixedClock(t)
	r := mountDemo(t)

	snap, err := Take(r)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if snap.ID == "" || !snap.Created.Equal(at) {
		t.Errorf("manifest header = %q %v", snap.ID, snap.Created)
	}
	if snap.Instances != 2 {
		t.Errorf("Instances = %d, want 2", snap.Instances)
	}
	if want := `<div><span>x</span><p>y</p></div>`; snap.HTML != want {
		t.Errorf("HTML = %q, want %q", snap.HTML, want)
	}

	want := []Node{{
		Kind: "component", Name: "Root",
		Children: []Node{{
			Kind: "element", Name: "div", Key: "k",
			Children: []Node{
				{Kind: "component", Name: "Leaf", Children: []Node{
					{Kind: "element", Name: "span", Children: []Node{{Kind: "text", Text: "x"}}},
				}},
				{Kind: "element", Name: "p", Children: []Node{{Kind: "text", Text: "y"}}},
			},
		}},
	}}
	if diff := cmp.Diff(want, snap.Tree, cmpopts.IgnoreFields(Node{}, "ID")); diff != "" {
		t.Errorf("Tree mismatch (-want +got):\n%s", diff)
	}
	if snap.Tree[0].ID == "" {
		t.Error("component node has no instance id")
	}
}

func TestTakeUnmounted(t *testing.T) {
	r := render.New(memdom.NewDocument(), func() *vdom.VNode { return nil })
	if _, err := Take(r); !errors.HasCode(err, errors.ErrSnapshotStore) {
		t.Errorf("Take() error = %v, want %s", err, errors.ErrSnapshotStore)
	}
}

func TestDirStore(t *testing.T) {
	fixedClock(t)
	ctx := context.Background()
	store, err := NewDirStore(filepath.Join(t.TempDir(), "snaps"))
	if err != nil {
		t.Fatal(err)
	}
	snap, err := Take(mountDemo(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	html, err := os.ReadFile(filepath.Join(store.Path(snap.ID), HTMLFile))
	if err != nil || string(html) != snap.HTML {
		t.Errorf("index.html = %q, %v", html, err)
	}
	manifest, err := os.ReadFile(filepath.Join(store.Path(snap.ID), ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(manifest), "id: "+snap.ID) {
		t.Errorf("manifest.yaml does not name the id:\n%s", manifest)
	}

	loaded, err := store.Load(ctx, snap.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(snap, loaded); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	// Stray directories are not snapshots.
	if err := os.Mkdir(filepath.Join(store.Path("stray")), 0o755); err != nil {
		t.Fatal(err)
	}
	ids, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{snap.ID}, ids); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.Load(ctx, "missing"); !errors.HasCode(err, errors.ErrSnapshotStore) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestDecodeInvalidManifest(t *testing.T) {
	if _, err := decode(nil, []byte("id: [unclosed")); !errors.HasCode(err, errors.ErrSnapshotStore) {
		t.Errorf("decode() error = %v, want %s", err, errors.ErrSnapshotStore)
	}
}

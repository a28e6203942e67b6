package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{VKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

type testRef struct{ name string }

func (r *testRef) ComponentName() string { return r.name }

func TestComp(t *testing.T) {
	ref := &testRef{name: "Card"}
	node := Comp(ref, Props{"key": 7, "title": "hi"}, Text("a"), nil, Text("b"))

	if node.Kind != KindComponent {
		t.Errorf("Kind = %v, want KindComponent", node.Kind)
	}
	if node.Comp != ref {
		t.Errorf("Comp = %v, want %v", node.Comp, ref)
	}
	if node.Key != "7" {
		t.Errorf("Key = %q, want %q", node.Key, "7")
	}
	if len(node.Children) != 2 {
		t.Errorf("Children len = %d, want 2", len(node.Children))
	}
}

func TestCompNilProps(t *testing.T) {
	node := Comp(Registered("menu"), nil)
	if node.Props == nil {
		t.Fatal("Props = nil, want empty map")
	}
	if node.Comp.ComponentName() != "menu" {
		t.Errorf("ComponentName() = %q, want menu", node.Comp.ComponentName())
	}
}

func TestSlot(t *testing.T) {
	base := Comp(&testRef{name: "Layout"}, nil)
	withHeader := base.Slot("header", Text("h"))
	withBoth := withHeader.Slot("footer", Text("f"))

	if base.Slots != nil {
		t.Error("Slot mutated the original descriptor")
	}
	if len(withHeader.Slots) != 1 {
		t.Errorf("withHeader slots = %d, want 1", len(withHeader.Slots))
	}
	if got := len(withBoth.Slots); got != 2 {
		t.Errorf("withBoth slots = %d, want 2", got)
	}
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want string
	}{
		{"nil", nil, ""},
		{"field", &VNode{Key: "a"}, "a"},
		{"string prop", &VNode{Props: Props{"key": "b"}}, "b"},
		{"int prop", &VNode{Props: Props{"key": 3}}, "3"},
		{"none", &VNode{Props: Props{}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyOf(tt.node); got != tt.want {
				t.Errorf("KeyOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPropsCloneMerge(t *testing.T) {
	p := Props{"a": 1}
	c := p.Clone()
	c["b"] = 2
	if _, ok := p["b"]; ok {
		t.Error("Clone shares storage with the original")
	}

	m := p.Merge(Props{"a": 3, "c": 4})
	if diff := cmp.Diff(Props{"a": 3, "c": 4}, m); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
	if p["a"] != 1 {
		t.Error("Merge mutated the receiver")
	}

	if got := Props(nil).Clone(); got == nil {
		t.Error("Clone of nil = nil, want empty map")
	}
}

func TestDeferredAttr(t *testing.T) {
	calls := 0
	node := Div(Deferred(func(after bool) Props {
		calls++
		return Props{"after": after}
	}))
	if node.Deferred == nil {
		t.Fatal("Deferred = nil")
	}
	if _, ok := node.Props[deferredKey]; ok {
		t.Error("deferred callback leaked into Props")
	}
	if got := node.Deferred(true)["after"]; got != true {
		t.Errorf("Deferred(true) = %v, want true", got)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

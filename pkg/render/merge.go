package render

import (
	"strings"

	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/dom"
)

// mergeList is the existing markup of one parent that a merge mount adopts
// from. Adoption moves forward through the list so that descriptors claim
// nodes in document order.
type mergeList struct {
	parent dom.Node
	nodes  []dom.Node
	pos    int
	used   map[dom.Node]bool
}

func (r *Renderer) newMergeList(parent dom.Node) *mergeList {
	m := &mergeList{
		parent: parent,
		nodes:  parent.ChildNodes(),
		used:   make(map[dom.Node]bool),
	}
	r.mergeLists = append(r.mergeLists, m)
	return m
}

// adoptElement claims the next unused element whose tag matches,
// ignoring case.
func (m *mergeList) adoptElement(tag string) dom.Node {
	return m.adopt(func(n dom.Node) bool {
		return n.Type() == dom.ElementNode && strings.EqualFold(n.TagName(), tag)
	})
}

// adoptText claims the next unused text node.
func (m *mergeList) adoptText() dom.Node {
	return m.adopt(func(n dom.Node) bool {
		return n.Type() == dom.TextNode
	})
}

func (m *mergeList) adopt(match func(dom.Node) bool) dom.Node {
	for i := m.pos; i < len(m.nodes); i++ {
		n := m.nodes[i]
		if m.used[n] || !match(n) {
			continue
		}
		m.used[n] = true
		m.pos = i + 1
		return n
	}
	return nil
}

func (r *Renderer) mergeMismatch(w *wrapper) {
	if !r.opts.debug {
		return
	}
	err := errors.New(errors.ErrMergeMismatch).
		WithDetailf("no existing <%s> to adopt under %s", w.node.Tag, describe(elementParent(w)))
	r.logger().Warn(err.Message, "code", err.Code, "detail", err.Detail)
}

// finishMerge removes the markup no descriptor adopted.
func (r *Renderer) finishMerge() {
	lists := r.mergeLists
	r.mergeLists = nil
	for _, m := range lists {
		for _, n := range m.nodes {
			if m.used[n] || n.Parent() != m.parent {
				continue
			}
			if _, ok := r.owned[n]; ok {
				continue
			}
			if r.opts.debug {
				r.logger().Debug("removing markup left over by merge",
					"code", errors.ErrMergeMismatch, "tag", n.TagName())
			}
			m.parent.RemoveChild(n)
		}
	}
}

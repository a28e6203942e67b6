package render

import (
	"slices"
	"strings"

	"github.com/vango-dev/canopy/pkg/dom"
)

// Transitioner drives string valued enterAnimation and exitAnimation
// properties. Exit must call done exactly once, when the node may be
// detached.
type Transitioner interface {
	Enter(node dom.Node, class string)
	Exit(node dom.Node, class string, done func())
}

// CSSTransitions adds the animation name as a class and waits for the
// node's own animationend event.
type CSSTransitions struct{}

// Enter implements Transitioner. The class is removed when the animation
// ends.
func (CSSTransitions) Enter(node dom.Node, class string) {
	addClass(node, class)
	onAnimationEnd(node, func() { removeClass(node, class) })
}

// Exit implements Transitioner.
func (CSSTransitions) Exit(node dom.Node, class string, done func()) {
	addClass(node, class)
	onAnimationEnd(node, done)
}

// onAnimationEnd calls fn once, on the first animationend targeting node
// itself. Events bubbling up from descendants are ignored.
func onAnimationEnd(node dom.Node, fn func()) {
	var l *dom.Listener
	l = dom.NewListener(func(e dom.Event) {
		if e.Target != node {
			return
		}
		node.RemoveEventListener("animationend", l)
		fn()
	})
	node.AddEventListener("animationend", l)
}

func classList(node dom.Node) []string {
	s, _ := node.Property("className").(string)
	return strings.Fields(s)
}

func addClass(node dom.Node, class string) {
	list := classList(node)
	for _, c := range strings.Fields(class) {
		if !slices.Contains(list, c) {
			list = append(list, c)
		}
	}
	node.SetProperty("className", strings.Join(list, " "))
}

func removeClass(node dom.Node, class string) {
	remove := strings.Fields(class)
	list := slices.DeleteFunc(classList(node), func(c string) bool {
		return slices.Contains(remove, c)
	})
	node.SetProperty("className", strings.Join(list, " "))
}

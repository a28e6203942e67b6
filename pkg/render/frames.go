package render

// FrameScheduler runs a callback before the next paint. The browser
// implementation wraps requestAnimationFrame.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// ManualFrames is a FrameScheduler whose frames fire only when Flush is
// called. Tests and the preview server use it to step rendering explicitly.
type ManualFrames struct {
	pending []func()
}

// RequestFrame implements FrameScheduler.
func (m *ManualFrames) RequestFrame(fn func()) {
	m.pending = append(m.pending, fn)
}

// Pending returns the number of requested frames that have not fired.
func (m *ManualFrames) Pending() int {
	return len(m.pending)
}

// Flush fires every pending frame, including frames requested while
// flushing, and returns how many fired.
func (m *ManualFrames) Flush() int {
	n := 0
	for len(m.pending) > 0 {
		fns := m.pending
		m.pending = nil
		for _, fn := range fns {
			fn()
			n++
		}
	}
	return n
}

// immediateFrames runs frames synchronously. It is the fallback when async
// mode is requested without a scheduler.
type immediateFrames struct{}

func (immediateFrames) RequestFrame(fn func()) { fn() }

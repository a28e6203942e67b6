//go:build js && wasm

package jsdom

import "syscall/js"

// AnimationFrames schedules callbacks with window.requestAnimationFrame. It
// satisfies render.FrameScheduler.
type AnimationFrames struct{}

// RequestFrame implements render.FrameScheduler.
func (AnimationFrames) RequestFrame(fn func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	js.Global().Call("requestAnimationFrame", cb)
}

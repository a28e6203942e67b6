package telemetry

import "github.com/vango-dev/canopy/pkg/render"

type multi []render.Observer

// Observers fans drain notifications out to every non-nil observer in order.
func Observers(obs ...render.Observer) render.Observer {
	var m multi
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) DrainStarted() {
	for _, o := range m {
		o.DrainStarted()
	}
}

func (m multi) DrainFinished(stats render.DrainStats) {
	for _, o := range m {
		o.DrainFinished(stats)
	}
}

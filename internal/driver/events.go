package driver

import "time"

// Stage is one pass of a compilation.
type Stage string

const (
	StageLoad     Stage = "load"
	StageBind     Stage = "bind"
	StageFold     Stage = "fold"
	StageCheck    Stage = "check"
	StagePoly     Stage = "poly"
	StageLocality Stage = "locality"
)

// Stages lists the passes in pipeline order.
var Stages = []Stage{StageLoad, StageBind, StageFold, StageCheck, StagePoly, StageLocality}

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusCached  Status = "cached"
	StatusError   Status = "error"
)

// Event reports progress for one input (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Compilations running in parallel
// call OnEvent concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func notify(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

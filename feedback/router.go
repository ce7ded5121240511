// Package feedback translates decoded engine feedback events (spec §4.5)
// into pedalboard-cell-addressed user events: every event names an engine
// instance ID, which this router resolves to either a chain-row (row,
// block) cell or a tool slot index before handing it to the caller's
// callbacks. Events whose instance ID resolves to neither are dropped
// silently, matching connector.cpp's behavior for feedback that arrives
// after a block has already been torn down.
package feedback

import "github.com/shaban/modconnector/engineclient"

// Connector is the subset of the pedalboard controller the router needs: ID
// resolution plus the two mutating paths (parameter feedback overwrites the
// in-memory value so the model stays in sync with what the engine is
// actually doing, e.g. after a MIDI-mapped control changes it directly).
// Output-monitor feedback is deliberately not part of this interface: spec
// §9 resolves the "does output-monitor mutate the model" Open Question by
// never mutating it, so the router only ever forwards those read-only.
type Connector interface {
	ResolveBlock(instanceID int) (row, block int, ok bool)
	ResolveTool(instanceID int) (toolIndex int, ok bool)
	ApplyParameterFeedback(row, block int, symbol string, value float32) bool
	ApplyToolParameterFeedback(toolIndex int, symbol string, value float32) bool
}

// Router dispatches decoded feedback events to the appropriate callback.
// Any callback left nil is simply not invoked; a Router with every callback
// nil still exercises Connector's mutating paths for parameter feedback.
type Router struct {
	Target Connector

	OnParameterChanged     func(row, block int, symbol string, value float32)
	OnPropertyChanged      func(row, block int, key string, valueType byte, rawValue string)
	OnOutputMonitor        func(row, block int, symbol string, value float32)
	OnToolParameterChanged func(toolIndex int, symbol string, value float32)
	OnToolPropertyChanged  func(toolIndex int, key string, valueType byte, rawValue string)
	OnToolOutputMonitor    func(toolIndex int, symbol string, value float32)
	OnAudioMonitor         func(index int, value float32)
	OnMIDIProgramChange    func(program, channel int8)
	OnMIDIMapped           func(ev engineclient.MIDIMapped)
	OnTransport            func(rolling bool, bpb, bpm float32)
	OnLog                  func(level byte, msg string)
	OnFinished             func()
}

// Dispatch decodes ev's concrete type and routes it. It is meant to be
// passed straight to engineclient.Client.PollFeedback as the handle
// function: r.Dispatch is itself a func(engineclient.FeedbackEvent), so
// callers write client.PollFeedback(router.Dispatch).
func (r Router) Dispatch(ev engineclient.FeedbackEvent) {
	switch e := ev.(type) {
	case engineclient.ParamSet:
		r.dispatchParameter(e.InstanceID, e.Symbol, e.Value)
	case engineclient.PatchSet:
		r.dispatchProperty(e.InstanceID, e.Key, e.ValueType, e.RawValue)
	case engineclient.OutputMonitor:
		r.dispatchOutputMonitor(e.InstanceID, e.Symbol, e.Value)
	case engineclient.AudioMonitor:
		if r.OnAudioMonitor != nil {
			r.OnAudioMonitor(e.Index, e.Value)
		}
	case engineclient.MIDIProgramChange:
		if r.OnMIDIProgramChange != nil {
			r.OnMIDIProgramChange(e.Program, e.Channel)
		}
	case engineclient.MIDIMapped:
		if r.OnMIDIMapped != nil {
			r.OnMIDIMapped(e)
		}
	case engineclient.Transport:
		if r.OnTransport != nil {
			r.OnTransport(e.Rolling, e.BPB, e.BPM)
		}
	case engineclient.Log:
		if r.OnLog != nil {
			r.OnLog(e.Level, e.Msg)
		}
	case engineclient.Finished:
		if r.OnFinished != nil {
			r.OnFinished()
		}
	}
}

func (r Router) dispatchParameter(instanceID int, symbol string, value float32) {
	if row, block, ok := r.Target.ResolveBlock(instanceID); ok {
		if !r.Target.ApplyParameterFeedback(row, block, symbol, value) {
			return
		}
		if r.OnParameterChanged != nil {
			r.OnParameterChanged(row, block, symbol, value)
		}
		return
	}
	if toolIndex, ok := r.Target.ResolveTool(instanceID); ok {
		if !r.Target.ApplyToolParameterFeedback(toolIndex, symbol, value) {
			return
		}
		if r.OnToolParameterChanged != nil {
			r.OnToolParameterChanged(toolIndex, symbol, value)
		}
	}
}

func (r Router) dispatchProperty(instanceID int, key string, valueType byte, rawValue string) {
	if row, block, ok := r.Target.ResolveBlock(instanceID); ok {
		if r.OnPropertyChanged != nil {
			r.OnPropertyChanged(row, block, key, valueType, rawValue)
		}
		return
	}
	if toolIndex, ok := r.Target.ResolveTool(instanceID); ok {
		if r.OnToolPropertyChanged != nil {
			r.OnToolPropertyChanged(toolIndex, key, valueType, rawValue)
		}
	}
}

// dispatchOutputMonitor forwards an output-port monitor reading read-only;
// it never touches model state (spec §9).
func (r Router) dispatchOutputMonitor(instanceID int, symbol string, value float32) {
	if row, block, ok := r.Target.ResolveBlock(instanceID); ok {
		if r.OnOutputMonitor != nil {
			r.OnOutputMonitor(row, block, symbol, value)
		}
		return
	}
	if toolIndex, ok := r.Target.ResolveTool(instanceID); ok {
		if r.OnToolOutputMonitor != nil {
			r.OnToolOutputMonitor(toolIndex, symbol, value)
		}
	}
}

package engineclient

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// FeedbackEvent is implemented by every decoded feedback message. It is a
// closed set of concrete types switched on by the feedback router; Go has no
// tagged union, so a type switch on the concrete type plays that role.
type FeedbackEvent interface{ isFeedbackEvent() }

// ParamSet reports a control port value change on a loaded plugin instance.
type ParamSet struct {
	InstanceID int
	Symbol     string
	Value      float32
}

// AudioMonitor reports a monitored audio port's current level.
type AudioMonitor struct {
	Index int
	Value float32
}

// PatchSet reports a patch property value change.
type PatchSet struct {
	InstanceID  int
	Key         string
	ValueType   byte
	RawValue    string
}

// OutputMonitor reports a monitored output control port's value. It must
// never be used to mutate model state; it is purely informational.
type OutputMonitor struct {
	InstanceID int
	Symbol     string
	Value      float32
}

// MIDIProgramChange reports an incoming MIDI program change message.
type MIDIProgramChange struct {
	Program int8
	Channel int8
}

// MIDIMapped reports a value change arriving through a MIDI CC mapping.
type MIDIMapped struct {
	InstanceID int
	Symbol     string
	Channel    int8
	Controller uint8
	Value      float32
	Minimum    float32
	Maximum    float32
}

// Transport reports a global transport state change.
type Transport struct {
	Rolling bool
	BPB     float32
	BPM     float32
}

// Log reports a line the engine wants surfaced to the host's own logging.
type Log struct {
	Level byte
	Msg   string
}

// Finished is emitted when the engine signals graceful shutdown.
type Finished struct{}

func (ParamSet) isFeedbackEvent()          {}
func (AudioMonitor) isFeedbackEvent()       {}
func (PatchSet) isFeedbackEvent()          {}
func (OutputMonitor) isFeedbackEvent()      {}
func (MIDIProgramChange) isFeedbackEvent()  {}
func (MIDIMapped) isFeedbackEvent()         {}
func (Transport) isFeedbackEvent()          {}
func (Log) isFeedbackEvent()                {}
func (Finished) isFeedbackEvent()           {}

// PollFeedback drains every message pending on the feedback socket, decodes
// each and invokes handle for it. It does not wait for new data: when
// nothing is pending (a 1ms read deadline expires) it returns nil. Once a
// message has started arriving it reads through to its NUL terminator. Call
// it from the host's main loop at whatever cadence suits it; the protocol
// defines no push notifications beyond what has already arrived.
func (c *Client) PollFeedback(handle func(FeedbackEvent)) error {
	if c.dummy || c.fb == nil || c.fbR == nil {
		return nil
	}
	for {
		if c.fbR.Buffered() == 0 {
			c.fb.SetReadDeadline(time.Now().Add(time.Millisecond))
			_, err := c.fbR.Peek(1)
			c.fb.SetReadDeadline(time.Time{})
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return nil
			}
			if err != nil {
				return wrapErr(KindTransport, err)
			}
		}
		line, err := c.fbR.ReadString(0)
		if err != nil {
			return wrapErr(KindTransport, err)
		}
		line = strings.TrimSuffix(line, "\x00")
		if line == "" {
			continue
		}
		ev, ok := decodeFeedback(line)
		if !ok {
			c.logger.Warn().Str("line", line).Msg("engineclient: unrecognised feedback prefix, dropping")
			continue
		}
		handle(ev)
	}
}

func decodeFeedback(line string) (FeedbackEvent, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	prefix := fields[0]
	args := fields[1:]

	atoi := func(s string) int { n, _ := strconv.Atoi(s); return n }
	atof := func(s string) float32 { f, _ := strconv.ParseFloat(s, 32); return float32(f) }

	switch prefix {
	case "param_set":
		if len(args) < 3 {
			return nil, false
		}
		return ParamSet{InstanceID: atoi(args[0]), Symbol: args[1], Value: atof(args[2])}, true
	case "audio_monitor":
		if len(args) < 2 {
			return nil, false
		}
		return AudioMonitor{Index: atoi(args[0]), Value: atof(args[1])}, true
	case "patch_set":
		if len(args) < 3 {
			return nil, false
		}
		return PatchSet{InstanceID: atoi(args[0]), Key: args[1], ValueType: args[2][0], RawValue: strings.Join(args[3:], " ")}, true
	case "output_set":
		if len(args) < 3 {
			return nil, false
		}
		return OutputMonitor{InstanceID: atoi(args[0]), Symbol: args[1], Value: atof(args[2])}, true
	case "midi_program_change":
		if len(args) < 2 {
			return nil, false
		}
		return MIDIProgramChange{Program: int8(atoi(args[0])), Channel: int8(atoi(args[1]))}, true
	case "midi_mapped":
		if len(args) < 7 {
			return nil, false
		}
		return MIDIMapped{
			InstanceID: atoi(args[0]), Symbol: args[1],
			Channel: int8(atoi(args[2])), Controller: uint8(atoi(args[3])),
			Value: atof(args[4]), Minimum: atof(args[5]), Maximum: atof(args[6]),
		}, true
	case "transport":
		if len(args) < 3 {
			return nil, false
		}
		return Transport{Rolling: args[0] == "1", BPB: atof(args[1]), BPM: atof(args[2])}, true
	case "log":
		if len(args) < 1 {
			return nil, false
		}
		return Log{Level: logLevelChar(args[0]), Msg: strings.Join(args[1:], " ")}, true
	case "finished":
		return Finished{}, true
	default:
		return nil, false
	}
}

func logLevelChar(s string) byte {
	if len(s) == 0 {
		return 'n'
	}
	switch s[0] {
	case '3':
		return 'e'
	case '2':
		return 'w'
	case '0':
		return 'd'
	default:
		return 'n'
	}
}

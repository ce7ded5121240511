package engineclient

import "fmt"

// validateSymbol checks a parameter/property identifier for characters the
// wire grammar cannot carry (the protocol has no escape for interior spaces
// or quotes).
func validateSymbol(s string) error {
	for _, r := range s {
		if r == ' ' || r == '"' {
			return fmt.Errorf("invalid symbol %q: spaces and quotes are not representable on the wire", s)
		}
	}
	return nil
}

func (c *Client) validate(strict bool, checks ...error) error {
	if !c.cfg.Strict && !strict {
		return nil
	}
	for _, err := range checks {
		if err != nil {
			return wrapErr(KindValidation, err)
		}
	}
	return nil
}

// Add loads an LV2 plugin by URI into the given instance slot.
func (c *Client) Add(uri string, instance int) error {
	if err := c.validate(false, validateSymbol(uri)); err != nil {
		return err
	}
	_, err := c.send(fmt.Sprintf("add %s %d", uri, instance), ResponseNone)
	return err
}

// Preload is Add but leaves the instance deactivated.
func (c *Client) Preload(uri string, instance int) error {
	if err := c.validate(false, validateSymbol(uri)); err != nil {
		return err
	}
	_, err := c.send(fmt.Sprintf("preload %s %d", uri, instance), ResponseNone)
	return err
}

// Remove unloads an instance. instance of -1 removes every loaded instance.
func (c *Client) Remove(instance int) error {
	_, err := c.send(fmt.Sprintf("remove %d", instance), ResponseNone)
	return err
}

// Activate toggles an instance's active state.
func (c *Client) Activate(instance int, active bool) error {
	_, err := c.send(fmt.Sprintf("activate %d %s", instance, boolArg(active)), ResponseNone)
	return err
}

// Bypass toggles effect processing for an instance.
func (c *Client) Bypass(instance int, bypass bool) error {
	_, err := c.send(fmt.Sprintf("bypass %d %s", instance, boolArg(bypass)), ResponseNone)
	return err
}

// Connect wires one jack port to another.
func (c *Client) Connect(origin, destination string) error {
	if err := c.validate(false, validateSymbol(origin), validateSymbol(destination)); err != nil {
		return err
	}
	_, err := c.send(fmt.Sprintf("connect %s %s", origin, destination), ResponseNone)
	return err
}

// Disconnect unwires one jack port from another.
func (c *Client) Disconnect(origin, destination string) error {
	if err := c.validate(false, validateSymbol(origin), validateSymbol(destination)); err != nil {
		return err
	}
	_, err := c.send(fmt.Sprintf("disconnect %s %s", origin, destination), ResponseNone)
	return err
}

// DisconnectAll disconnects every connection touching a port.
func (c *Client) DisconnectAll(origin string) error {
	_, err := c.send(fmt.Sprintf("disconnect_all %s", origin), ResponseNone)
	return err
}

// ParamSet sets one control port's value on an instance.
func (c *Client) ParamSet(instance int, symbol string, value float32) error {
	if err := c.validate(false, validateSymbol(symbol)); err != nil {
		return err
	}
	_, err := c.send(fmt.Sprintf("param_set %d %s %g", instance, symbol, value), ResponseNone)
	return err
}

// ParamGet reads one control port's current value from an instance.
func (c *Client) ParamGet(instance int, symbol string) (float32, error) {
	if err := c.validate(false, validateSymbol(symbol)); err != nil {
		return 0, err
	}
	resp, err := c.send(fmt.Sprintf("param_get %d %s", instance, symbol), ResponseFloat)
	return resp.F, err
}

// MonitorOutput requests asynchronous notification of an output control
// port's value changes, delivered on the feedback socket.
func (c *Client) MonitorOutput(instance int, symbol string) error {
	_, err := c.send(fmt.Sprintf("monitor_output %d %s", instance, symbol), ResponseNone)
	return err
}

// PatchSet sets a patch property's value.
func (c *Client) PatchSet(instance int, propertyURI, value string) error {
	_, err := c.send(fmt.Sprintf("patch_set %d %s %s", instance, propertyURI, value), ResponseNone)
	return err
}

// FlushedParam is one (symbol, value) pair for a ParamsFlush batch.
type FlushedParam struct {
	Symbol string
	Value  float32
}

// ParamsFlush sets several control ports at once and optionally triggers a
// plugin's internal reset.
func (c *Client) ParamsFlush(instance int, resetValue uint8, params []FlushedParam) error {
	args := fmt.Sprintf("params_flush %d %d %d", instance, resetValue, len(params))
	for _, p := range params {
		args += fmt.Sprintf(" %s %g", p.Symbol, p.Value)
	}
	_, err := c.send(args, ResponseNone)
	return err
}

// MidiMap maps a MIDI CC (or, for cc==131, pitchbend) to a control port.
func (c *Client) MidiMap(instance int, symbol string, channel, cc uint8, min, max float32) error {
	_, err := c.send(fmt.Sprintf("midi_map %d %s %d %d %g %g", instance, symbol, channel, cc, min, max), ResponseNone)
	return err
}

// MidiUnmap removes a MIDI CC mapping from a control port.
func (c *Client) MidiUnmap(instance int, symbol string) error {
	_, err := c.send(fmt.Sprintf("midi_unmap %d %s", instance, symbol), ResponseNone)
	return err
}

// MonitorMIDIProgram enables or disables feedback of MIDI program change
// messages on the given channel.
func (c *Client) MonitorMIDIProgram(channel uint8, enable bool) error {
	_, err := c.send(fmt.Sprintf("monitor_midi_program %d %s", channel, boolArg(enable)), ResponseNone)
	return err
}

// CCMap maps a hardware control-chain actuator to a control port.
func (c *Client) CCMap(instance int, symbol string, deviceID, actuatorID int, label string, value, min, max float32, steps int) error {
	_, err := c.send(fmt.Sprintf("cc_map %d %s %d %d %q %g %g %g %d", instance, symbol, deviceID, actuatorID, label, value, min, max, steps), ResponseNone)
	return err
}

// CCUnmap removes a control-chain mapping from a control port.
func (c *Client) CCUnmap(instance int, symbol string) error {
	_, err := c.send(fmt.Sprintf("cc_unmap %d %s", instance, symbol), ResponseNone)
	return err
}

// CCValueSet pushes a new value through a mapped control-chain actuator.
func (c *Client) CCValueSet(instance int, symbol string, value float32) error {
	_, err := c.send(fmt.Sprintf("cc_value_set %d %s %g", instance, symbol, value), ResponseNone)
	return err
}

// HMIMap reports a hardware UI element assignment to an instance's control
// port.
func (c *Client) HMIMap(instance int, symbol string, hwID, page, subpage, caps, flags int, label string, min, max float32, steps int) error {
	_, err := c.send(fmt.Sprintf("hmi_map %d %s %d %d %d %d %d %q %g %g %d", instance, symbol, hwID, page, subpage, caps, flags, label, min, max, steps), ResponseNone)
	return err
}

// HMIUnmap removes a hardware UI element assignment from a control port.
func (c *Client) HMIUnmap(instance int, symbol string) error {
	_, err := c.send(fmt.Sprintf("hmi_unmap %d %s", instance, symbol), ResponseNone)
	return err
}

// CPULoad returns the current average engine CPU load.
func (c *Client) CPULoad() (float32, error) {
	resp, err := c.send("cpu_load", ResponseFloat)
	return resp.F, err
}

// FeatureEnableProcessing switches the global processing state, optionally
// with a fade.
func (c *Client) FeatureEnableProcessing(mode ProcessingType) error {
	_, err := c.send(fmt.Sprintf("feature_enable processing %d", int(mode)), ResponseNone)
	return err
}

// SetBeatsPerMinute updates the global transport tempo.
func (c *Client) SetBeatsPerMinute(bpm float64) error {
	_, err := c.send(fmt.Sprintf("set_bpm %g", bpm), ResponseNone)
	return err
}

// SetBeatsPerBar updates the global transport time signature numerator.
func (c *Client) SetBeatsPerBar(bpb float64) error {
	_, err := c.send(fmt.Sprintf("set_bpb %g", bpb), ResponseNone)
	return err
}

// Transport changes rolling state, beats-per-bar and tempo together.
func (c *Client) Transport(rolling bool, bpb, bpm float64) error {
	_, err := c.send(fmt.Sprintf("transport %s %g %g", boolArg(rolling), bpb, bpm), ResponseNone)
	return err
}

// TransportSync changes the transport sync source ("none", "link" or
// "midi").
func (c *Client) TransportSync(mode string) error {
	_, err := c.send(fmt.Sprintf("transport_sync %s", mode), ResponseNone)
	return err
}

func boolArg(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

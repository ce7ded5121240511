// Package connector implements the pedalboard controller: the stateful
// component that owns the single mutable "current" preset plus the
// preloaded peers in its bank, reconciles user intents against the running
// audio engine, and keeps the mono/stereo graph and instance-ID bookkeeping
// in agreement with the declarative model. It is the one package in this
// module that touches engineclient, instancemapper, graph and model
// together; everything else is a pure collaborator it drives.
package connector

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shaban/modconnector/engineclient"
	"github.com/shaban/modconnector/graph"
	"github.com/shaban/modconnector/instancemapper"
	"github.com/shaban/modconnector/model"
)

// ErrKind classifies a Controller error the way spec §7 requires.
type ErrKind int

const (
	KindTransport ErrKind = iota
	KindProtocol
	KindEngine
	KindValidation
	KindPersistence
	KindLogic
)

// Error wraps a cause with its classification.
type Error struct {
	Kind ErrKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind ErrKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// fromEngineErr reclassifies an engineclient error under this package's
// error kinds, since §7 keeps one last-error model per layer but the kinds
// are shared vocabulary.
func fromEngineErr(err error) error {
	if err == nil {
		return nil
	}
	var ee *engineclient.Error
	if errors.As(err, &ee) {
		switch ee.Kind {
		case engineclient.KindTransport:
			return wrapErr(KindTransport, err)
		case engineclient.KindProtocol:
			return wrapErr(KindProtocol, err)
		case engineclient.KindEngine:
			return wrapErr(KindEngine, err)
		case engineclient.KindValidation:
			return wrapErr(KindValidation, err)
		}
	}
	return wrapErr(KindTransport, err)
}

// ToolSlots is the number of instance pool slots reserved at the tail for
// standalone tool plugins, per spec §3/§4.5 ("reserved tool slots").
const ToolSlots = model.MaxToolInstances

// ToolBaseID is the first engine instance ID reserved for tool slots.
const ToolBaseID = model.MaxPluginInstances

// Controller is the pedalboard connector. It is not safe for concurrent
// use beyond the light internal locking around LastError, matching the
// single-threaded cooperative model of spec §5.
type Controller struct {
	client *engineclient.Client
	mapper *instancemapper.Mapper
	lookup model.PluginLookup
	logger zerolog.Logger

	rows int

	bank    model.Bank
	current model.Current

	tools [model.MaxToolInstances]model.ToolSlot

	firstBoot bool

	mu      sync.Mutex
	lastErr error
}

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithLogger attaches a logger; the zero value is zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New builds a Controller around an already-dialed engine client. rows is
// the number of parallel chain rows every preset carries (spec generalizes
// the source's fixed single row to N, §SPEC_FULL "NUM_BLOCK_CHAIN_ROWS").
func New(client *engineclient.Client, lookup model.PluginLookup, rows int, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		lookup:    lookup,
		rows:      rows,
		mapper:    instancemapper.New(model.MaxPluginInstances, model.PresetsPerBank, rows, model.BlocksPerPreset),
		firstBoot: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LastError returns the most recently recorded error, or nil.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	if err != nil {
		c.logger.Warn().Err(err).Msg("connector: operation failed")
	}
	return err
}

func (c *Controller) ok() error {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
	return nil
}

// Current returns a read-only view of the active preset and its bookkeeping.
func (c *Controller) Current() *model.Current { return &c.current }

// BankPreset returns the saved (non-active) state of a bank slot. If index
// is the active preset, it still reflects the bank's last-saved defaults,
// not the live edits — callers wanting the live state use Current().
func (c *Controller) BankPreset(index int) *model.Preset {
	if index < 0 || index >= model.PresetsPerBank {
		return nil
	}
	return c.bank.Presets[index]
}

func (c *Controller) validateRow(row int) error {
	if row < 0 || row >= c.rows {
		return wrapErr(KindValidation, fmt.Errorf("connector: row %d out of range [0,%d)", row, c.rows))
	}
	return nil
}

func (c *Controller) validateBlock(block int) error {
	if block < 0 || block >= model.BlocksPerPreset {
		return wrapErr(KindValidation, fmt.Errorf("connector: block %d out of range [0,%d)", block, model.BlocksPerPreset))
	}
	return nil
}

func (c *Controller) validateActuator(actuator int) error {
	if actuator < 0 || actuator >= model.BindingActuators {
		return wrapErr(KindValidation, fmt.Errorf("connector: actuator %d out of range [0,%d)", actuator, model.BindingActuators))
	}
	return nil
}

// markDirty transitions the active preset's dirty state. A scene-only write
// keeps the existing Dirty state if it is already fully Dirty, since a plain
// Dirty supersedes DirtySceneOnly (spec §4.4 state machine).
func (c *Controller) markDirty(sceneOnly bool) {
	if sceneOnly {
		if c.current.Dirty == model.Clean {
			c.current.Dirty = model.DirtySceneOnly
		}
		return
	}
	c.current.Dirty = model.Dirty
}

func (c *Controller) rowView(row int) graph.RowView {
	return chainRowView(&c.current.Chains[row])
}

// chainRowView builds the read-only shape the graph package needs from any
// chain row, active or merely stored in the bank.
func chainRowView(chain *model.ChainRow) graph.RowView {
	blocks := make([]graph.BlockView, len(chain.Blocks))
	for i := range chain.Blocks {
		b := &chain.Blocks[i]
		blocks[i] = graph.BlockView{
			Empty:       b.IsEmpty(),
			IsMonoIn:    b.Meta.IsMonoIn,
			IsStereoOut: b.Meta.IsStereoOut,
		}
	}
	return graph.RowView{
		Blocks:        blocks,
		CaptureStereo: chain.Capture[0] != chain.Capture[1],
	}
}

func (c *Controller) endpoints(row int) graph.Endpoints {
	chain := &c.current.Chains[row]
	return graph.Endpoints{Capture: chain.Capture, Playback: chain.Playback}
}

func (c *Controller) pairOf(row int) func(int) instancemapper.BlockPair {
	return func(block int) instancemapper.BlockPair {
		return c.mapper.Get(c.current.PresetIndex, row, block)
	}
}

// applyGraph reconciles dual-mono pairing for [start,end] of row, then
// rewires the row's audio connections to match, issuing every engine call
// through the already-open scope the caller holds. This is the shared tail
// of ReplaceBlock, ReorderBlock and SwapBlockRow.
func (c *Controller) applyGraph(row, start, end int) error {
	if err := c.validateRow(row); err != nil {
		return err
	}
	view := c.rowView(row)
	changes := graph.ReconcileStereoChain(view, start, end, func(block int) bool {
		return c.mapper.Get(c.current.PresetIndex, row, block).Pair != instancemapper.Unset
	})

	chain := &c.current.Chains[row]
	for _, ch := range changes {
		block := &chain.Blocks[ch.Block]
		pair := c.mapper.Get(c.current.PresetIndex, row, ch.Block)
		if ch.AllocPair {
			pairID, err := c.mapper.AddPair(c.current.PresetIndex, row, ch.Block)
			if err != nil {
				return wrapErr(KindLogic, err)
			}
			if err := c.client.Preload(block.URI, pairID); err != nil {
				return fromEngineErr(err)
			}
			if err := c.client.Activate(pairID, true); err != nil {
				return fromEngineErr(err)
			}
			if err := c.client.Bypass(pairID, !block.Enabled); err != nil {
				return fromEngineErr(err)
			}
			if err := c.flushParams(pairID, block, false); err != nil {
				return err
			}
			if err := c.disconnectBlockPorts(pair.ID); err != nil {
				return err
			}
		} else {
			if pair.Pair != instancemapper.Unset {
				if err := c.disconnectBlockPorts(pair.Pair); err != nil {
					return err
				}
				if err := c.client.Remove(pair.Pair); err != nil {
					return fromEngineErr(err)
				}
			}
			c.mapper.RemovePair(c.current.PresetIndex, row, ch.Block)
		}
	}

	view = c.rowView(row)
	conns, discs := graph.ConnectAll(view, c.endpoints(row), start, end, c.pairOf(row))
	for _, d := range discs {
		if err := c.client.DisconnectAll(d.Origin); err != nil {
			return fromEngineErr(err)
		}
	}
	for _, conn := range conns {
		if err := c.client.Connect(conn.Origin, conn.Destination); err != nil {
			return fromEngineErr(err)
		}
	}
	return nil
}

func (c *Controller) disconnectBlockPorts(instanceID int) error {
	if instanceID == instancemapper.Unset {
		return nil
	}
	for _, suffix := range []string{"in", "in_1", "in_2", "out", "out_1", "out_2"} {
		port := fmt.Sprintf("effect_%d:%s", instanceID, suffix)
		if err := c.client.DisconnectAll(port); err != nil {
			return fromEngineErr(err)
		}
	}
	return nil
}

// flushParams writes every non-output parameter value on block to instanceID
// as a single params_flush batch, per spec §4.1's params_flush framing.
// fullReset selects the "full reset" tag (fresh load) vs "soft reset" (scene
// switch); the engine distinguishes them via the resetValue argument.
func (c *Controller) flushParams(instanceID int, block *model.Block, fullReset bool) error {
	tag := uint8(0)
	if fullReset {
		tag = 1
	}
	params := make([]engineclient.FlushedParam, 0, len(block.Parameters))
	for _, p := range block.Parameters {
		if p.Meta.Flags&FlagIsOutput != 0 {
			continue
		}
		params = append(params, engineclient.FlushedParam{Symbol: p.Symbol, Value: p.Value})
	}
	return fromEngineErr(c.client.ParamsFlush(instanceID, tag, params))
}

// FlagIsOutput mirrors the LV2 "is output port" flag bit the plugin-metadata
// collaborator sets on Parameter.Meta.Flags; output parameters are read-only
// and never included in a params_flush or accepted by SetBlockParameter.
const FlagIsOutput uint32 = 1 << 0

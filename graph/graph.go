// Package graph implements the dual-mono topology arithmetic: deciding
// whether a mono-input block must run as two parallel instances to carry a
// stereo signal, and computing the jack port connections needed to wire a
// chain row's loaded blocks end to end. Every function here is pure: it
// takes a read-only view of a row's blocks and returns a plan the caller
// applies through the engine client and instance mapper. None of it touches
// a socket, which is what makes it unit-testable without a live or
// dummy-mode engine.
package graph

import "github.com/shaban/modconnector/instancemapper"

// BlockView is the minimal read-only shape the arithmetic needs from a
// model.Block, so this package never imports model and stays easy to test
// with hand-built fixtures.
type BlockView struct {
	Empty       bool
	IsMonoIn    bool
	IsStereoOut bool
}

// RowView is the minimal read-only shape of a chain row's current state.
type RowView struct {
	Blocks        []BlockView
	CaptureStereo bool // true when the row's two capture ports are distinct
}

// ShouldBeStereo reports whether the signal reaching the block at index is
// stereo, i.e. whether a mono-input block there must run as a dual-mono
// pair. The nearest loaded block before it decides, inductively: its output
// is stereo if it is stereo-out or is itself a mono-input block running
// dual-mono. With no loaded block before it, the row's capture decides.
func ShouldBeStereo(row RowView, index int) bool {
	if row.CaptureStereo {
		for i := index - 1; i >= 0; i-- {
			b := row.Blocks[i]
			if b.Empty {
				continue
			}
			return b.IsStereoOut || (b.IsMonoIn && ShouldBeStereo(row, i))
		}
		return true
	}
	for i := index - 1; i >= 0; i-- {
		b := row.Blocks[i]
		if b.Empty {
			continue
		}
		return b.IsStereoOut || (b.IsMonoIn && ShouldBeStereo(row, i))
	}
	return false
}

// PairChange describes one instance needing a pair instance allocated or
// freed to reconcile its dual-mono state with its upstream signal.
type PairChange struct {
	Block       int
	AllocPair   bool // true: needs a pair allocated; false: needs its pair freed
}

// ReconcileStereoChain walks blockStart..blockEnd inclusive and returns the
// set of blocks whose dual-mono pairing no longer matches what their
// upstream signal requires. hasPair reports whether the mapper currently
// holds a pair instance for a given block index.
func ReconcileStereoChain(row RowView, blockStart, blockEnd int, hasPair func(block int) bool) []PairChange {
	var changes []PairChange
	previousStereo := ShouldBeStereo(row, blockStart)

	for i := blockStart; i <= blockEnd && i < len(row.Blocks); i++ {
		b := row.Blocks[i]
		if b.Empty {
			continue
		}
		oldDual := hasPair(i)
		newDual := previousStereo && b.IsMonoIn
		if newDual != oldDual {
			changes = append(changes, PairChange{Block: i, AllocPair: newDual})
		}
		previousStereo = b.IsStereoOut || newDual
	}
	return changes
}

// Connection is one jack-port-to-jack-port wire the caller should make.
type Connection struct {
	Origin      string
	Destination string
}

// Disconnection is one jack-port connection the caller should tear down.
type Disconnection struct {
	Origin string
}

// Endpoints names the capture/playback jack ports bounding a row.
type Endpoints struct {
	Capture  [2]string
	Playback [2]string
}

// effectPort builds the "effect_<id>:<name>" port name used by the engine.
func effectPort(id int, name string) string {
	return "effect_" + itoa(id) + ":" + name
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ConnectAll plans the full set of connections for blockStart..blockEnd
// within a row, including widening outward to the nearest loaded neighbors
// so an insert/remove at the edge of the requested range still reconnects
// correctly, and falling back to a direct endpoint-to-endpoint passthrough
// when nothing in the row is loaded at all.
func ConnectAll(row RowView, endpoints Endpoints, blockStart, blockEnd int, pairOf func(block int) instancemapper.BlockPair) ([]Connection, []Disconnection) {
	loaded := func(i int) bool {
		return i >= 0 && i < len(row.Blocks) && !row.Blocks[i].Empty
	}

	rowFirst := -1
	for i := range row.Blocks {
		if loaded(i) {
			rowFirst = i
			break
		}
	}
	if rowFirst < 0 {
		return []Connection{
			{endpoints.Capture[0], endpoints.Playback[0]},
			{endpoints.Capture[1], endpoints.Playback[1]},
		}, nil
	}

	var disconnects []Disconnection
	disconnects = append(disconnects,
		Disconnection{endpoints.Capture[0]},
		Disconnection{endpoints.Capture[1]},
	)

	first, last := blockStart, blockEnd
	for first > 0 && !loaded(first-1) {
		first--
	}
	for first > 0 && !loaded(first) {
		first--
	}
	for last < len(row.Blocks)-1 && !loaded(last+1) {
		last++
	}
	for last < len(row.Blocks)-1 && !loaded(last) {
		last++
	}

	var conns []Connection

	firstLoaded := -1
	for i := first; i <= last; i++ {
		if loaded(i) {
			firstLoaded = i
			break
		}
	}
	lastLoaded := -1
	for i := last; i >= first; i-- {
		if loaded(i) {
			lastLoaded = i
			break
		}
	}
	if firstLoaded < 0 {
		return []Connection{
			{endpoints.Capture[0], endpoints.Playback[0]},
			{endpoints.Capture[1], endpoints.Playback[1]},
		}, disconnects
	}

	// The capture ports were disconnected above, so the row's first loaded
	// block is always wired back to them, even when it lies outside the range.
	conns = append(conns, connectEndpointToBlock(endpoints.Capture, pairOf(rowFirst), row.Blocks[rowFirst])...)
	if lastLoaded >= blockStart && lastLoaded <= blockEnd {
		conns = append(conns, connectBlockToEndpoint(pairOf(lastLoaded), row.Blocks[lastLoaded], endpoints.Playback)...)
	}

	prev := -1
	for i := first; i <= last; i++ {
		if !loaded(i) {
			continue
		}
		if prev >= 0 {
			conns = append(conns, ConnectBlockToBlock(prev, row.Blocks[prev], pairOf(prev), i, row.Blocks[i], pairOf(i))...)
		}
		prev = i
	}

	return conns, disconnects
}

func connectEndpointToBlock(capture [2]string, pair instancemapper.BlockPair, b BlockView) []Connection {
	var out []Connection
	if !b.IsMonoIn {
		out = append(out, Connection{capture[0], effectPort(pair.ID, "in_1")})
		out = append(out, Connection{capture[1], effectPort(pair.ID, "in_2")})
		return out
	}
	out = append(out, Connection{capture[0], effectPort(pair.ID, "in")})
	if pair.Pair != instancemapper.Unset {
		out = append(out, Connection{capture[1], effectPort(pair.Pair, "in")})
	}
	return out
}

func connectBlockToEndpoint(pair instancemapper.BlockPair, b BlockView, playback [2]string) []Connection {
	var out []Connection
	if b.IsStereoOut {
		out = append(out, Connection{effectPort(pair.ID, "out_1"), playback[0]})
		out = append(out, Connection{effectPort(pair.ID, "out_2"), playback[1]})
		return out
	}
	out = append(out, Connection{effectPort(pair.ID, "out"), playback[0]})
	if pair.Pair != instancemapper.Unset {
		out = append(out, Connection{effectPort(pair.Pair, "out"), playback[1]})
	} else {
		out = append(out, Connection{effectPort(pair.ID, "out"), playback[1]})
	}
	return out
}

// ConnectBlockToBlock plans the connections between two adjacent loaded
// blocks, covering all four single/paired combinations.
func ConnectBlockToBlock(aIdx int, a BlockView, aPair instancemapper.BlockPair, bIdx int, b BlockView, bPair instancemapper.BlockPair) []Connection {
	_ = aIdx
	_ = bIdx
	aStereo := a.IsStereoOut
	bMono := b.IsMonoIn

	switch {
	case aStereo && aPair.Pair != instancemapper.Unset && !bMono:
		// paired stereo out -> stereo in
		return []Connection{
			{effectPort(aPair.ID, "out_1"), effectPort(bPair.ID, "in_1")},
			{effectPort(aPair.Pair, "out"), effectPort(bPair.ID, "in_2")},
		}
	case aStereo && !bMono:
		// single stereo-out -> stereo-in
		return []Connection{
			{effectPort(aPair.ID, "out_1"), effectPort(bPair.ID, "in_1")},
			{effectPort(aPair.ID, "out_2"), effectPort(bPair.ID, "in_2")},
		}
	case !aStereo && aPair.Pair == instancemapper.Unset && bMono && bPair.Pair != instancemapper.Unset:
		// single mono-out duplicated into a dual-mono pair downstream
		return []Connection{
			{effectPort(aPair.ID, "out"), effectPort(bPair.ID, "in")},
			{effectPort(aPair.ID, "out"), effectPort(bPair.Pair, "in")},
		}
	case aPair.Pair != instancemapper.Unset && bMono:
		// paired mono chain continuing into another mono/dual-mono block
		conns := []Connection{
			{effectPort(aPair.ID, "out"), effectPort(bPair.ID, "in")},
		}
		if bPair.Pair != instancemapper.Unset {
			conns = append(conns, Connection{effectPort(aPair.Pair, "out"), effectPort(bPair.Pair, "in")})
		}
		return conns
	case aStereo && bMono:
		// single stereo-out split across a dual-mono pair downstream
		conns := []Connection{{effectPort(aPair.ID, "out_1"), effectPort(bPair.ID, "in")}}
		if bPair.Pair != instancemapper.Unset {
			conns = append(conns, Connection{effectPort(aPair.ID, "out_2"), effectPort(bPair.Pair, "in")})
		}
		return conns
	case !bMono:
		// mono-out (single or paired) into a stereo-in block
		right := aPair.ID
		if aPair.Pair != instancemapper.Unset {
			right = aPair.Pair
		}
		return []Connection{
			{effectPort(aPair.ID, "out"), effectPort(bPair.ID, "in_1")},
			{effectPort(right, "out"), effectPort(bPair.ID, "in_2")},
		}
	default:
		return []Connection{{effectPort(aPair.ID, "out"), effectPort(bPair.ID, "in")}}
	}
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"

	"github.com/markkurossi/gbc/block"
)

// InternalVerify reconstructs every gate's garbled table from
// bothInputKeys and compares it byte-for-byte with the stored table
// (spec.md §4.3). Unlike Garble it needs no seed: under Free-XOR a table
// gate's output key pair and every stored row are rebuilt from the input
// keys and delta (taken from the first input wire's pair) and compared
// with the stored rows; without Free-XOR the four logical rows are
// cross-checked against each other (every row whose truth-table value
// agrees must decrypt to the same block). The no-fixed-delta output
// adapter's identity
// gates are pinned the same way Compute derives them, by the held key's
// signal bit. This resolves spec.md §9's open question about needing the
// seed to verify the output adapter: decrypting both identity rows from
// the wire's own both-keys is sufficient, so no seed is required here at
// all. ok is false on any mismatch; err is only returned for malformed
// input (wrong table size, missing input key), never for a detected
// tamper.
func (gc *GarbledCircuit) InternalVerify(bothInputKeys map[Wire][2]block.Block) (bool, [][2]block.Block, error) {
	if err := gc.requireState("InternalVerify", Garbled); err != nil {
		return false, nil, err
	}

	c := gc.circuit
	bothWires := make([][2]block.Block, c.LastWireIndex+1)
	for _, w := range c.InputIndices {
		pair, ok := bothInputKeys[w]
		if !ok {
			return false, nil, fmt.Errorf(
				"circuit: missing input keys for wire %v", w)
		}
		if pair[0].Signal() == pair[1].Signal() {
			return false, nil, fmt.Errorf(
				"circuit: input wire %v keys share a signal bit", w)
		}
		bothWires[w] = pair
	}

	// A verifier that only ever received tables via SetGarbledTables never
	// ran Garble on this instance, so gc.delta would otherwise be the zero
	// value. Free-XOR's delta is recoverable from any input wire's own
	// pair (bothInputKeys[w][0] XOR bothInputKeys[w][1]), which is what
	// lets InternalVerify work without the garbler's seed for any circuit
	// that has at least one input wire.
	if gc.isFreeXor && len(c.InputIndices) > 0 {
		w0 := c.InputIndices[0]
		gc.delta = bothWires[w0][0].Xor(bothWires[w0][1])
	}

	rowWidth := gc.numOfRows * block.Size
	idWidth := 2 * block.Size
	offset := 0
	tweakIdx := 0
	ok := true

	for _, gate := range c.Gates {
		a := bothWires[gate.InA]

		switch {
		case gate.IsNOT():
			if gate.Row(0, 0) == 0 {
				bothWires[gate.Out] = [2]block.Block{a[0], a[1]}
			} else {
				bothWires[gate.Out] = [2]block.Block{a[1], a[0]}
			}

		case gc.isFreeXor && gate.IsXOR():
			b := bothWires[gate.InB]
			c0 := a[0].Xor(b[0])
			bothWires[gate.Out] = [2]block.Block{c0, c0.Xor(gc.delta)}

		case gc.isFreeXor && gate.IsXNOR():
			b := bothWires[gate.InB]
			d0 := a[0].Xor(b[0])
			bothWires[gate.Out] = [2]block.Block{d0.Xor(gc.delta), d0}

		default:
			b := bothWires[gate.InB]
			if offset+rowWidth > len(gc.tables) {
				return false, nil, fmt.Errorf(
					"circuit: garbled table too short for gate output %v", gate.Out)
			}
			k := gateTweak(tweakIdx)
			row := gc.tables[offset : offset+rowWidth]
			c, good := gc.verifyGateRows(gate, a, b, k, row)
			if !good {
				ok = false
			}
			bothWires[gate.Out] = c
			offset += rowWidth
			tweakIdx++
		}
	}

	for _, w := range c.OutputIndices {
		if !gc.isNonXorOutputsRequired {
			continue
		}
		if offset+idWidth > len(gc.tables) {
			return false, nil, fmt.Errorf(
				"circuit: garbled table too short for output wire %v", w)
		}
		idGate := gc.tables[offset : offset+idWidth]
		k := gateTweak(tweakIdx)
		fresh, good := gc.verifyIdentityGate(bothWires[w], idGate, k)
		if !good {
			ok = false
		}
		bothWires[w] = fresh
		offset += idWidth
		tweakIdx++
	}

	gc.bothWires = bothWires
	return ok, bothWires, nil
}

// VerifyTranslationTable checks that the translation table's stored
// signal bits match bothOutputKeys, as described in spec.md §4.3
// ("Translation table verification"): for every output wire, the 0-key's
// signal bit must equal the stored bit and the 1-key's signal bit must
// be its complement.
func (gc *GarbledCircuit) VerifyTranslationTable(bothOutputKeys [][2]block.Block) bool {
	if len(bothOutputKeys) != len(gc.translationTable) {
		return false
	}
	for i, pair := range bothOutputKeys {
		if pair[0].Signal() == pair[1].Signal() {
			return false
		}
		var bit0 byte
		if pair[0].Signal() {
			bit0 = 1
		}
		if bit0 != gc.translationTable[i] {
			return false
		}
	}
	return true
}

// Verify runs the verifier role end to end: InternalVerify over the
// garbled tables, ANDed with VerifyTranslationTable over the recovered
// output keys (spec.md §6, "verify(bothInputKeys) → bool"). It returns
// false rather than an error when the tables or translation table fail
// to check out, since mismatches are an expected, non-fatal outcome in
// the malicious setting (spec.md §7).
func (gc *GarbledCircuit) Verify(bothInputKeys map[Wire][2]block.Block) (bool, error) {
	ok, bothWires, err := gc.InternalVerify(bothInputKeys)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	c := gc.circuit
	bothOutputKeys := make([][2]block.Block, c.NumberOfOutputs)
	for i, w := range c.OutputIndices {
		bothOutputKeys[i] = bothWires[w]
	}
	return gc.VerifyTranslationTable(bothOutputKeys), nil
}

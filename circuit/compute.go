//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"

	"github.com/markkurossi/gbc/block"
	"github.com/markkurossi/gbc/fixedkey"
)

// Compute runs the evaluator role: given exactly one key per input wire
// (obtained out of band, typically via oblivious transfer), it walks the
// garbled table produced by Garble and returns one key per output wire.
// Compute requires the Garbled state and does not mutate it, so it may
// be called repeatedly (e.g. once per evaluator, or once per test
// vector) against the same garbled table.
func (gc *GarbledCircuit) Compute(inputKeys map[Wire]block.Block) ([]block.Block, error) {
	if err := gc.requireState("Compute", Garbled); err != nil {
		return nil, err
	}

	c := gc.circuit
	wires := make([]block.Block, c.LastWireIndex+1)
	for _, w := range c.InputIndices {
		k, ok := inputKeys[w]
		if !ok {
			return nil, fmt.Errorf("circuit: missing input key for wire %v", w)
		}
		wires[w] = k
	}

	rowWidth := gc.numOfRows * block.Size
	idWidth := 2 * block.Size
	offset := 0
	tweakIdx := 0

	for _, gate := range c.Gates {
		ka := wires[gate.InA]

		switch {
		case gate.IsNOT():
			// The evaluator holds one key and never learns which logical
			// value it encodes; the NOT-gate optimization propagates it
			// unchanged and lets the translation table absorb the flip.
			wires[gate.Out] = ka

		case gc.isFreeXor && gate.IsXOR():
			wires[gate.Out] = ka.Xor(wires[gate.InB])

		case gc.isFreeXor && gate.IsXNOR():
			// Garble's XNOR convention labels d0 = a[0] XOR b[0] as the
			// *1*-key and d0 XOR delta as the *0*-key (see the XNOR open
			// question in DESIGN.md). The affine key structure makes the
			// evaluator's formula identical to XOR's: XOR-ing the two held
			// keys lands on the correct output key under either labelling,
			// without ever touching delta.
			wires[gate.Out] = ka.Xor(wires[gate.InB])

		default:
			kb := wires[gate.InB]
			k := gateTweak(tweakIdx)
			row := gc.tables[offset : offset+rowWidth]
			out, err := gc.decryptPhysRow(row, ka, kb, k)
			if err != nil {
				return nil, err
			}
			wires[gate.Out] = out
			offset += rowWidth
			tweakIdx++
		}
	}

	outputs := make([]block.Block, c.NumberOfOutputs)
	for i, w := range c.OutputIndices {
		key := wires[w]
		if gc.isNonXorOutputsRequired {
			idGate := gc.tables[offset : offset+idWidth]
			slot := 0
			if key.Signal() {
				slot = 1
			}
			lo := slot * block.Size
			cipher, err := block.FromBytes(idGate[lo : lo+block.Size])
			if err != nil {
				return nil, err
			}
			var zero block.Block
			h := fixedkey.Hash(key, zero, gateTweak(tweakIdx))
			key = cipher.Xor(h)
			offset += idWidth
			tweakIdx++
		}
		wires[w] = key
		outputs[i] = key
	}

	gc.garbledWires = wires
	return outputs, nil
}

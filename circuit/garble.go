//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"github.com/markkurossi/gbc/block"
	"github.com/markkurossi/gbc/fixedkey"
)

// Garble runs the garbler role: it derives every wire's key pair from
// seed, walks the circuit's gates in topological order building the
// garbled table, and produces a translation table for the output wires.
// If seed is nil a fresh random seed is drawn. Garble requires the
// circuit to be in the Loaded state and leaves it Garbled; the garbled
// table and translation table are retrieved with GetGarbledTables and
// GetTranslationTable, and both keys of any wire with BothWires.
func (gc *GarbledCircuit) Garble(seed *block.Block) error {
	if err := gc.requireState("Garble", Loaded); err != nil {
		return err
	}

	var s block.Block
	if seed != nil {
		s = *seed
	} else {
		var err error
		s, err = block.Random()
		if err != nil {
			return err
		}
	}

	c := gc.circuit
	tableGates := c.tableGateCount(gc.isFreeXor)
	gc.nonXorGateCount = tableGates
	if gc.isNonXorOutputsRequired {
		gc.nonXorGateCount += c.NumberOfOutputs
	}

	n := requiredKeystreamBlocks(c, gc.isFreeXor, gc.isNonXorOutputsRequired)
	kp, err := newKeyPipeline(s, n)
	if err != nil {
		return err
	}

	if gc.isFreeXor {
		delta := kp.take()
		delta.SetSignal(true)
		gc.delta = delta
	}

	bothWires := make([][2]block.Block, c.LastWireIndex+1)

	for _, w := range c.InputIndices {
		k0 := kp.take()
		var k1 block.Block
		if gc.isFreeXor {
			k1 = k0.Xor(gc.delta)
		} else {
			k1 = kp.take()
			// Independently drawn keys share a signal bit half the time;
			// point-and-permute needs them to differ.
			k1.SetSignal(!k0.Signal())
		}
		bothWires[w] = [2]block.Block{k0, k1}
	}

	rowWidth := gc.numOfRows * block.Size
	idWidth := 2 * block.Size
	tablesSize := rowWidth * tableGates
	if gc.isNonXorOutputsRequired {
		tablesSize += idWidth * c.NumberOfOutputs
	}
	tables := make([]byte, tablesSize)
	offset := 0
	tweakIdx := 0

	for _, gate := range c.Gates {
		a := bothWires[gate.InA]

		switch {
		case gate.IsNOT():
			// gate.Row(0,0) distinguishes the file format's two
			// fanIn=1 truth tables: 0 means identity (tt=0011), 1
			// means inversion (tt=1100). Either way the output wire's
			// keys are a relabeling of the input wire's keys, so no
			// garbled table is needed.
			if gate.Row(0, 0) == 0 {
				bothWires[gate.Out] = [2]block.Block{a[0], a[1]}
			} else {
				bothWires[gate.Out] = [2]block.Block{a[1], a[0]}
			}

		case gc.isFreeXor && gate.IsXOR():
			c0 := a[0].Xor(bothWires[gate.InB][0])
			bothWires[gate.Out] = [2]block.Block{c0, c0.Xor(gc.delta)}

		case gc.isFreeXor && gate.IsXNOR():
			b := bothWires[gate.InB]
			d0 := a[0].Xor(b[0])
			bothWires[gate.Out] = [2]block.Block{d0.Xor(gc.delta), d0}

		default:
			b := bothWires[gate.InB]
			k := gateTweak(tweakIdx)
			row := tables[offset : offset+rowWidth]
			c, masks, freeRow := gc.gateRows(gate, a, b, k, kp)
			for i, r := range logicalRows {
				if i == freeRow {
					continue
				}
				gc.storeRow(row, i, r, a, b, masks[i])
			}
			bothWires[gate.Out] = c
			offset += rowWidth
			tweakIdx++
		}
	}

	translationTable := make([]byte, c.NumberOfOutputs)
	for i, w := range c.OutputIndices {
		pair := bothWires[w]
		if gc.isNonXorOutputsRequired {
			fresh0 := kp.take()
			fresh1 := kp.take()
			fresh1.SetSignal(!fresh0.Signal())
			k := gateTweak(tweakIdx)
			idGate := tables[offset : offset+idWidth]
			gc.garbleIdentityGate(idGate, pair, [2]block.Block{fresh0, fresh1}, k)
			offset += idWidth
			tweakIdx++
			pair = [2]block.Block{fresh0, fresh1}
			bothWires[w] = pair
		}
		if pair[0].Signal() {
			translationTable[i] = 1
		} else {
			translationTable[i] = 0
		}
	}

	gc.bothWires = bothWires
	gc.tables = tables
	gc.translationTable = translationTable
	gc.state = Garbled
	return nil
}

// garbleIdentityGate writes the two-row identity table that maps old's
// keys to fresh's keys one-for-one (the no-fixed-delta output adapter).
// Unlike a NOT gate the mapping cannot be a free key relabeling: old and
// fresh are intentionally unrelated, so each row is its own Davis-Meyer
// ciphertext. Rows are stored at the physical slot given by the held
// key's signal bit (point-and-permute), not by the logical index v,
// so Compute and InternalVerify can select the right row from the one
// key they each hold without ever seeing the other.
func (gc *GarbledCircuit) garbleIdentityGate(table []byte, old, fresh [2]block.Block, k block.Block) {
	var zero block.Block
	for v := 0; v < 2; v++ {
		h := fixedkey.Hash(old[v], zero, k)
		cipher := fresh[v].Xor(h)
		slot := 0
		if old[v].Signal() {
			slot = 1
		}
		copy(table[slot*block.Size:], cipher.Bytes())
	}
}

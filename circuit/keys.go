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

// keyPipeline stages every PRG-derived block the garbler needs in a
// single ECB batch over the seed, so the gate walk that follows is pure
// XOR and fixed-key AES (spec.md §4.2, §5).
type keyPipeline struct {
	blocks []block.Block
	next   int
}

func newKeyPipeline(seed block.Block, n int) (*keyPipeline, error) {
	ks, err := fixedkey.NewKeystream(seed)
	if err != nil {
		return nil, err
	}
	return &keyPipeline{blocks: ks.Expand(n)}, nil
}

// take returns the next keystream block. It panics if the pipeline was
// undersized, which indicates a bug in requiredKeystreamBlocks rather
// than anything a caller can recover from.
func (p *keyPipeline) take() block.Block {
	if p.next >= len(p.blocks) {
		panic("circuit: key pipeline exhausted")
	}
	b := p.blocks[p.next]
	p.next++
	return b
}

// tableGateCount returns the number of gates that consume a garbled table
// row: every gate except NOT (always key-relabeled, no table) and, when
// Free-XOR is enabled, except XOR/XNOR (garbled for free).
func (c *Circuit) tableGateCount(isFreeXor bool) int {
	n := c.NumberOfGates - c.NumNotGates
	if isFreeXor {
		n -= c.NumXorGates
	}
	return n
}

// requiredKeystreamBlocks computes exactly how many PRG blocks Garble
// needs: the Free-XOR delta, one (Free-XOR) or two (no Free-XOR) keys per
// input wire, two independent output keys per table gate when Free-XOR
// is off (under Free-XOR the table gate's key pair is pinned by its free
// row and delta instead, consuming no keystream block), and two fresh
// keys per output wire when the no-fixed-delta adapter is enabled.
// Per-gate Davis-Meyer tweaks are derived from the gate's position, not
// the keystream, since the evaluator must be able to recompute them
// without knowing the seed.
func requiredKeystreamBlocks(c *Circuit, isFreeXor, isNonXorOutputsRequired bool) int {
	var n int
	if isFreeXor {
		n++ // delta
		n += c.NumberOfInputs
	} else {
		n += 2 * c.NumberOfInputs
		n += c.tableGateCount(isFreeXor) * 2
	}

	if isNonXorOutputsRequired {
		n += c.NumberOfOutputs * 2 // two fresh keys per output wire
	}

	return n
}

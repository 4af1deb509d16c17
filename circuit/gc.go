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

// State is a GarbledCircuit's lifecycle state.
type State int

const (
	// Loaded is the state right after New: topology is known but no keys
	// or tables exist yet.
	Loaded State = iota
	// Garbled is the state once a garbled table and translation table
	// exist, either from Garble or from SetGarbledTables/
	// SetTranslationTable. Compute, Verify and Translate all require it.
	Garbled
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "Loaded"
	case Garbled:
		return "Garbled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// GarbledCircuit wraps a plaintext Circuit with the mutable state needed
// to garble it, evaluate it, or verify it: per-wire keys, the garbled
// table bytes, and the translation table. A GarbledCircuit is not safe
// for concurrent use by multiple goroutines.
type GarbledCircuit struct {
	circuit *Circuit

	isFreeXor               bool
	isNonXorOutputsRequired bool

	state State

	delta block.Block

	// bothWires holds both keys per wire, known to the garbler and to
	// the verifier (who re-derives them from both keys of every input
	// wire, without the seed).
	bothWires [][2]block.Block

	// garbledWires holds one key per wire, known to the evaluator.
	// Populated by Compute; nil before the first call.
	garbledWires []block.Block

	numOfRows        int
	nonXorGateCount  int // table gates, including no-fixed-delta identity gates
	tables           []byte
	translationTable []byte
}

// New creates a GarbledCircuit shell over the given plaintext topology.
// isFreeXor enables the Free-XOR optimization (3-row tables, XOR/XNOR
// garbled for free); isNonXorOutputsRequired enables the no-fixed-delta
// output adapter, which rewrites output wire keys through a fresh
// identity gate so they no longer share the circuit's single Free-XOR
// delta.
func New(c *Circuit, isFreeXor, isNonXorOutputsRequired bool) *GarbledCircuit {
	numOfRows := 4
	if isFreeXor {
		numOfRows = 3
	}
	return &GarbledCircuit{
		circuit:                 c,
		isFreeXor:               isFreeXor,
		isNonXorOutputsRequired: isNonXorOutputsRequired,
		state:                   Loaded,
		numOfRows:               numOfRows,
	}
}

// Circuit returns the underlying plaintext topology.
func (gc *GarbledCircuit) Circuit() *Circuit {
	return gc.circuit
}

// State returns the circuit's current lifecycle state.
func (gc *GarbledCircuit) State() State {
	return gc.state
}

// IsFreeXor reports whether the Free-XOR optimization is in effect.
func (gc *GarbledCircuit) IsFreeXor() bool {
	return gc.isFreeXor
}

// IsNonXorOutputsRequired reports whether the no-fixed-delta output
// adapter is in effect.
func (gc *GarbledCircuit) IsNonXorOutputsRequired() bool {
	return gc.isNonXorOutputsRequired
}

// Delta returns the circuit's Free-XOR delta. It is only meaningful
// after Garble or InternalVerify and when IsFreeXor is true.
func (gc *GarbledCircuit) Delta() block.Block {
	return gc.delta
}

// BothWires returns both keys of the given wire. It is only populated
// for the garbler (after Garble) or the verifier (after InternalVerify).
func (gc *GarbledCircuit) BothWires(w Wire) [2]block.Block {
	return gc.bothWires[w]
}

// GarbledWire returns the single key an evaluator holds for wire w after
// Compute has run. It is only meaningful after a Compute call.
func (gc *GarbledCircuit) GarbledWire(w Wire) block.Block {
	return gc.garbledWires[w]
}

// GarbledTableSize returns the byte size of the garbled table:
// numOfRows * block.Size per ordinary table gate, plus 2 * block.Size
// per no-fixed-delta identity gate.
func (gc *GarbledCircuit) GarbledTableSize() int {
	logic := gc.circuit.tableGateCount(gc.isFreeXor)
	size := logic * gc.numOfRows * block.Size
	if gc.isNonXorOutputsRequired {
		size += gc.circuit.NumberOfOutputs * 2 * block.Size
	}
	return size
}

// NonXorGateCount returns the number of table gates written by Garble (or
// SetGarbledTables), including no-fixed-delta identity gates appended for
// output wires. It is 0 before either has run.
func (gc *GarbledCircuit) NonXorGateCount() int {
	return gc.nonXorGateCount
}

func (gc *GarbledCircuit) requireState(op string, want State) error {
	if gc.state != want {
		return &StateError{Op: op, Have: gc.state, Expected: want}
	}
	return nil
}

// GetGarbledTables returns the garbled table bytes produced by Garble (or
// installed by SetGarbledTables). The returned slice is a borrow into the
// circuit's own arena: a later Garble or SetGarbledTables call
// invalidates it (spec.md §5).
func (gc *GarbledCircuit) GetGarbledTables() ([]byte, error) {
	if err := gc.requireState("GetGarbledTables", Garbled); err != nil {
		return nil, err
	}
	return gc.tables, nil
}

// SetGarbledTables installs a garbled table produced elsewhere (e.g. by
// the garbling party over the network) onto this circuit shell, moving it
// Loaded → Garbled without running Garble (spec.md §4.6, "cross-party
// table transport"). tables must be exactly GarbledTableSize() bytes.
func (gc *GarbledCircuit) SetGarbledTables(tables []byte) error {
	want := gc.GarbledTableSize()
	if len(tables) != want {
		return &SizeMismatch{What: "garbled tables", Got: len(tables), Want: want}
	}
	gc.tables = tables
	gc.nonXorGateCount = gc.circuit.tableGateCount(gc.isFreeXor)
	if gc.isNonXorOutputsRequired {
		gc.nonXorGateCount += gc.circuit.NumberOfOutputs
	}
	gc.state = Garbled
	return nil
}

// GetTranslationTable returns the translation table produced by Garble
// (or installed by SetTranslationTable): one byte per output wire, each
// 0 or 1, holding the signal bit of that wire's 0-key (spec.md §6).
func (gc *GarbledCircuit) GetTranslationTable() ([]byte, error) {
	if err := gc.requireState("GetTranslationTable", Garbled); err != nil {
		return nil, err
	}
	return gc.translationTable, nil
}

// SetTranslationTable installs a translation table produced elsewhere,
// moving the circuit Loaded → Garbled without running Garble. table must
// have exactly one byte per output wire.
func (gc *GarbledCircuit) SetTranslationTable(table []byte) error {
	if len(table) != gc.circuit.NumberOfOutputs {
		return &SizeMismatch{
			What: "translation table",
			Got:  len(table),
			Want: gc.circuit.NumberOfOutputs,
		}
	}
	gc.translationTable = table
	gc.state = Garbled
	return nil
}

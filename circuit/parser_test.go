//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"strings"
	"testing"
)

// andCircuitText is the canonical AND-of-two-inputs circuit:
// inputs w0, w1, output w2, tt=0001 (AND).
const andCircuitText = `1 1
1 2
0
1
1
2
2 2 0 1 2 0001
`

func TestParseAndCircuit(t *testing.T) {
	c, err := Parse(strings.NewReader(andCircuitText))
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if c.NumberOfGates != 1 {
		t.Fatalf("NumberOfGates: got %d, want 1", c.NumberOfGates)
	}
	if c.NumberOfInputs != 2 || c.NumberOfOutputs != 1 {
		t.Fatalf("got %d inputs, %d outputs", c.NumberOfInputs, c.NumberOfOutputs)
	}
	if c.LastWireIndex != 2 {
		t.Fatalf("LastWireIndex: got %d, want 2", c.LastWireIndex)
	}
	if c.NumXorGates != 0 || c.NumNotGates != 0 {
		t.Fatalf("expected a plain AND gate, got xor=%d not=%d",
			c.NumXorGates, c.NumNotGates)
	}
	g := c.Gates[0]
	if g.InA != 0 || g.InB != 1 || g.Out != 2 || g.TT != 1 {
		t.Fatalf("unexpected gate: %+v", g)
	}
}

func TestParseNotOfAnd(t *testing.T) {
	text := `2 1
1 2
0
1
1
3
2 2 0 1 2 0001
1 1 2 3 1100
`
	c, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse: %s", err)
	}
	if c.NumberOfGates != 2 || c.NumNotGates != 1 {
		t.Fatalf("got %d gates, %d not-gates", c.NumberOfGates, c.NumNotGates)
	}
	not := c.Gates[1]
	if !not.IsNOT() {
		t.Fatalf("expected second gate to be a NOT gate: %+v", not)
	}
	if not.InA != 2 || not.Out != 3 {
		t.Fatalf("unexpected NOT gate: %+v", not)
	}
}

func TestParseMalformedHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("not-a-number 1\n"))
	var fe *CircuitFormatError
	if !asCircuitFormatError(err, &fe) {
		t.Fatalf("expected CircuitFormatError, got %v (%T)", err, err)
	}
}

func TestParseNonTopologicalGate(t *testing.T) {
	// Gate reads wire 5, which nothing has written yet.
	text := `1 1
1 1
0
1
0
2 2 0 5 1 0001
`
	_, err := Parse(strings.NewReader(text))
	nt, ok := err.(*NonTopologicalGate)
	if !ok {
		t.Fatalf("expected NonTopologicalGate, got %v (%T)", err, err)
	}
	if nt.Wire != 5 {
		t.Fatalf("unexpected wire in error: %+v", nt)
	}
}

func TestParseTruncatedFile(t *testing.T) {
	_, err := Parse(strings.NewReader("1 1\n"))
	if err == nil {
		t.Fatalf("expected an error for a truncated file")
	}
}

func TestParseGateCountMismatch(t *testing.T) {
	text := `2 1
1 1
0
1
0
2 2 0 0 0 0001
`
	_, err := Parse(strings.NewReader(text))
	if err == nil {
		t.Fatalf("expected an error when fewer gates are present than declared")
	}
}

func TestParseOutputWireNeverWritten(t *testing.T) {
	// Output wire 9 is never produced by any input or gate.
	text := `1 1
1 2
0
1
1
9
2 2 0 1 2 0001
`
	_, err := Parse(strings.NewReader(text))
	oor, ok := err.(*WireIndexOutOfRange)
	if !ok {
		t.Fatalf("expected WireIndexOutOfRange, got %v (%T)", err, err)
	}
	if oor.Wire != 9 {
		t.Fatalf("unexpected wire in error: %+v", oor)
	}
}

func asCircuitFormatError(err error, target **CircuitFormatError) bool {
	fe, ok := err.(*CircuitFormatError)
	if ok {
		*target = fe
	}
	return ok
}

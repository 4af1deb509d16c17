//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var reParts = regexp.MustCompilePOSIX("[[:space:]]+")

// Load reads a circuit from the named text file (spec.md §6).
func Load(path string) (*Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a circuit in the whitespace-separated text format described
// in spec.md §6:
//
//	<numGates> <numParties>
//	<party_id> <numInputsOfParty>
//	<inputWireIndex_1>
//	...
//	<numOutputs>
//	<outputWireIndex_1>
//	...
//	<fanIn> <fanOut> <inA> [<inB>] <out> <truthTable>
//	...
//
// Gates must appear in topological order; Parse fails with a
// CircuitFormatError carrying a line number on malformed input, with a
// NonTopologicalGate (gate index and wire) when a gate reads a wire not
// yet written, and with a WireIndexOutOfRange when an output wire is
// never written.
func Parse(in io.Reader) (*Circuit, error) {
	r := bufio.NewReader(in)
	lineNo := 0

	readLine := func() ([]string, error) {
		for {
			line, err := r.ReadString('\n')
			if err != nil && len(line) == 0 {
				return nil, err
			}
			lineNo++
			line = strings.TrimSpace(line)
			if len(line) == 0 {
				if err != nil {
					return nil, err
				}
				continue
			}
			return reParts.Split(line, -1), nil
		}
	}

	fail := func(reason string) error {
		return &CircuitFormatError{Line: lineNo, Reason: reason}
	}

	header, err := readLine()
	if err != nil {
		return nil, fail("missing header line")
	}
	if len(header) != 2 {
		return nil, fail("expected '<numGates> <numParties>'")
	}
	numGates, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fail("invalid numGates: " + err.Error())
	}
	numParties, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fail("invalid numParties: " + err.Error())
	}

	seen := make(map[Wire]bool)
	lastWire := -1
	markSeen := func(w Wire) {
		seen[w] = true
		if w.ID() > lastWire {
			lastWire = w.ID()
		}
	}

	var inputIndices []Wire
	numInputsForParty := make([]int, numParties)

	for p := 0; p < numParties; p++ {
		line, err := readLine()
		if err != nil {
			return nil, fail("missing party header")
		}
		if len(line) != 2 {
			return nil, fail("expected '<party_id> <numInputsOfParty>'")
		}
		partyID, err := strconv.Atoi(line[0])
		if err != nil {
			return nil, fail("invalid party_id: " + err.Error())
		}
		if partyID < 1 || partyID > numParties {
			return nil, fail(fmt.Sprintf("party id %d out of range [1,%d]",
				partyID, numParties))
		}
		n, err := strconv.Atoi(line[1])
		if err != nil {
			return nil, fail("invalid numInputsOfParty: " + err.Error())
		}
		numInputsForParty[partyID-1] = n

		for i := 0; i < n; i++ {
			line, err := readLine()
			if err != nil {
				return nil, fail("missing input wire index")
			}
			if len(line) != 1 {
				return nil, fail("expected a single input wire index")
			}
			w, err := parseWire(line[0])
			if err != nil {
				return nil, fail(err.Error())
			}
			inputIndices = append(inputIndices, w)
			markSeen(w)
		}
	}

	line, err := readLine()
	if err != nil {
		return nil, fail("missing output count")
	}
	if len(line) != 1 {
		return nil, fail("expected '<numOutputs>'")
	}
	numOutputs, err := strconv.Atoi(line[0])
	if err != nil {
		return nil, fail("invalid numOutputs: " + err.Error())
	}

	var outputIndices []Wire
	for i := 0; i < numOutputs; i++ {
		line, err := readLine()
		if err != nil {
			return nil, fail("missing output wire index")
		}
		if len(line) != 1 {
			return nil, fail("expected a single output wire index")
		}
		w, err := parseWire(line[0])
		if err != nil {
			return nil, fail(err.Error())
		}
		outputIndices = append(outputIndices, w)
	}

	gates := make([]Gate, 0, numGates)
	var numXor, numNot int

	for g := 0; g < numGates; g++ {
		line, err := readLine()
		if err != nil {
			return nil, fail(fmt.Sprintf("missing gate %d", g))
		}
		if len(line) < 2 {
			return nil, fail(fmt.Sprintf(
				"gate %d: expected '<fanIn> <fanOut> ...'", g))
		}
		fanIn, err := strconv.Atoi(line[0])
		if err != nil {
			return nil, fail("invalid fanIn: " + err.Error())
		}
		if _, err := strconv.Atoi(line[1]); err != nil {
			return nil, fail("invalid fanOut: " + err.Error())
		}

		switch fanIn {
		case 1:
			if len(line) != 5 {
				return nil, fail(fmt.Sprintf(
					"gate %d: expected 5 fields for fanIn=1, got %d", g, len(line)))
			}
			inA, err := parseWire(line[2])
			if err != nil {
				return nil, fail(err.Error())
			}
			if !seen[inA] {
				return nil, &NonTopologicalGate{Gate: g, Wire: inA}
			}
			out, err := parseWire(line[3])
			if err != nil {
				return nil, fail(err.Error())
			}
			tt, err := parseTruthTable(line[4])
			if err != nil {
				return nil, fail(err.Error())
			}
			gates = append(gates, Gate{InA: inA, InB: NoWire, Out: out, TT: tt})
			markSeen(out)
			numNot++

		case 2:
			if len(line) != 6 {
				return nil, fail(fmt.Sprintf(
					"gate %d: expected 6 fields for fanIn=2, got %d", g, len(line)))
			}
			inA, err := parseWire(line[2])
			if err != nil {
				return nil, fail(err.Error())
			}
			if !seen[inA] {
				return nil, &NonTopologicalGate{Gate: g, Wire: inA}
			}
			inB, err := parseWire(line[3])
			if err != nil {
				return nil, fail(err.Error())
			}
			if !seen[inB] {
				return nil, &NonTopologicalGate{Gate: g, Wire: inB}
			}
			out, err := parseWire(line[4])
			if err != nil {
				return nil, fail(err.Error())
			}
			tt, err := parseTruthTable(line[5])
			if err != nil {
				return nil, fail(err.Error())
			}
			gate := Gate{InA: inA, InB: inB, Out: out, TT: tt}
			gates = append(gates, gate)
			markSeen(out)
			if gate.IsXOR() || gate.IsXNOR() {
				numXor++
			}

		default:
			return nil, fail(fmt.Sprintf("unsupported fanIn %d", fanIn))
		}
	}

	if len(gates) != numGates {
		return nil, fail(fmt.Sprintf("got %d gates, expected %d", len(gates), numGates))
	}

	for _, w := range outputIndices {
		if !seen[w] {
			return nil, &WireIndexOutOfRange{Wire: w, Max: lastWire}
		}
	}

	return &Circuit{
		NumberOfParties:   numParties,
		NumInputsForParty: numInputsForParty,
		InputIndices:      inputIndices,
		OutputIndices:     outputIndices,
		NumberOfInputs:    len(inputIndices),
		NumberOfOutputs:   len(outputIndices),
		Gates:             gates,
		NumberOfGates:     numGates,
		NumXorGates:       numXor,
		NumNotGates:       numNot,
		LastWireIndex:     lastWire,
	}, nil
}

func parseWire(s string) (Wire, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid wire index %q: %s", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative wire index %d", v)
	}
	return Wire(v), nil
}

func parseTruthTable(s string) (uint8, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("truth table %q must be 4 binary digits", s)
	}
	v, err := strconv.ParseUint(s, 2, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid truth table %q: %s", s, err)
	}
	return uint8(v), nil
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import "github.com/markkurossi/gbc/block"

// Translate maps the evaluator's output keys to plaintext bits using the
// translation table: bit = signal(outputKey[w]) XOR translationTable[w]
// (spec.md §4.5). It fails with SignalBitOutOfRange only when the
// circuit carries no translation table at all (Garble/SetTranslationTable
// never ran); a length mismatch against outputKeys is a SizeMismatch.
func (gc *GarbledCircuit) Translate(outputKeys []block.Block) ([]byte, error) {
	if err := gc.requireState("Translate", Garbled); err != nil {
		return nil, err
	}
	if len(gc.translationTable) == 0 {
		return nil, &SignalBitOutOfRange{}
	}
	if len(outputKeys) != len(gc.translationTable) {
		return nil, &SizeMismatch{
			What: "output keys",
			Got:  len(outputKeys),
			Want: len(gc.translationTable),
		}
	}

	bits := make([]byte, len(outputKeys))
	for i, k := range outputKeys {
		var sig byte
		if k.Signal() {
			sig = 1
		}
		bits[i] = sig ^ gc.translationTable[i]
	}
	return bits, nil
}

//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"
)

// Tabulate renders the circuit's gate-type histogram as a GitHub-flavoured
// table.
func (c *Circuit) Tabulate(w io.Writer) {
	tab := tabulate.New(tabulate.Github)
	tab.Header("Gate")
	tab.Header("Count").SetAlign(tabulate.MR)

	rows := []struct {
		label string
		count int
	}{
		{"XOR/XNOR", c.NumXorGates},
		{"NOT", c.NumNotGates},
		{"other", c.NonXorGates()},
		{"total", c.NumberOfGates},
	}
	for _, r := range rows {
		row := tab.Row()
		row.Column(r.label)
		row.Column(fmt.Sprintf("%d", r.count))
	}
	tab.Print(w)
}

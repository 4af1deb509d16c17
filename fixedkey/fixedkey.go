//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package fixedkey implements the dual-key cipher used to encrypt garbled
// gate rows: a Davis-Meyer hash built from a single process-wide fixed AES
// key, plus the seeded keystream generator that feeds the garbler's
// randomness (AES/PRG internals stay stdlib crypto/aes, treated as a
// black-box block cipher per spec.md §1).
package fixedkey

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/markkurossi/gbc/block"
)

// fixedKey is the process-wide AES key behind the Davis-Meyer
// construction. It is a compile-time constant, never mutated: any two
// instances of the engine that agree on a circuit agree on this key for
// free, since it carries no secret (spec.md §9, "Global fixed AES key").
var fixedKey = [16]byte{
	0x61, 0x6c, 0x70, 0x68, 0x61, 0x2d, 0x6b, 0x65,
	0x79, 0x2d, 0x67, 0x61, 0x72, 0x62, 0x6c, 0x65,
}

var fixedCipher cipher.Block

func init() {
	c, err := aes.NewCipher(fixedKey[:])
	if err != nil {
		// fixedKey is a compile-time 16-byte constant; aes.NewCipher can
		// only fail on key length, so this can never trigger.
		panic(err)
	}
	fixedCipher = c
}

// Hash implements the Davis-Meyer construction used to mask a garbled
// table row: H(a, b, k) = pi(2a XOR 4b XOR k) XOR (2a XOR 4b XOR k), where
// pi is encryption under the fixed key and k is the gate-specific tweak
// (the circuit package passes a block encoding the gate's position).
func Hash(a, b, k block.Block) block.Block {
	tweak := a.Mul2().Xor(b.Mul4()).Xor(k)

	buf := tweak.Bytes()
	fixedCipher.Encrypt(buf, buf)

	enc, _ := block.FromBytes(buf)
	return enc.Xor(tweak)
}

// Keystream is the seed-keyed PRG that supplies every random block the
// garbler consumes: the Free-XOR delta, input wire keys, table-gate output
// keys when Free-XOR is off, and (when enabled) the no-fixed-delta output
// adapter's fresh keys. All
// of it is pre-staged by encrypting an index array in ECB mode under the
// seed, so the gate walk itself is pure XOR and fixed-key AES (spec.md
// §4.2, §5).
type Keystream struct {
	cipher cipher.Block
}

// NewKeystream keys a Keystream with the 128-bit seed.
func NewKeystream(seed block.Block) (*Keystream, error) {
	c, err := aes.NewCipher(seed[:])
	if err != nil {
		return nil, err
	}
	return &Keystream{cipher: c}, nil
}

// Expand returns the first n blocks of the keystream: indexArray[i] =
// Index(i) for i in [0, n), encrypted in ECB mode under the seed as one
// contiguous batch. This single batch is the only PRG-driven source of
// randomness the garbler consumes, and it is sized up front to cover
// every block the garble pass will need so the hot path never has to
// fall back to per-block Encrypt calls (spec.md §4.2, §5).
func (k *Keystream) Expand(n int) []block.Block {
	buf := make([]byte, n*block.Size)
	for i := 0; i < n; i++ {
		idx := block.Index(uint64(i))
		copy(buf[i*block.Size:], idx.Bytes())
	}

	ecbEncrypt(k.cipher, buf, buf)

	out := make([]block.Block, n)
	for i := range out {
		out[i], _ = block.FromBytes(buf[i*block.Size : (i+1)*block.Size])
	}
	return out
}

// ecbEncrypt encrypts src into dst one block at a time, reusing a single
// cipher.Block instance across the whole buffer instead of allocating a
// cipher per block. src and dst may be the same slice; len(src) must be a
// multiple of block.Size.
func ecbEncrypt(c cipher.Block, dst, src []byte) {
	for len(src) > 0 {
		c.Encrypt(dst[:block.Size], src[:block.Size])
		src = src[block.Size:]
		dst = dst[block.Size:]
	}
}

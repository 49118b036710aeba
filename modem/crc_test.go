package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCRCEmptyIsZero(t *testing.T) {
	assert.Equal(t, uint16(0), crcBlock(nil))
}

func TestCRCKnownVector(t *testing.T) {
	// CRC-16/MODBUS of "HELLO\x03" (the wire format's payload + ETX).
	assert.Equal(t, uint16(0x3161), crcBlock([]byte("HELLO\x03")))
}

func TestCRCCatenationLaw(t *testing.T) {
	// CRC(x || y) must equal folding y's bytes into the running
	// register left by CRC(x) — i.e. crcUpdate is associative across
	// a split, matching an incremental, byte-at-a-time accumulator.
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.SliceOf(rapid.Byte()).Draw(t, "x")
		y := rapid.SliceOf(rapid.Byte()).Draw(t, "y")

		var whole uint16
		for _, b := range append(append([]byte{}, x...), y...) {
			whole = crcUpdate(whole, b)
		}

		var incremental uint16
		for _, b := range x {
			incremental = crcUpdate(incremental, b)
		}
		for _, b := range y {
			incremental = crcUpdate(incremental, b)
		}

		assert.Equal(t, whole, incremental)
	})
}

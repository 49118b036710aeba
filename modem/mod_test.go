package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// phaseDelta returns the sineTable phase advance from before to after,
// accounting for wraparound.
func phaseDelta(before, after int) int {
	return ((after - before) % sineTableLen + sineTableLen) % sineTableLen
}

func TestModulatorStartupHoldsMark(t *testing.T) {
	m := NewModulator()
	idleSamples := -startupIdleSamples - 1

	for i := 0; i < idleSamples; i++ {
		require.False(t, m.Ready(), "sample %d: should still be idling", i)
		before := m.phi
		m.Modulate()
		assert.Equal(t, phaseIncMark, phaseDelta(before, m.phi), "sample %d: idle line must be mark", i)
	}

	assert.True(t, m.Ready(), "modulator should be ready once the startup hold-off elapses")
}

// toneSignature is the net phase advance (mod sineTableLen) over one
// FastBitLen-sample bit window emitting a steady tone; it distinguishes
// mark from space without needing to recover the raw per-sample
// increment from the wrapped accumulator.
func toneSignature(inc int) int {
	return (inc * FastBitLen) % sineTableLen
}

// bitStream decodes the tone emitted during each FastBitLen-sample window
// of one octet transmission (start bit, 8 data bits, stop bit) as a
// sequence of net phase advances, by reading the modulator's phase
// accumulator directly before and after each window.
func bitStream(m *Modulator) []int {
	var deltas []int
	for bit := 0; bit < 10; bit++ {
		before := m.phi
		for s := 0; s < FastBitLen; s++ {
			m.Modulate()
		}
		deltas = append(deltas, phaseDelta(before, m.phi))
	}
	return deltas
}

func TestModulatorFramesOctetAsync8N1(t *testing.T) {
	spaceSig := toneSignature(phaseIncSpace)
	markSig := toneSignature(phaseIncMark)

	rapid.Check(t, func(t *rapid.T) {
		b := byte(rapid.IntRange(0, 255).Draw(t, "b"))

		m := &Modulator{spos: -1, data: -1}
		m.Send(b)

		deltas := bitStream(m)

		assert.Equal(t, spaceSig, deltas[0], "start bit must be space")
		for i := 0; i < 8; i++ {
			want := spaceSig
			if (b>>i)&1 == 1 {
				want = markSig
			}
			assert.Equal(t, want, deltas[1+i], "data bit %d", i)
		}
		assert.Equal(t, markSig, deltas[9], "stop bit must be mark")

		assert.True(t, m.Ready(), "modulator must be ready for the next octet immediately after the stop bit")
		assert.Equal(t, -1, m.data)
	})
}

func TestModulatorIdlesOnMarkBetweenOctets(t *testing.T) {
	m := &Modulator{spos: -1, data: -1}
	require.True(t, m.Ready())

	for i := 0; i < 3*FastBitLen; i++ {
		before := m.phi
		m.Modulate()
		assert.Equal(t, phaseIncMark, phaseDelta(before, m.phi))
	}
}

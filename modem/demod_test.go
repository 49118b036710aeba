package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// The production Modulator drives the downstream channel (1300/2100 Hz);
// the Demodulator receives the upstream channel (~390/450 Hz around the
// 420 Hz local oscillator). There is no production component pairing the
// two, so the round-trip law (spec.md §8) is exercised here against a
// synthetic upstream transmitter built for the test: a continuous-phase
// two-tone FSK generator framing one octet the same way frameBit expects
// to receive it (async 8N1, start=space, stop=mark).
const (
	testUpstreamMark  = 390.0 // logical 1: frq settles positive below the 420 Hz LO
	testUpstreamSpace = 450.0 // logical 0: frq settles negative above the 420 Hz LO
	testUpstreamAmp   = 20000
)

// upstreamToneGenerator synthesizes one continuous-phase sample stream for
// a sequence of steady tones, each held for one SlowBitLen-sample bit
// period.
type upstreamToneGenerator struct {
	phase float64
}

func (g *upstreamToneGenerator) emit(freq float64, n int, out func(int16)) {
	for i := 0; i < n; i++ {
		out(int16(testUpstreamAmp * math.Sin(g.phase)))
		g.phase += 2 * math.Pi * freq / SampleRate
		if g.phase > 2*math.Pi {
			g.phase -= 2 * math.Pi
		}
	}
}

// encodeUpstreamOctet returns the sample stream for one octet: leadBits
// periods of leading mark, the start bit, 8 data bits LSB-first, the stop
// bit, and trailBits periods of trailing mark so the stop bit's completed
// window has a following sample to be detected on.
func encodeUpstreamOctet(b byte, leadBits, trailBits int) []int16 {
	g := &upstreamToneGenerator{}
	var samples []int16
	collect := func(s int16) { samples = append(samples, s) }

	for i := 0; i < leadBits; i++ {
		g.emit(testUpstreamMark, SlowBitLen, collect)
	}
	g.emit(testUpstreamSpace, SlowBitLen, collect) // start bit
	for i := 0; i < 8; i++ {
		freq := testUpstreamSpace
		if (b>>i)&1 == 1 {
			freq = testUpstreamMark
		}
		g.emit(freq, SlowBitLen, collect)
	}
	g.emit(testUpstreamMark, SlowBitLen, collect) // stop bit
	for i := 0; i < trailBits; i++ {
		g.emit(testUpstreamMark, SlowBitLen, collect)
	}

	return samples
}

func TestDemodulatorRoundTripsModulatedOctet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := byte(rapid.IntRange(0, 255).Draw(t, "b"))

		samples := encodeUpstreamOctet(b, 5, 2)

		d := NewDemodulator()
		var received []int
		for _, s := range samples {
			if r := d.Demodulate(s); r >= 0 {
				received = append(received, r)
			}
		}

		assert.Equal(t, []int{int(b)}, received, "expected exactly one recovered octet matching the transmitted byte")
	})
}

func TestDemodulatorReportsNoCarrierOnSilence(t *testing.T) {
	d := NewDemodulator()
	var sawNoCarrier bool
	for i := 0; i < 2000; i++ {
		if d.Demodulate(0) == NoCarrier {
			sawNoCarrier = true
		}
	}
	assert.True(t, sawNoCarrier, "sustained silence must report NoCarrier")
}

func TestDemodulatorResetClearsFramingState(t *testing.T) {
	d := NewDemodulator()
	samples := encodeUpstreamOctet(0xA5, 5, 0)
	for _, s := range samples {
		d.Demodulate(s)
	}
	d.Reset()
	assert.Equal(t, -1, d.pos)
	assert.Equal(t, 0.0, d.avgPower)
}

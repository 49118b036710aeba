package modem

/*------------------------------------------------------------------
 *
 * Purpose:	Modulator for the BTX downstream channel: V.23 FSK at
 *		1200 bit/s, 1300 Hz mark / 2100 Hz space.
 *
 * Description:	A 120-entry sine table stands in for one cycle of a
 *		100 Hz reference; advancing the phase accumulator by
 *		F/100 units per sample produces frequency F. Octets are
 *		framed as async 8N1 (start=0, 8 data bits LSB-first,
 *		stop=1); between octets the line idles on continuous
 *		mark. On startup the modulator holds mark for about two
 *		seconds so the far end can lock onto carrier before any
 *		framing begins.
 *
 *---------------------------------------------------------------*/

// sineTableLen is one full cycle of the 100 Hz reference tone.
const sineTableLen = 120

// sineTable holds one cycle of a 20000-amplitude sine at 100 Hz,
// indexed by phase unit (spec.md §4.2 / original_source sinetab).
var sineTable = [sineTableLen]int16{
	0, 1046, 2090, 3128, 4158, 5176, 6180, 7167, 8134, 9079, 9999, 10892,
	11755, 12586, 13382, 14142, 14862, 15542, 16180, 16773, 17320, 17820, 18270, 18671,
	19021, 19318, 19562, 19753, 19890, 19972, 20000, 19972, 19890, 19753, 19562, 19318,
	19021, 18671, 18270, 17820, 17320, 16773, 16180, 15542, 14862, 14142, 13382, 12586,
	11755, 10892, 9999, 9079, 8134, 7167, 6180, 5176, 4158, 3128, 2090, 1046,
	0, -1046, -2090, -3128, -4158, -5176, -6180, -7167, -8134, -9079, -10000, -10892,
	-11755, -12586, -13382, -14142, -14862, -15542, -16180, -16773, -17320, -17820, -18270, -18671,
	-19021, -19318, -19562, -19753, -19890, -19972, -20000, -19972, -19890, -19753, -19562, -19318,
	-19021, -18671, -18270, -17820, -17320, -16773, -16180, -15542, -14862, -14142, -13382, -12586,
	-11755, -10892, -10000, -9079, -8134, -7167, -6180, -5176, -4158, -3128, -2090, -1046,
}

// Phase increments for the two downstream tones, in sineTable units per
// sample (frequency/100, since one table cycle is 100 Hz).
const (
	phaseIncSpace = int(FastFreq0 / 100) // logical 0
	phaseIncMark  = int(FastFreq1 / 100) // logical 1
)

// startupIdleSamples is ~2 seconds of continuous mark emitted before the
// first octet, giving the far end time to lock carrier.
const startupIdleSamples = -2 * SampleRate

// Modulator is the per-call downstream FSK transmitter. Stateful, not
// safe for concurrent use.
type Modulator struct {
	phi  int // phase within sineTable, 0..sineTableLen-1
	spos int // sample position within the current octet; see Ready
	data int // octet currently being emitted, -1 when idle
}

// NewModulator returns a Modulator in its reset (startup-idle) state.
func NewModulator() *Modulator {
	return &Modulator{spos: startupIdleSamples, data: -1}
}

// Reset returns the modulator to its startup-idle state.
func (m *Modulator) Reset() {
	*m = Modulator{spos: startupIdleSamples, data: -1}
}

// Ready reports whether the modulator is idle and able to accept the next
// octet to transmit. The driver checks this after every sample it
// produces and, if true, asks the link layer for the next byte.
func (m *Modulator) Ready() bool {
	return m.spos == -1
}

// Send loads the next octet for transmission. Callers must only call
// this when Ready reports true.
func (m *Modulator) Send(octet byte) {
	m.data = int(octet)
	m.spos = 0
}

// bit emits one sample of the given logical bit (0 or 1) and advances
// the phase accumulator.
func (m *Modulator) bit(b int) int16 {
	inc := phaseIncSpace
	if b&1 != 0 {
		inc = phaseIncMark
	}
	m.phi = (m.phi + inc) % sineTableLen
	return sineTable[m.phi]
}

// Modulate produces one 12 kHz output sample, consuming the loaded octet
// (if any) and automatically emitting start/stop framing around it.
// Between octets, or during the startup hold-off, it emits continuous
// mark.
func (m *Modulator) Modulate() int16 {
	if m.spos < -1 {
		m.spos++
	}
	if m.spos < 0 {
		return m.bit(1) // idle / startup hold: mark
	}

	bpos := m.spos / FastBitLen
	m.spos++
	if m.spos >= 10*FastBitLen { // last sample of the stop bit
		m.spos = -1
		m.data = -1
	}
	switch {
	case bpos == 0:
		return m.bit(0) // start bit
	case bpos < 9:
		return m.bit(m.data >> (bpos - 1))
	default:
		return m.bit(1) // stop bit
	}
}

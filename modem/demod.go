package modem

import "math"

/*------------------------------------------------------------------
 *
 * Purpose:	Demodulator for the BTX upstream channel: V.23 FSK at
 *		75 bit/s, mark/space framed around a 420 Hz local
 *		oscillator.
 *
 * Description:	Mixes each incoming sample down to baseband with a
 *		complex local oscillator, low-passes it through five
 *		cascaded one-pole IIR sections, and recovers the bit
 *		polarity from a cross-product frequency discriminator
 *		over a 3-tap history of the filtered baseband. Bit
 *		framing is async 8N1: one low start bit, 8 data bits
 *		LSB-first, one high stop bit.
 *
 *---------------------------------------------------------------*/

// Demodulator is the per-call upstream FSK receiver. It is stateful and
// not safe for concurrent use; one instance belongs to exactly one
// session.
type Demodulator struct {
	phi float64 // local-oscillator phase, radians mod 2*pi

	iq [3][2]float64 // I/Q history of filtered baseband; [0] newest

	filter [SlowFilterOrder][2]float64 // cascaded one-pole IIR states

	pos      int     // octet-relative sample counter, -1 while hunting
	integral float64 // accumulated frequency estimate over one bit period
	d        byte    // shift register of received data bits, LSB first

	avgPower float64 // leaky average of baseband power; carrier gate
}

// NewDemodulator returns a Demodulator in its reset state.
func NewDemodulator() *Demodulator {
	return &Demodulator{pos: -1}
}

// Reset returns the demodulator to its initial state, as on session start
// or after a hangup. There is no cross-call persistence (spec.md §3).
func (d *Demodulator) Reset() {
	*d = Demodulator{pos: -1}
}

// carrierGatePower is the avg_power threshold below which the upstream is
// considered to have no carrier (spec.md §4.1 step 5).
const carrierGatePower = 100000

// powerLeak is the leaky-average coefficient for avg_power (alpha=0.1).
const powerLeak = 0.1

// Demodulate processes one 12 kHz input sample and returns the received
// octet (0..255), NoData if no byte completed on this sample, or
// NoCarrier if the upstream carrier has dropped out.
func (d *Demodulator) Demodulate(sample int16) int {
	x := float64(sample)

	i := x * math.Sin(d.phi)
	q := x * math.Cos(d.phi)
	d.phi += SlowFreq / SampleRate * 2 * math.Pi
	if d.phi > 2*math.Pi {
		d.phi -= 2 * math.Pi
	}

	// Five cascaded one-pole low-pass sections, alpha=0.08.
	d.filter[0][0] = d.filter[0][0]*(1-SlowFilterAlpha) + i*SlowFilterAlpha
	d.filter[0][1] = d.filter[0][1]*(1-SlowFilterAlpha) + q*SlowFilterAlpha
	for n := 1; n < SlowFilterOrder; n++ {
		d.filter[n][0] = d.filter[n][0]*(1-SlowFilterAlpha) + d.filter[n-1][0]*SlowFilterAlpha
		d.filter[n][1] = d.filter[n][1]*(1-SlowFilterAlpha) + d.filter[n-1][1]*SlowFilterAlpha
	}

	d.iq[2] = d.iq[1]
	d.iq[1] = d.iq[0]
	d.iq[0][0] = d.filter[SlowFilterOrder-1][0]
	d.iq[0][1] = d.filter[SlowFilterOrder-1][1]

	qDelta := d.iq[0][1] - d.iq[2][1]
	iDelta := d.iq[0][0] - d.iq[2][0]
	fRaw := d.iq[1][0]*qDelta - d.iq[1][1]*iDelta
	p := d.iq[1][0]*d.iq[1][0] + d.iq[1][1]*d.iq[1][1]

	var frq float64
	if p != 0 {
		frq = -fRaw / p // >0 => logical 1, <0 => logical 0
	}

	d.avgPower = (1-powerLeak)*d.avgPower + powerLeak*p

	if d.avgPower < carrierGatePower {
		d.pos = -1
		d.integral = 0
		return NoCarrier
	}

	return d.frameBit(frq)
}

// frameBit advances the async 8N1 bit-framing state machine by one sample
// given the sign of the instantaneous frequency estimate, returning the
// completed octet or NoData.
func (d *Demodulator) frameBit(frq float64) int {
	if d.pos < 0 {
		if frq < 0 {
			d.pos = 0
			d.integral = 0
		}
		return NoData
	}

	bpos := d.pos / SlowBitLen
	d.integral += frq
	d.pos++

	if d.pos%SlowBitLen != 0 {
		return NoData
	}
	defer func() { d.integral = 0 }()

	switch {
	case bpos == 0: // start bit
		if d.integral > 0 {
			d.pos = -1 // not really a start bit
			return NoData
		}
		d.d = 0
		return NoData

	case bpos < 9: // data bit, LSB first
		var bit byte
		if d.integral > 0 {
			bit = 1
		}
		d.d = (d.d >> 1) | (bit << 7)
		return NoData

	case bpos == 9: // stop bit
		d.pos = -1
		if d.integral < 0 {
			return NoData // framing error, discard
		}
		octet := int(d.d)
		d.d = 0
		return octet

	default:
		d.pos = -1
		return NoData
	}
}

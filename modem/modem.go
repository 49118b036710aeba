// Package modem emulates the server side of a V.23 asymmetric FSK modem
// together with the BTX byte-oriented link layer it carries.
//
// It bridges a 12 kHz signed-linear PCM audio channel (the telephony side,
// fed from a host one frame at a time) to a TCP byte stream carrying a BTX
// terminal session (the application-server side). The three pieces run in
// lockstep off a single per-sample clock: Demodulator turns audio samples
// into received octets, Modulator turns octets into audio samples, and
// LinkLayer sits between them doing framing, CRC, and retransmission.
package modem

/*------------------------------------------------------------------
 *
 * Sample-rate anchor: everything here assumes 12000 samples/sec PCM16.
 * Downstream (modem -> terminal) runs at 1200 bit/s, upstream
 * (terminal -> modem) at 75 bit/s.
 *
 *---------------------------------------------------------------*/

const (
	SampleRate = 12000

	FastBitRate = 1200
	FastBitLen  = SampleRate / FastBitRate // 10 samples/bit

	SlowBitRate = 75
	SlowBitLen  = SampleRate / SlowBitRate // 160 samples/bit

	FastFreq0 = 2100.0 // space / logical 0, downstream
	FastFreq1 = 1300.0 // mark / logical 1, downstream
	SlowFreq  = 420.0  // upstream local-oscillator center

	SlowFilterOrder = 5
	SlowFilterAlpha = 0.08

	FastAmplitude = 20000
)

// BTX link-layer control bytes (spec.md §6 / §GLOSSARY).
const (
	STX  = 0x02
	ETX  = 0x03
	EOT  = 0x04
	ENQ  = 0x05
	ACK  = 0x06
	NACK = 0x15
)

// Compound ACK is the two-byte sequence 0x10 followed by one of these.
const (
	CompoundACKPrefix = 0x10
)

var compoundACKSecond = [...]byte{0x30, 0x31, 0x3F}

func isCompoundACKSecond(b byte) bool {
	for _, c := range compoundACKSecond {
		if b == c {
			return true
		}
	}
	return false
}

// Demodulator return sentinels, and LinkLayer result sentinels
// (spec.md §7: the demodulator never fails, it returns negative events;
// the link layer returns a byte, NoData, or a Hangup).
//
// NoData is shared between both domains (nothing to report this tick);
// NoCarrier and Hangup get distinct values even though they never appear
// in the same value space, so a misrouted comparison fails loudly
// instead of silently matching the wrong sentinel.
const (
	NoData    = -1 // demod: no byte this sample; link: nothing to send
	NoCarrier = -2 // demod only: distinct carrier-loss event
	Hangup    = -3 // link layer only: fatal, tear the session down
)

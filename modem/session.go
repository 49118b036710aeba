package modem

import (
	"io"

	"github.com/charmbracelet/log"
)

/*------------------------------------------------------------------
 *
 * Purpose:	Wires frame-level audio I/O to the demodulator, link
 *		layer, and modulator, advancing the sample clock and
 *		tearing down the socket on hangup.
 *
 *---------------------------------------------------------------*/

// AudioDevice is the host audio contract (spec.md §6): a source and
// sink of signed 16-bit PCM frames at 12 kHz, called once per frame.
// The core never resamples; a device delivering anything else is a
// configuration error at the edge, not something the session handles.
type AudioDevice interface {
	// ReadFrame fills buf with the next frame's samples and returns how
	// many were written. Implementations return io.EOF once no more
	// audio will arrive.
	ReadFrame(buf []int16) (n int, err error)
	// WriteFrame delivers one frame of samples back to the host.
	WriteFrame(buf []int16) error
}

// Session owns one call's worth of demodulator, modulator, and link
// layer state. There is no cross-call persistence: a new Session is
// created per call and discarded on hangup (spec.md §3, §5).
type Session struct {
	demod *Demodulator
	mod   *Modulator
	link  *LinkLayer

	logger *log.Logger

	sampleCount int64 // total samples processed, for the ms clock

	pendingByte int // most recent completed byte since last link tick
	carrierUp   bool
}

// NewSession creates a session wired to conn, using the given buffer
// variant and ENQ retry bound. logger may be nil, in which case a
// discarding logger is used.
func NewSession(conn netConn, variant Variant, enqRetryLimit int, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		demod:       NewDemodulator(),
		mod:         NewModulator(),
		link:        NewLinkLayer(conn, variant, enqRetryLimit),
		logger:      logger,
		pendingByte: NoData,
	}
}

// msElapsed converts the sample clock to milliseconds, matching the
// reference's "since / 12" (12000 samples/sec / 12 = 1000 ms/sec... the
// reference actually derives ms from sample count at 12 samples/ms,
// since SRATE=12000 samples/sec = 12 samples/ms).
func (s *Session) msElapsed() int64 {
	return s.sampleCount / (SampleRate / 1000)
}

// ProcessFrame runs one host audio frame through the pipeline: each
// input sample is demodulated, then one output sample is produced by
// the modulator; whenever the modulator signals it is ready for the
// next octet, the link layer is ticked with whatever was received
// since the last tick. Returns false once the session must hang up.
func (s *Session) ProcessFrame(in, out []int16) bool {
	n := len(in)
	if len(out) < n {
		n = len(out)
	}

	for i := 0; i < n; i++ {
		s.sampleCount++

		r := s.demod.Demodulate(in[i])
		s.carrierUp = r != NoCarrier
		if r >= 0 {
			s.pendingByte = r
		}

		out[i] = s.mod.Modulate()

		if !s.mod.Ready() {
			continue
		}

		input := NoData
		switch {
		case s.pendingByte >= 0:
			input = s.pendingByte
		case !s.carrierUp:
			input = NoCarrier
		}
		s.pendingByte = NoData

		rc := s.link.Step(input, s.msElapsed())
		switch {
		case rc == Hangup:
			s.logger.Error("link layer hangup")
			return false
		case rc >= 0:
			s.mod.Send(byte(rc))
		}
		// rc == NoData: modulator stays idle, already signalled by Ready.
	}

	return true
}

// Close tears down the session's socket. Safe to call once, on hangup
// or normal termination.
func (s *Session) Close() error {
	return s.link.Close()
}

// Command v23modem runs one BTX/V.23 modem session: it bridges a
// 12 kHz signed PCM16 audio stream (read from stdin, written to
// stdout, one frame at a time) to a TCP connection carrying a BTX
// terminal session, the way the reference Asterisk application bridges
// a telephony channel to the same socket.
//
// Audio framing, resampling, and call setup/teardown are the host's
// job (spec.md §1 Out of scope); this binary is a thin, host-agnostic
// front end so the core package can be exercised end-to-end without a
// telephony stack.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/clarke3-net/v23modem/modem"
	"github.com/clarke3-net/v23modem/modem/config"
)

// framePCM16 is the number of samples read/written per host frame; 160
// samples is about 13.3 ms at 12 kHz.
const framePCM16 = 160

func main() {
	var variantOverride = pflag.String("variant", "", "buffer variant: production or compat (default from config)")
	var enqRetryOverride = pflag.Int("enq-retries", -1, "ENQ retries before hangup, -1 to use config default")
	var logLevel = pflag.String("log-level", "", "log level: debug, info, warn, error (default from config)")
	var help = pflag.Bool("help", false, "Display help text.")
	var version = pflag.Bool("version", false, "Print version information and exit.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - BTX/V.23 modem session bridge\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] \"ADDRESS PORT\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "ADDRESS PORT is a single argument, e.g. \"127.0.0.1 8023\".\n")
		fmt.Fprintf(os.Stderr, "Audio is read as raw signed 16-bit little-endian PCM at 12kHz\n")
		fmt.Fprintf(os.Stderr, "from stdin and written the same way to stdout.\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *version {
		printVersion()
		os.Exit(0)
	}

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Exactly one argument required (\"ADDRESS PORT\") - got %v\n", pflag.Args())
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *variantOverride != "" {
		cfg.Variant = *variantOverride
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	variant, err := cfg.ResolveVariant()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	enqRetries := cfg.EnqRetryLimit
	if *enqRetryOverride >= 0 {
		enqRetries = *enqRetryOverride
	}

	target, err := config.ParseConnectTarget(pflag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	conn, err := modem.Dial(target.String())
	if err != nil {
		logger.Error("dial failed", "target", target.String(), "err", err)
		os.Exit(-1)
	}

	// os.Exit does not run deferred functions, so the session (and its
	// socket) is closed from an ordinary function return here, and
	// os.Exit is only called once, after that return, with the result.
	os.Exit(func() int {
		session := modem.NewSession(conn, variant, enqRetries, logger)
		defer session.Close()

		if err := run(session, os.Stdin, os.Stdout); err != nil && err != io.EOF {
			logger.Error("session error", "err", err)
			return -1
		}

		// spec.md §6: the application returns -1 on normal termination too.
		return -1
	}())
}

// run pumps raw PCM16LE audio from r to the session and the session's
// output to w, framePCM16 samples at a time, until r is exhausted or
// the session hangs up.
func run(session *modem.Session, r io.Reader, w io.Writer) error {
	inBuf := make([]byte, framePCM16*2)
	in := make([]int16, framePCM16)
	out := make([]int16, framePCM16)
	outBuf := make([]byte, framePCM16*2)

	for {
		nb, err := io.ReadFull(r, inBuf)
		if nb == 0 {
			return err
		}
		nSamples := nb / 2
		for i := 0; i < nSamples; i++ {
			in[i] = int16(binary.LittleEndian.Uint16(inBuf[i*2:]))
		}

		if !session.ProcessFrame(in[:nSamples], out[:nSamples]) {
			return nil
		}

		for i := 0; i < nSamples; i++ {
			binary.LittleEndian.PutUint16(outBuf[i*2:], uint16(out[i]))
		}
		if _, werr := w.Write(outBuf[:nSamples*2]); werr != nil {
			return werr
		}

		if err != nil {
			return err
		}
	}
}

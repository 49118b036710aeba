// Command v23pty is a manual test harness for the BTX link layer. It
// is not part of the live call path (spec.md excludes standalone
// offline tools from the core) — it exists so a developer can drive
// the link layer's control-byte protocol directly, typing bytes at a
// pseudo-terminal instead of needing a real V.23 audio loop, the way
// the teacher's kisspt pseudo-terminal stands in for a KISS client
// during development.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/spf13/pflag"

	"github.com/clarke3-net/v23modem/modem"
	"github.com/clarke3-net/v23modem/modem/config"
)

func main() {
	var help = pflag.Bool("help", false, "Display help text.")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - manual BTX link-layer test harness\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nUsage: %s \"ADDRESS PORT\"\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help || pflag.NArg() != 1 {
		pflag.Usage()
		if *help {
			os.Exit(0)
		}
		os.Exit(1)
	}

	logger := log.New(os.Stderr)

	target, err := config.ParseConnectTarget(pflag.Arg(0))
	if err != nil {
		logger.Fatal("bad connect target", "err", err)
	}

	conn, err := modem.Dial(target.String())
	if err != nil {
		logger.Fatal("dial failed", "err", err)
	}

	ptmx, pts, err := pty.Open()
	if err != nil {
		logger.Fatal("could not open pseudo-terminal", "err", err)
	}
	defer ptmx.Close()
	logger.Info("pseudo-terminal ready", "slave", pts.Name())

	link := modem.NewLinkLayer(conn, modem.Production, modem.DefaultEnqRetryLimit)
	defer link.Close()

	start := time.Now()
	nowMS := func() int64 { return time.Since(start).Milliseconds() }

	in := make(chan byte)
	go func() {
		var b [1]byte
		for {
			n, err := ptmx.Read(b[:])
			if err != nil {
				close(in)
				return
			}
			if n > 0 {
				in <- b[0]
			}
		}
	}()

	pendingByte := modem.NoData
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case b, ok := <-in:
			if !ok {
				return
			}
			pendingByte = int(b)
		case <-ticker.C:
			rc := link.Step(pendingByte, nowMS())
			pendingByte = modem.NoData
			switch {
			case rc == modem.Hangup:
				logger.Info("link hangup")
				return
			case rc >= 0:
				_, _ = ptmx.Write([]byte{byte(rc)})
			}
		}
	}
}

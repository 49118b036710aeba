package main

import (
	"fmt"
	"runtime/debug"
	"strconv"
)

// Version is set at build time via -ldflags "-X main.Version=X".
var Version string

func buildSetting(bi *debug.BuildInfo, key, fallback string) string {
	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}
	return fallback
}

func printVersion() {
	buildInfo, _ := debug.ReadBuildInfo()

	commit := buildSetting(buildInfo, "vcs.revision", "UNKNOWN")
	dirtyStr := buildSetting(buildInfo, "vcs.modified", "INVALID")
	buildTime := buildSetting(buildInfo, "vcs.time", "UNKNOWN")

	if dirty, err := strconv.ParseBool(dirtyStr); err == nil && dirty {
		commit += "-DIRTY"
	}

	version := Version
	if version == "" {
		version = "!UNKNOWN!"
	}

	fmt.Printf("v23modem - version %s (revision %s, built at %s)\n", version, commit, buildTime)
}

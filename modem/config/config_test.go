package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarke3-net/v23modem/modem"
)

func TestDefaultResolvesToProductionVariant(t *testing.T) {
	cfg := Default()
	variant, err := cfg.ResolveVariant()
	require.NoError(t, err)
	assert.Equal(t, modem.Production, variant)
	assert.Equal(t, modem.DefaultEnqRetryLimit, cfg.EnqRetryLimit)
}

func TestResolveVariantCompat(t *testing.T) {
	cfg := Config{Variant: "CoMpAt"}
	variant, err := cfg.ResolveVariant()
	require.NoError(t, err)
	assert.Equal(t, modem.Compat, variant)
}

func TestResolveVariantUnknown(t *testing.T) {
	cfg := Config{Variant: "bogus"}
	_, err := cfg.ResolveVariant()
	assert.Error(t, err)
}

func TestParseConnectTargetValid(t *testing.T) {
	target, err := ParseConnectTarget("127.0.0.1 8023")
	require.NoError(t, err)
	assert.Equal(t, ConnectTarget{Host: "127.0.0.1", Port: 8023}, target)
	assert.Equal(t, "127.0.0.1:8023", target.String())
}

func TestParseConnectTargetRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"127.0.0.1",
		"127.0.0.1 8023 extra",
		"notanaddress 8023",
		"127.0.0.1 notaport",
		"127.0.0.1 -1",
		"127.0.0.1 70000",
		"localhost 8023", // reference parser would segfault; we reject hostnames too
		"::1 8023",       // IPv6 literal: valid net.IP, but not the dotted-quad the contract promises
	}
	for _, arg := range cases {
		_, err := ParseConnectTarget(arg)
		assert.Error(t, err, "expected rejection for %q", arg)
	}
}

package modem

// Variant selects the link layer's circular-buffer pair (spec.md §9
// Open Question — buffer sizing). The two pairs observed in the
// reference implementation are kept as named variants with identical
// semantics rather than silently merged into one.
type Variant struct {
	Name string
	BLen int
	PLen int
}

// Production is the default, larger buffer pair: BLEN=1024, PLEN=64.
var Production = Variant{Name: "production", BLen: 1024, PLen: 64}

// Compat is the smaller, older-generation buffer pair: BLEN=128,
// PLEN=40. Semantics are identical, just scaled down.
var Compat = Variant{Name: "compat", BLen: 128, PLen: 40}

package catalog

import (
	"strconv"
	"strings"
)

// Resolution is the outcome of resolving an external id.
//
// Resolved is true only when the catalog knows the id. Otherwise Numeric
// tells whether ItemID holds the raw id parsed as a number; when it is
// false the id is opaque and only Original is meaningful.
type Resolution struct {
	ItemID   int
	Resolved bool
	Original string
	Via      string
	Numeric  bool
}

// Opaque reports whether the id could neither be resolved nor parsed.
func (r Resolution) Opaque() bool { return !r.Resolved && !r.Numeric }

// Step values name how a Resolution was produced.
const (
	ViaReverse     = "reverse"
	ViaPlaceholder = "placeholder"
	ViaNumeric     = "numeric"
	ViaOpaque      = "opaque"
)

// Step is one stage of a resolver chain. It returns ok=false to pass the id
// on to the next step.
type Step interface {
	Resolve(ext string) (Resolution, bool)
}

// StepFunc adapts a function to [Step].
type StepFunc func(ext string) (Resolution, bool)

// Resolve calls f.
func (f StepFunc) Resolve(ext string) (Resolution, bool) { return f(ext) }

// ReverseStep resolves through the catalog's external id map.
func ReverseStep(c *Catalog) Step {
	return StepFunc(func(ext string) (Resolution, bool) {
		def, ok := c.ByExternal(ext)
		if !ok {
			return Resolution{}, false
		}
		return Resolution{ItemID: def.InternalID, Resolved: true, Original: ext, Via: ViaReverse}, true
	})
}

// PlaceholderStep resolves through the catalog's placeholder map.
func PlaceholderStep(c *Catalog) Step {
	return StepFunc(func(ext string) (Resolution, bool) {
		def, ok := c.ByPlaceholder(ext)
		if !ok {
			return Resolution{}, false
		}
		return Resolution{ItemID: def.InternalID, Resolved: true, Original: ext, Via: ViaPlaceholder}, true
	})
}

// NumericStep keeps an unknown id as its non-negative integer value.
func NumericStep() Step {
	return StepFunc(func(ext string) (Resolution, bool) {
		n, err := strconv.Atoi(ext)
		if err != nil || n < 0 {
			return Resolution{}, false
		}
		return Resolution{ItemID: n, Original: ext, Via: ViaNumeric, Numeric: true}, true
	})
}

// OpaqueStep accepts anything and keeps the raw string.
func OpaqueStep() Step {
	return StepFunc(func(ext string) (Resolution, bool) {
		return Resolution{Original: ext, Via: ViaOpaque}, true
	})
}

// Chain tries its steps in order and returns the first result.
type Chain []Step

// DefaultChain returns reverse map, placeholder map, numeric parse, opaque.
func DefaultChain(c *Catalog) Chain {
	return Chain{ReverseStep(c), PlaceholderStep(c), NumericStep(), OpaqueStep()}
}

// Resolve runs the chain on ext (surrounding whitespace ignored). A chain
// whose steps all pass yields an opaque Resolution.
func (ch Chain) Resolve(ext string) Resolution {
	ext = strings.TrimSpace(ext)
	for _, s := range ch {
		if r, ok := s.Resolve(ext); ok {
			return r
		}
	}
	return Resolution{Original: ext, Via: ViaOpaque}
}

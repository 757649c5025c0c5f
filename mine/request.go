package mine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/treeminer/freq"
)

// ErrInvalidRequest is returned for mining requests which cannot be served.
var ErrInvalidRequest = errors.New("invalid mining request")

// Mode selects the mining algorithm.
type Mode int

const (
	// PlainRightmostExpansion enumerates all frequent patterns.
	PlainRightmostExpansion Mode = iota
	// ClosedMaximalBlanket enumerates all frequent patterns and flags the closed and
	// maximal ones.
	ClosedMaximalBlanket
)

func (m Mode) String() string {
	switch m {
	case PlainRightmostExpansion:
		return "plain"
	case ClosedMaximalBlanket:
		return "closed-maximal"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode reads a mode name as returned by String.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "plain", "":
		return PlainRightmostExpansion, nil
	case "closed-maximal", "cm":
		return ClosedMaximalBlanket, nil
	}
	return PlainRightmostExpansion, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, name)
}

// Request parameterizes a mining run.
type Request struct {
	MinSupport int           // patterns need at least this support
	Strategy   freq.Strategy // frequency counting semantics
	MaxSize    int           // maximum number of pattern nodes
	Mode       Mode          // plain or closed/maximal mining
	Workers    int           // concurrent validations per level; 0 or 1 is sequential
}

// Validate checks the request parameters.
func (r Request) Validate() error {
	if r.MinSupport < 1 {
		return fmt.Errorf("%w: min support must be positive, is %d", ErrInvalidRequest, r.MinSupport)
	}
	if r.MaxSize < 0 {
		return fmt.Errorf("%w: negative max size %d", ErrInvalidRequest, r.MaxSize)
	}
	if r.Strategy < freq.TraceTransaction || r.Strategy > freq.VariantOccurrence {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, r.Strategy)
	}
	if r.Mode != PlainRightmostExpansion && r.Mode != ClosedMaximalBlanket {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, r.Mode)
	}
	if r.Workers < 0 {
		return fmt.Errorf("%w: negative number of workers", ErrInvalidRequest)
	}
	return nil
}

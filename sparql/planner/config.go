package planner

import (
	"fmt"
	"math"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
)

// Options is the planner configuration from spec.md §6: whether the
// pattern-trick rewrite is attempted, the text-search default result
// limit, and whether DP pruning ties are broken deterministically.
type Options struct {
	EnablePatternTrick    bool
	TextLimit             uint32
	DeterministicTieBreak bool
}

// DefaultOptions matches the original QueryPlanner's defaults: pattern
// trick enabled, a conservative text limit of 1, non-deterministic
// (first-wins) tie-break.
func DefaultOptions() Options {
	return Options{EnablePatternTrick: true, TextLimit: 1, DeterministicTieBreak: false}
}

// fileOptions mirrors Options with an untyped TextLimit field, since a TOML
// document may spell a limit as an integer, a float, or (least commonly) a
// quoted string.
type fileOptions struct {
	EnablePatternTrick    bool `toml:"enable_pattern_trick"`
	TextLimit             any  `toml:"text_limit"`
	DeterministicTieBreak bool `toml:"deterministic_tie_break"`
}

// LoadOptionsFile decodes planner Options from a TOML file, giving test
// fixtures a declarative way to specify option sets (SPEC_FULL.md ambient
// stack, configuration).
func LoadOptionsFile(path string) (Options, error) {
	var raw fileOptions
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Options{}, ErrStructural.New(fmt.Sprintf("decoding planner options from %s: %v", path, err))
	}
	limit, err := ParseTextLimit(raw.TextLimit)
	if err != nil {
		return Options{}, err
	}
	return Options{
		EnablePatternTrick:    raw.EnablePatternTrick,
		TextLimit:             limit,
		DeterministicTieBreak: raw.DeterministicTieBreak,
	}, nil
}

// ParseTextLimit coerces an untyped text-limit value — typically the raw
// decimal string a SPARQL query's internal text-limit keyword carries
// (spec.md §4.7) — to a non-negative uint32. A nil or empty value yields
// the default limit of 1; anything else that isn't a non-negative decimal
// integer is a planner error.
func ParseTextLimit(v any) (uint32, error) {
	if v == nil || v == "" {
		return 1, nil
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, ErrStructural.New(fmt.Sprintf("text limit must be a non-negative decimal integer, got %v", v))
		}
		return uint32(n), nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil || n < 0 || n > math.MaxUint32 {
		return 0, ErrStructural.New(fmt.Sprintf("text limit must be a non-negative decimal integer, got %v", v))
	}
	return uint32(n), nil
}

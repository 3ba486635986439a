package lsystem

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Rules maps a symbol to its replacement for one rewrite pass.
type Rules map[rune]string

// ParseRules converts an external mapping keyed by single-character strings,
// as stored in species catalogues, into Rules. Keys must be exactly one
// printable symbol.
func ParseRules(m map[string]string) (Rules, error) {
	out := make(Rules, len(m))
	for k, v := range m {
		if err := errors.ValidateRuleKey(k); err != nil {
			return nil, err
		}
		if err := errors.ValidateSymbols("rule "+k, v); err != nil {
			return nil, err
		}
		out[[]rune(k)[0]] = v
	}
	return out, nil
}

// Strings converts r back to a string-keyed mapping.
func (r Rules) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[string(k)] = v
	}
	return out
}

// String renders the rules as "F=F[+F]F; X=..." in symbol order.
func (r Rules) String() string {
	keys := slices.Sorted(maps.Keys(r))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k) + "=" + r[k]
	}
	return strings.Join(parts, "; ")
}

// check validates the inputs shared by Expand and Length.
func check(axiom string, rules Rules, iterations int) error {
	if err := errors.ValidateIterations(iterations, 0); err != nil {
		return err
	}
	if err := errors.ValidateSymbols("axiom", axiom); err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(rules)) {
		if err := errors.ValidateSymbols("rule "+string(k), rules[k]); err != nil {
			return err
		}
	}
	return nil
}

// Expand rewrites axiom through iterations generations of rules.
// Zero iterations return the axiom unchanged. Symbols without a rule are
// copied as they are. Negative iterations fail with
// errors.ErrCodeInvalidArgument, and an axiom or replacement that is not
// valid UTF-8 fails with errors.ErrCodeInvalidInput.
func Expand(axiom string, rules Rules, iterations int) (string, error) {
	if err := check(axiom, rules, iterations); err != nil {
		return "", err
	}
	if iterations == 0 {
		return axiom, nil
	}

	prods := make(map[rune][]rune, len(rules))
	for k, v := range rules {
		prods[k] = []rune(v)
	}

	cur := []rune(axiom)
	for range iterations {
		n := 0
		for _, c := range cur {
			if p, ok := prods[c]; ok {
				n += len(p)
			} else {
				n++
			}
		}
		next := make([]rune, 0, n)
		for _, c := range cur {
			if p, ok := prods[c]; ok {
				next = append(next, p...)
			} else {
				next = append(next, c)
			}
		}
		cur = next
	}
	return string(cur), nil
}

// Length returns the number of symbols Expand would produce, without
// building the string. Results beyond math.MaxInt saturate.
func Length(axiom string, rules Rules, iterations int) (int, error) {
	if err := check(axiom, rules, iterations); err != nil {
		return 0, err
	}

	prods := make(map[rune][]rune, len(rules))
	for k, v := range rules {
		prods[k] = []rune(v)
	}

	// size[c] is the expanded length of symbol c after the current number
	// of generations. Symbols without a rule always have length 1.
	size := make(map[rune]int, len(prods))
	for c := range prods {
		size[c] = 1
	}
	for range iterations {
		next := make(map[rune]int, len(prods))
		for c, p := range prods {
			n := 0
			for _, s := range p {
				n = satAdd(n, symbolLen(size, s))
			}
			next[c] = n
		}
		size = next
	}

	total := 0
	for _, c := range axiom {
		total = satAdd(total, symbolLen(size, c))
	}
	return total, nil
}

// ExpandBounded behaves like Expand but fails with
// errors.ErrCodeInvalidArgument when the result would exceed maxSymbols.
// A non-positive maxSymbols disables the bound.
func ExpandBounded(axiom string, rules Rules, iterations, maxSymbols int) (string, error) {
	if maxSymbols > 0 {
		n, err := Length(axiom, rules, iterations)
		if err != nil {
			return "", err
		}
		if n > maxSymbols {
			return "", errors.New(errors.ErrCodeInvalidArgument,
				"expansion would produce %d symbols (limit %d); lower the iteration count", n, maxSymbols)
		}
	}
	return Expand(axiom, rules, iterations)
}

func symbolLen(size map[rune]int, c rune) int {
	if n, ok := size[c]; ok {
		return n
	}
	return 1
}

func satAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

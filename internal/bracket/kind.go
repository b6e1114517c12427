package bracket

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Errors returned by Kind validation.
var (
	ErrZeroRune      = errors.New("bracket character is empty")
	ErrSameRune      = errors.New("open and close brackets must differ")
	ErrNotSingleRune = errors.New("bracket must be a single character")
)

// Kind is the opening/closing character pair being matched.
type Kind struct {
	Open  rune
	Close rune
}

// DefaultKind matches square brackets.
var DefaultKind = Kind{Open: '[', Close: ']'}

// ParseKind builds a Kind from two single-character strings.
func ParseKind(open, close string) (Kind, error) {
	o, err := singleRune(open)
	if err != nil {
		return Kind{}, fmt.Errorf("open %q: %w", open, err)
	}
	c, err := singleRune(close)
	if err != nil {
		return Kind{}, fmt.Errorf("close %q: %w", close, err)
	}
	k := Kind{Open: o, Close: c}
	if err := k.Validate(); err != nil {
		return Kind{}, err
	}
	return k, nil
}

func singleRune(s string) (rune, error) {
	if s == "" {
		return 0, ErrZeroRune
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, ErrNotSingleRune
	}
	return r, nil
}

// Validate checks that the kind can be matched.
func (k Kind) Validate() error {
	if k.Open == 0 || k.Close == 0 {
		return ErrZeroRune
	}
	if k.Open == k.Close {
		return ErrSameRune
	}
	return nil
}

// IsBracket reports whether r is the opening or closing character.
func (k Kind) IsBracket(r rune) bool {
	return r == k.Open || r == k.Close
}

// String returns the pair as written, e.g. "[]".
func (k Kind) String() string {
	return string([]rune{k.Open, k.Close})
}

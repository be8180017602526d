package shortener

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultAlphabet is the ordered character set used to derive short codes.
// It excludes visually ambiguous characters (0/O/o, 1-lookalikes, vowels).
const DefaultAlphabet = "123456789bcdfghjkmnpqrstvwxyzBCDFGHJKLMNPQRSTVWXYZ"

// codeOffset is added to every id before encoding so that even the first
// rows produce codes of a usable length.
const codeOffset = 200000

var errAlphabetTooShort = errors.New("alphabet must contain at least 2 characters")

// Alphabet is an ordered, duplicate-free character set. Codes are derived
// from row ids by positional encoding over it, so the character order is
// part of the format: two alphabets with the same characters in a
// different order produce different codes.
type Alphabet struct {
	chars   string
	members map[byte]struct{}
}

// NewAlphabet builds an alphabet from the given character set. An empty
// string selects DefaultAlphabet, matching the configuration surface where
// the override is optional. The set must be ASCII: encoding and code
// validation index single bytes, so multi-byte runes are rejected up front
// instead of being split into nonsense digits.
func NewAlphabet(chars string) (*Alphabet, error) {
	if chars == "" {
		chars = DefaultAlphabet
	}

	if len(chars) < 2 {
		return nil, errAlphabetTooShort
	}

	members := make(map[byte]struct{}, len(chars))

	for i := 0; i < len(chars); i++ {
		if chars[i] >= utf8.RuneSelf {
			return nil, fmt.Errorf("alphabet must be ASCII, found multi-byte character at offset %d", i)
		}

		if _, dup := members[chars[i]]; dup {
			return nil, fmt.Errorf("alphabet contains duplicate character %q", chars[i])
		}

		members[chars[i]] = struct{}{}
	}

	return &Alphabet{chars: chars, members: members}, nil
}

// MustAlphabet is like NewAlphabet but panics on an invalid character set.
// Intended for wiring with known-good constants.
func MustAlphabet(chars string) *Alphabet {
	a, err := NewAlphabet(chars)
	if err != nil {
		panic(err)
	}

	return a
}

// Encode derives the short code for a store-assigned id. The encoding is
// plain base-N over the alphabet after adding the fixed offset, with one
// extra leading character emitted for the terminal division step. It is
// injective over all ids, so codes never collide.
func (a *Alphabet) Encode(id uint64) Code {
	value := id + codeOffset
	base := uint64(len(a.chars))

	var b strings.Builder

	for value > 0 {
		b.WriteByte(a.chars[value%base])
		value /= base
	}

	b.WriteByte(a.chars[value])

	// Digits were accumulated least-significant first; reverse them.
	raw := []byte(b.String())
	for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}

	return Code(raw)
}

// Contains reports whether the code is non-empty and every character
// belongs to the alphabet.
func (a *Alphabet) Contains(code Code) bool {
	if code == "" {
		return false
	}

	for i := 0; i < len(code); i++ {
		if _, ok := a.members[code[i]]; !ok {
			return false
		}
	}

	return true
}

// String returns the ordered character set.
func (a *Alphabet) String() string {
	return a.chars
}

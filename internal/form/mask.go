package form

import (
	"fmt"
	"regexp"
	"unicode"
)

// mask checks text input against a field mask.
type mask struct {
	re      *regexp.Regexp
	pattern []rune
}

// compileMask parses a mask. "^..." is a regular expression; anything else is
// a pattern where 9 is a digit, a is a letter, * is a letter or digit, and
// every other rune must appear literally.
func compileMask(s string) (*mask, error) {
	if s == "" {
		return nil, nil
	}
	if s[0] == '^' {
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("invalid mask %q: %w", s, err)
		}
		return &mask{re: re}, nil
	}
	return &mask{pattern: []rune(s)}, nil
}

// match reports whether value fits the mask.
func (m *mask) match(value string) bool {
	if m.re != nil {
		return m.re.MatchString(value)
	}

	runes := []rune(value)
	if len(runes) != len(m.pattern) {
		return false
	}
	for i, p := range m.pattern {
		r := runes[i]
		switch p {
		case '9':
			if !unicode.IsDigit(r) {
				return false
			}
		case 'a':
			if !unicode.IsLetter(r) {
				return false
			}
		case '*':
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		default:
			if r != p {
				return false
			}
		}
	}
	return true
}

// digits returns the ASCII digits of s.
func digits(s string) []int {
	out := make([]int, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, int(r-'0'))
		}
	}
	return out
}

func allSame(d []int) bool {
	for _, v := range d[1:] {
		if v != d[0] {
			return false
		}
	}
	return true
}

// validCPF checks the length and both check digits of a CPF number.
// Punctuation is ignored.
func validCPF(s string) bool {
	d := digits(s)
	if len(d) != 11 || allSame(d) {
		return false
	}
	for n := 9; n <= 10; n++ {
		sum := 0
		for i := 0; i < n; i++ {
			sum += d[i] * (n + 1 - i)
		}
		check := sum * 10 % 11
		if check == 10 {
			check = 0
		}
		if check != d[n] {
			return false
		}
	}
	return true
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// validCNPJ checks the length and both check digits of a CNPJ number.
// Punctuation is ignored.
func validCNPJ(s string) bool {
	d := digits(s)
	if len(d) != 14 || allSame(d) {
		return false
	}
	for _, weights := range [][]int{cnpjWeights1, cnpjWeights2} {
		sum := 0
		for i, w := range weights {
			sum += d[i] * w
		}
		check := 0
		if r := sum % 11; r >= 2 {
			check = 11 - r
		}
		if check != d[len(weights)] {
			return false
		}
	}
	return true
}

// validPhone accepts 8 to 15 digits, the range of national and E.164 numbers.
func validPhone(s string) bool {
	n := len(digits(s))
	return n >= 8 && n <= 15
}

package utils

import (
	"errors"
	"strings"
)

// ErrEmptyLabel is returned when a name contains two consecutive unescaped dots.
var ErrEmptyLabel = errors.New("empty label in domain name")

// SplitLabels splits a presentation name into its raw labels. A backslash
// escapes the following byte, so `a\.b.example` yields "a.b" and "example".
// A single trailing dot is accepted; the root ("" or ".") has no labels.
func SplitLabels(name string) ([]string, error) {
	if name == "" || name == "." {
		return nil, nil
	}
	var (
		labels []string
		cur    strings.Builder
	)
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '\\' && i+1 < len(name):
			i++
			cur.WriteByte(name[i])
		case c == '.':
			if cur.Len() == 0 {
				return nil, ErrEmptyLabel
			}
			labels = append(labels, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		labels = append(labels, cur.String())
	}
	return labels, nil
}

// JoinLabels is the inverse of SplitLabels: labels are joined with "." and
// any dot or backslash inside a label is escaped. No trailing dot is added.
func JoinLabels(labels []string) string {
	var b strings.Builder
	for i, l := range labels {
		if i > 0 {
			b.WriteByte('.')
		}
		for j := 0; j < len(l); j++ {
			if l[j] == '.' || l[j] == '\\' {
				b.WriteByte('\\')
			}
			b.WriteByte(l[j])
		}
	}
	return b.String()
}

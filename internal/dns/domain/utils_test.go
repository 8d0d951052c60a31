package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	cases := []struct {
		name string
		t    RRType
		c    RRClass
		want string
	}{
		{"example.com.", 1, 1, "example.com|1|1"},
		{"FOO.local", 28, 255, "foo.local|28|255"},
		{"", 2, 1, "|2|1"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GenerateCacheKey(tc.name, tc.t, tc.c))
	}
}

func TestGenerateCacheKey_WhitespaceIsSignificant(t *testing.T) {
	assert.NotEqual(t, GenerateCacheKey("example.com", RRTypeA, RRClassIN), GenerateCacheKey("example.com ", RRTypeA, RRClassIN))
	assert.NotEqual(t, GenerateCacheKey("www.example.com", RRTypeA, RRClassIN), GenerateCacheKey(" www.example.com", RRTypeA, RRClassIN))
}

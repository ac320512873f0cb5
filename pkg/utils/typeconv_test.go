package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt64(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{" 42 ", 42, false},
		{"-3", -3, false},
		{"3.00", 3, false},
		{"3.99", 3, false},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, c := range cases {
		got, err := ParseInt64(c.in)
		if c.wantErr {
			assert.Error(t, err, c.in)
			continue
		}
		assert.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestOrZeroHelpers(t *testing.T) {
	assert.Equal(t, int64(0), Int64OrZero("nope"))
	assert.Equal(t, int64(7), Int64OrZero("7"))
	assert.Equal(t, 7, IntOrZero("7"))
	assert.Equal(t, 0.0, Float64OrZero(""))
	assert.Equal(t, 450000.5, Float64OrZero("450000.5"))
}

func TestTruthy(t *testing.T) {
	assert.True(t, Truthy("1"))
	assert.True(t, Truthy("2"))
	assert.False(t, Truthy("0"))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy("abc"))
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"ab":                 "***",
		"username":           "u…e",
		"Alice@Example.com":  "a…@e….com",
		"a@b.io":             "a@b.io",
		"  bob@mail.co.uk  ": "b…@m….co.uk",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestEmailField(t *testing.T) {
	f := Email("carol@example.com")
	assert.Equal(t, "email", f.Key)
	assert.Equal(t, "c…@e….com", f.String)
}

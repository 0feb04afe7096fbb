package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "  Solid oak.\nHand finished.  ", "Solid oak.\nHand finished."},
		{"tags stripped", "<p>Solid <strong>oak</strong></p>", "Solid oak"},
		{"block elements spaced", "<p>One</p><p>Two</p><ul><li>a</li><li>b</li></ul>", "One Two a b"},
		{"entities decoded", "Tables &amp; chairs", "Tables & chairs"},
		{"scripts dropped", "<p>Lamp</p><script>alert(1)</script>", "Lamp"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainDescription(tt.in))
		})
	}
}

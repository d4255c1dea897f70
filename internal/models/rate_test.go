package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSGSSeries(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{1, SeriesPTAXSell},
		{10813, "sgs-10813"},
		{21619, "sgs-21619"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SGSSeries(tt.code))
	}
}

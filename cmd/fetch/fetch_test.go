package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSessionLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flagSet    bool
		flag       int
		configured int
		want       int
	}{
		{"flag absent uses configured default", false, 0, 2, 2},
		{"explicit zero means unlimited", true, 0, 2, 0},
		{"explicit positive wins", true, 5, 2, 5},
		{"negative treated as unlimited", true, -1, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, resolveSessionLimit(tt.flagSet, tt.flag, tt.configured))
		})
	}
}

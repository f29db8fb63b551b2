package root_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/camp-registration/cmd/root"
)

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "camp-registration", root.Cmd.Use)
	assert.NotEmpty(t, root.Cmd.Short)
	assert.NotEmpty(t, root.Cmd.Long)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
}

func TestInit_Flags(t *testing.T) {
	root.Init()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{name: "input", shorthand: "i", def: ""},
		{name: "output", shorthand: "o", def: ""},
		{name: "format", shorthand: "f", def: "json"},
		{name: "config", shorthand: "", def: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

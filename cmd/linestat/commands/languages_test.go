package commands_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/linestat/cmd/linestat/commands"
)

func TestLanguagesCommand_Text(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLanguagesCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Go")
	assert.Contains(t, out.String(), "Python")
	assert.Contains(t, out.String(), "languages")
}

func TestLanguagesCommand_YAML(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLanguagesCommand()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--format", "yaml"})

	require.NoError(t, cmd.Execute())

	var payload struct {
		Languages []string `yaml:"languages"`
	}

	require.NoError(t, yaml.Unmarshal(out.Bytes(), &payload))
	assert.Contains(t, payload.Languages, "Go")
	assert.IsIncreasing(t, payload.Languages)
}

func TestLanguagesCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLanguagesCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--format", "json"})

	err := cmd.Execute()
	require.ErrorIs(t, err, commands.ErrUnknownFormat)
}

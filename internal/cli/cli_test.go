package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParser_RegistersAllSubcommands(t *testing.T) {
	parser, _, cmds := buildParser("test")

	expected := []string{"columns", "export", "list", "serve", "status", "sync", "views"}
	var got []string
	for _, cmd := range parser.Commands() {
		got = append(got, cmd.Name)
	}
	assert.ElementsMatch(t, expected, got)

	require.NotNil(t, cmds.List)
	require.NotNil(t, cmds.Status)
	assert.Equal(t, "eventhubx", parser.Name)
}

func TestBuildParser_ListFlagDefaults(t *testing.T) {
	parser, _, _ := buildParser("test")

	cmd := parser.Find("list")
	require.NotNil(t, cmd)

	entity := cmd.FindOptionByLongName("entity")
	require.NotNil(t, entity)
	assert.Equal(t, []string{"events"}, entity.Default)

	event := cmd.FindOptionByLongName("event")
	require.NotNil(t, event)
	assert.Equal(t, []string{"all"}, event.Default)

	dir := cmd.FindOptionByLongName("dir")
	require.NotNil(t, dir)
	assert.Equal(t, []string{"asc"}, dir.Default)
}

func TestRunWithArgs_Version(t *testing.T) {
	out, err := captureOutput(t, func() error {
		return RunWithArgs("1.2.3", []string{"--version"})
	})

	require.NoError(t, err)
	assert.Contains(t, out, "eventhubx 1.2.3")
}

func TestRunWithArgs_UnknownCommand(t *testing.T) {
	_, err := captureOutput(t, func() error {
		return RunWithArgs("test", []string{"definitely-not-a-command"})
	})
	assert.Error(t, err)
}

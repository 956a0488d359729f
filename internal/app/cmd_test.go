package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand(&bytes.Buffer{}, BuildInfo{})

	for _, name := range []Command{CommandServe, CommandMigrate, CommandSeed, CommandHealthcheck, CommandVersion} {
		cmd, _, err := root.Find([]string{string(name)})
		require.NoError(t, err, name)
		assert.Equal(t, string(name), cmd.Name())
	}
}

func TestNewRootCommand_ConfigFlagIsPersistent(t *testing.T) {
	root := NewRootCommand(&bytes.Buffer{}, BuildInfo{})
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))

	seed, _, err := root.Find([]string{string(CommandSeed)})
	require.NoError(t, err)
	flag := seed.Flags().Lookup("count")
	require.NotNil(t, flag)
	assert.Equal(t, "10", flag.DefValue)
}

func TestRun_Version_PrintsBuildInfo(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), &buf, []string{"version"}, BuildInfo{
		Version: "v1.2.3",
		Commit:  "abc1234",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "staffbook")
	assert.Contains(t, out, "v1.2.3")
	assert.Contains(t, out, "abc1234")
}

func TestRun_UnknownCommand_ReturnsError(t *testing.T) {
	err := Run(context.Background(), &bytes.Buffer{}, []string{"worker"}, BuildInfo{})
	assert.Error(t, err)
}

func TestRun_Seed_RejectsNonPositiveCount(t *testing.T) {
	err := Run(context.Background(), &bytes.Buffer{}, []string{"seed", "--count", "0"}, BuildInfo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--count")
}

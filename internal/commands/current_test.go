package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrentCmd(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("current", c.project)
	require.NoError(t, err)
	data := mustJSON(t, out)
	require.Equal(t, "0.0", data["version"])
	require.Equal(t, true, data["initialized"])
	require.Equal(t, "0.0", readVersion(t, c.project))

	require.NoError(t, os.WriteFile(filepath.Join(c.project, "versioneer.txt"), []byte("1.20"), 0o644))
	out, err = c.run("current", c.project)
	require.NoError(t, err)
	data = mustJSON(t, out)
	require.Equal(t, "1.20", data["version"])
	require.Nil(t, data["initialized"])
}

func TestCurrentCmd_MissingProject(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("current", filepath.Join(c.parent, "ghost"))
	require.Error(t, err)
}

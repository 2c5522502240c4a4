package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	csvPath := filepath.Join(dir, "materials.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"id,name,code,category_id,category_name\n"+
			"1,Steel Bar,MTL-0001,1,Metals\n"+
			"2,PVC Pipe,PLS-0001,2,Plastics\n"+
			"3,Copper Wire,MTL-0002,1,Metals\n"), 0o600))

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--dry-run", "--file", csvPath})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "categories=2 materials=3 dry_run=true\n", out.String())
}

func TestSeedCommand_DryRunMissingFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dry-run", "--file", filepath.Join(t.TempDir(), "missing.csv")})

	assert.Error(t, cmd.Execute())
}

package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/linestat/cmd/linestat/commands"
	"github.com/Sumatoshi-tech/linestat/internal/archive"
	"github.com/Sumatoshi-tech/linestat/internal/snapshot"
)

// writeArchive builds a two-record archive for command tests. The info
// entry declares declaredTotal records, which may disagree with the
// actual count to model hand-tampered archives.
func writeArchive(t *testing.T, declaredTotal uint64) string {
	t.Helper()

	stageDir := t.TempDir()
	path := filepath.Join(t.TempDir(), "stats.zip")

	writer, err := archive.NewWriter(stageDir, 1, 4)
	require.NoError(t, err)
	require.NoError(t, writer.WriteInfo(declaredTotal))

	encoder, err := writer.NewChunkEncoder(0, 2)
	require.NoError(t, err)

	for i := range 2 {
		require.NoError(t, encoder.Encode(&snapshot.Snapshot{
			Timestamp: time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC),
			Files: map[string]snapshot.FileRecord{
				"main.go": {Language: "Go", Stats: snapshot.LineStats{Code: uint64(10 + i)}},
			},
		}))
	}

	require.NoError(t, encoder.Close())
	require.NoError(t, writer.Assemble(path))

	return path
}

func TestRenderCommand(t *testing.T) {
	archivePath := writeArchive(t, 2)
	outputPath := filepath.Join(t.TempDir(), "stats.html")
	configPath := filepath.Join(t.TempDir(), ".linestat.yaml")
	require.NoError(t, os.WriteFile(configPath, nil, 0o600))

	config := configPath
	cmd := commands.NewRenderCommand(&config)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{archivePath, "--output", outputPath, "--filter", "go"})

	require.NoError(t, cmd.Execute())

	page, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "2024-05-01")
	assert.Contains(t, out.String(), "rendered 2 points")
}

// TestRenderCommand_OverstatedTotal renders an archive whose info entry
// claims more records than exist. The command must finish instead of
// waiting on progress that can never complete.
func TestRenderCommand_OverstatedTotal(t *testing.T) {
	archivePath := writeArchive(t, 5)
	outputPath := filepath.Join(t.TempDir(), "stats.html")
	configPath := filepath.Join(t.TempDir(), ".linestat.yaml")
	require.NoError(t, os.WriteFile(configPath, nil, 0o600))

	config := configPath
	cmd := commands.NewRenderCommand(&config)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{archivePath, "--output", outputPath})

	done := make(chan error, 1)

	go func() { done <- cmd.Execute() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("render did not finish")
	}

	assert.Contains(t, out.String(), "rendered 2 points")
}

func TestRenderCommand_MissingArchive(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".linestat.yaml")
	require.NoError(t, os.WriteFile(configPath, nil, 0o600))

	config := configPath
	cmd := commands.NewRenderCommand(&config)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.zip")})

	assert.Error(t, cmd.Execute())
}

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [path]", ingestCmd.Use)
}

func TestIngestCmd_Short(t *testing.T) {
	assert.Equal(t, "Ingest a file or directory into the corpus", ingestCmd.Short)
}

func TestIngestCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execCLI(t, "ingest")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

// writeTestFile creates name under dir with the given content.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_SingleFile(t *testing.T) {
	t.Cleanup(setupTestServices())
	path := writeTestFile(t, t.TempDir(), "note.txt", "some text")

	out, err := execCLI(t, "ingest", path)

	assert.NoError(t, err)
	assert.Contains(t, out, "Ingested")
	assert.Contains(t, out, "2 chunks")
}

func TestIngestCmd_Directory(t *testing.T) {
	t.Cleanup(setupTestServices())

	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "a")
	writeTestFile(t, dir, "b.md", "b")
	writeTestFile(t, dir, "c.bin", "\x01")

	out, err := execCLI(t, "ingest", dir)

	assert.NoError(t, err)
	assert.Contains(t, out, "Ingested 2 of 2 files")
}

func TestIngestCmd_EmptyDirectory(t *testing.T) {
	t.Cleanup(setupTestServices())

	out, err := execCLI(t, "ingest", t.TempDir())

	assert.NoError(t, err)
	assert.Contains(t, out, "No ingestible files found")
}

func TestIngestCmd_TitleRejectedForDirectory(t *testing.T) {
	t.Cleanup(setupTestServices())
	t.Cleanup(func() { ingestTitle = "" })

	_, err := execCLI(t, "ingest", "--title", "My Notes", t.TempDir())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--title applies to a single file")
}

func TestIngestCmd_MissingPath(t *testing.T) {
	t.Cleanup(setupTestServices())

	_, err := execCLI(t, "ingest", "/nonexistent/path")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestIngestCmd_AllFilesFail(t *testing.T) {
	t.Cleanup(setupTestServices())
	ingestService = &mockIngestServiceError{}

	dir := t.TempDir()
	writeTestFile(t, dir, "a.txt", "a")

	_, err := execCLI(t, "ingest", dir)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ingest")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	t.Cleanup(setupTestServices())
	ingestService = nil

	_, err := execCLI(t, "ingest", "somewhere")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestIngestibleFile(t *testing.T) {
	assert.True(t, ingestibleFile("notes.txt"))
	assert.True(t, ingestibleFile("README.md"))
	assert.True(t, ingestibleFile("UPPER.TXT"))
	assert.False(t, ingestibleFile("image.png"))
	assert.False(t, ingestibleFile("noext"))
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command against the sample source with its config
// and storage under dir
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ATELIER_STORAGE", filepath.Join(dir, "atelier.db"))

	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "config.json"), "--source", "sample"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTasksCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "tasks", "--status", "pending", "--sort", "title")
	require.NoError(t, err)
	assert.Contains(t, out, "Photograph new works")
	assert.Contains(t, out, "Send invoices")
	assert.NotContains(t, out, "Update price list")
	assert.Less(t, bytes.Index([]byte(out), []byte("Photograph")), bytes.Index([]byte(out), []byte("Send invoices")))

	_, err = os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err, "first run writes the default config")

	_, err = run(t, dir, "tasks", "--sort", "size")
	assert.Error(t, err)
}

func TestCalendarCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "calendar")
	require.NoError(t, err)
	assert.Contains(t, out, "Collector meeting")
	assert.Contains(t, out, "Sun   Mon")

	_, err = run(t, t.TempDir(), "calendar", "--month", "03/2025")
	assert.Error(t, err)
}

func TestCartIsPersisted(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "cart", "add", "dig-orchard", "2")
	require.NoError(t, err)

	out, err := run(t, dir, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "2 piece(s), total 50.00 EUR")

	out, err = run(t, dir, "storage", "clear", "--prefix", "cart.", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully deleted 1 key(s)")

	out, err = run(t, dir, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "The cart is empty")
}

func TestUnknownSource(t *testing.T) {
	_, err := run(t, t.TempDir(), "--source", "ftp", "tasks")
	assert.ErrorContains(t, err, `unknown source "ftp"`)
}

func TestServeNeedsSecret(t *testing.T) {
	t.Setenv("ATELIER_SERVER_JWT_SECRET", "")
	_, err := run(t, t.TempDir(), "serve", "--addr", "127.0.0.1:0")
	assert.ErrorContains(t, err, "jwt secret is required")
}

func TestWhoAmI_NotLoggedIn(t *testing.T) {
	out, err := run(t, t.TempDir(), "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

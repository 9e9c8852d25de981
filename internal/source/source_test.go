package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestWalk(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "DAP", "manual.pdf"))
	touch(t, filepath.Join(root, "DAP", "anexo.TXT"))
	touch(t, filepath.Join(root, "LBTR", "sub", "guia.md"))
	touch(t, filepath.Join(root, "suelto.docx"))
	touch(t, filepath.Join(root, "DAP", "logo.png"))
	touch(t, filepath.Join(root, ".cache", "hidden.txt"))
	touch(t, filepath.Join(root, "DAP", ".~lock.manual.docx"))

	files, err := Walk(root)
	require.NoError(t, err)

	assert.Equal(t, []File{
		{Path: filepath.Join(root, "DAP", "anexo.TXT"), Name: "anexo.TXT", Folder: "DAP", Ext: ".txt"},
		{Path: filepath.Join(root, "DAP", "manual.pdf"), Name: "manual.pdf", Folder: "DAP", Ext: ".pdf"},
		{Path: filepath.Join(root, "LBTR", "sub", "guia.md"), Name: "guia.md", Folder: "sub", Ext: ".md"},
		{Path: filepath.Join(root, "suelto.docx"), Name: "suelto.docx", Folder: "", Ext: ".docx"},
	}, files)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewFile(t *testing.T) {
	f := NewFile(filepath.Join("docs", "Pago de Linea", "instructivo.PDF"))
	assert.Equal(t, "Pago de Linea", f.Folder)
	assert.Equal(t, "instructivo.PDF", f.Name)
	assert.Equal(t, ".pdf", f.Ext)

	assert.Empty(t, NewFile("manual.pdf").Folder)
}

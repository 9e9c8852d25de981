package parser

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-docs-rag/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractTextPlain(t *testing.T) {
	path := writeFile(t, "manual.txt", "Para hacer un DAP,\ningrese a la app.")

	got, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "Para hacer un DAP,\ningrese a la app.", got)
}

func TestExtractTextMarkdown(t *testing.T) {
	path := writeFile(t, "guia.MD", "# Compra de dólares\n\nIngrese a **Inversiones** y elija [dólares](https://example.com).\n\n- paso uno\n- paso dos\n")

	got, err := ExtractText(path)
	require.NoError(t, err)
	assert.Contains(t, got, "Compra de dólares\n")
	assert.Contains(t, got, "Ingrese a Inversiones y elija dólares.")
	assert.Contains(t, got, "paso uno")
	assert.Contains(t, got, "paso dos")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "https://example.com")
	assert.NotContains(t, got, "#")
}

func TestExtractTextPPTXKeepsSlideOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	slides := []struct{ name, text string }{
		{"ppt/slides/slide10.xml", "décima"},
		{"ppt/slides/slide2.xml", "segunda"},
		{"ppt/slides/slide1.xml", "primera"},
		{"ppt/slides/_rels/slide1.xml.rels", "ignored"},
	}
	for _, s := range slides {
		w, err := zw.Create(s.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(`<p:sld xmlns:a="a" xmlns:p="p"><a:p><a:r><a:t>` + s.text + `</a:t></a:r></a:p></p:sld>`))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	got, err := ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "primera\n\nsegunda\n\ndécima\n\n", got)
}

func TestExtractTextFailures(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"unsupported format", writeFile(t, "image.png", "binary")},
		{"empty text", writeFile(t, "blank.txt", " \n\t ")},
		{"missing file", filepath.Join(t.TempDir(), "missing.txt")},
		{"broken pdf", writeFile(t, "broken.pdf", "not a pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractText(tt.path)
			assert.ErrorIs(t, err, models.ErrExtraction)
		})
	}
}

func TestXMLText(t *testing.T) {
	doc := `<w:document xmlns:w="w"><w:body>` +
		`<w:p><w:r><w:t xml:space="preserve">Tarjetas de </w:t></w:r><w:r><w:t>Crédito</w:t></w:r></w:p>` +
		`<w:p><w:r><w:instrText>ignored</w:instrText><w:t>Bloqueo</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	got, err := xmlText(doc)
	require.NoError(t, err)
	assert.Equal(t, "Tarjetas de Crédito\nBloqueo\n", got)

	_, err = xmlText("<w:p><w:t>unclosed")
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".DOCX", ".pptx", ".xlsx", ".xlsm", ".md", ".txt"} {
		assert.True(t, Supported(ext), ext)
	}
	assert.False(t, Supported(".png"))
	assert.False(t, Supported(""))
}

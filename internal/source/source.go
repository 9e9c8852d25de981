package source

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"product-docs-rag/internal/parser"
)

// File is one document found under the documents root. Folder is the name
// of the directory that directly contains it and drives its category.
type File struct {
	Path   string
	Name   string
	Folder string
	Ext    string
}

// Walk lists every supported document under root, sorted by path. Hidden
// files and directories are skipped, as are formats the extractor cannot read.
func Walk(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !parser.Supported(ext) {
			log.Debug().Str("path", path).Msg("Skipping unsupported file")
			return nil
		}
		files = append(files, newFile(root, path, ext))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	log.Info().Str("root", root).Int("count", len(files)).Msg("Found documents")
	return files, nil
}

// NewFile describes a single document given on the command line.
func NewFile(path string) File {
	return newFile("", path, strings.ToLower(filepath.Ext(path)))
}

func newFile(root, path, ext string) File {
	dir := filepath.Dir(path)
	folder := ""
	if root == "" || filepath.Clean(dir) != filepath.Clean(root) {
		folder = filepath.Base(dir)
	}
	if folder == "." || folder == string(filepath.Separator) {
		folder = ""
	}
	return File{
		Path:   path,
		Name:   filepath.Base(path),
		Folder: folder,
		Ext:    ext,
	}
}

package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/contextkit/corpora/internal/domain"
)

// maxFileBytes caps the size of one file included in a directory snapshot.
const maxFileBytes = 1024 * 1024 // 1 MB

// skipDirNames are directories excluded from snapshots: VCS internals,
// dependency trees, and build output.
var skipDirNames = map[string]struct{}{
	".git": {}, ".hg": {}, ".svn": {},
	"node_modules": {}, "vendor": {},
	"dist": {}, "build": {}, "target": {}, "__pycache__": {},
}

// DirLoader loads a repository snapshot: every readable text file under a
// root, with a table of contents and per-file demarcation. Traversal is
// sequential and sorted so the same tree always yields the same corpus.
type DirLoader struct {
	root string
}

// NewDirLoader creates a DirLoader for the given root directory.
func NewDirLoader(root string) *DirLoader {
	return &DirLoader{root: root}
}

// Label implements Loader.
func (l *DirLoader) Label() string {
	return filepath.Base(l.root)
}

// Load implements Loader.
func (l *DirLoader) Load(ctx context.Context) (*domain.LoadedSource, error) {
	var items []domain.FileInfo

	walkErr := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if _, skip := skipDirNames[d.Name()]; skip {
				return filepath.SkipDir
			}

			return nil
		}

		item, ok := l.loadFile(path)
		if ok {
			items = append(items, item)
		}

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", l.root, walkErr)
	}

	return l.assemble(items), nil
}

// loadFile reads one file and returns its FileInfo. Binary and oversized
// files are skipped.
func (l *DirLoader) loadFile(path string) (domain.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxFileBytes {
		return domain.FileInfo{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FileInfo{}, false
	}

	if !utf8.Valid(data) {
		return domain.FileInfo{}, false
	}

	rel, err := filepath.Rel(l.root, path)
	if err != nil {
		rel = path
	}

	text := string(data)

	return domain.FileInfo{
		Path:          filepath.ToSlash(rel),
		Content:       text,
		Size:          len(data),
		TokenEstimate: estimateFileTokens(path, text),
		MimeType:      contentTypeFor(path),
	}, true
}

// assemble builds the snapshot corpus: a table of contents followed by each
// file introduced by its path.
func (l *DirLoader) assemble(items []domain.FileInfo) *domain.LoadedSource {
	var sb strings.Builder

	sb.WriteString("# Repository snapshot: " + l.root + "\n\n")
	sb.WriteString("## Contents\n\n")

	for _, item := range items {
		sb.WriteString("- " + item.Path + "\n")
	}

	totalTokens := 0

	for _, item := range items {
		sb.WriteString("\n\n## " + item.Path + "\n\n")
		sb.WriteString(item.Content)

		totalTokens += item.TokenEstimate
	}

	metadata := domain.NewMetadata("dir:" + l.root)
	metadata["file_count"] = len(items)

	return &domain.LoadedSource{
		Content:     sb.String(),
		TotalTokens: totalTokens,
		FileCount:   len(items),
		Items:       items,
		Metadata:    metadata,
	}
}

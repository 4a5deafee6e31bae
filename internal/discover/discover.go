// Package discover locates supported glossary files from a mix of file
// and directory paths.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/agentstation/glossync/pkg/errors"
	"github.com/agentstation/glossync/pkg/extract"
	"github.com/agentstation/glossync/pkg/logging"
)

// Files resolves the given file and directory paths to the supported
// glossary files they contain. Directories are walked recursively; files
// are kept when an extractor exists for their extension. The result is
// deduplicated and preserves discovery order. It returns
// errors.ErrNoFiles when nothing supported is found.
func Files(ctx context.Context, paths []string) ([]string, error) {
	log := logging.FromContext(ctx)

	var found []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.WrapIO("stat", path, err)
		}

		if !info.IsDir() {
			if supported(path) {
				found = append(found, path)
			} else {
				log.Warn().Str("file", path).Msg("Skipping unsupported file")
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && supported(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
	}

	found = lo.Uniq(found)
	if len(found) == 0 {
		return nil, errors.ErrNoFiles
	}

	log.Info().Int("files", len(found)).Msg("Discovered glossary files")
	return found, nil
}

func supported(path string) bool {
	_, ok := extract.ByExtension(strings.ToLower(filepath.Ext(path)), false)
	return ok
}

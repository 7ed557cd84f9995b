package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/metascrub/metascrub/internal/mediatype"
	"github.com/metascrub/metascrub/pkg/types"
)

type Scanner struct {
	includeExt map[string]bool
}

// New creates a Scanner. An empty extension list includes every file.
func New(extensions []string) *Scanner {
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		extMap[strings.ToLower(ext)] = true
	}
	return &Scanner{includeExt: extMap}
}

func (s *Scanner) Scan(root string) ([]types.FileEntry, error) {
	var entries []types.FileEntry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if len(s.includeExt) > 0 && !s.includeExt[ext] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		entry := types.FileEntry{
			Path:      path,
			Name:      d.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Extension: ext,
		}

		if mt, ok := mediatype.DetectFile(path); ok {
			entry.MediaType = mt.String()
		}

		entries = append(entries, entry)
		return nil
	})

	return entries, err
}

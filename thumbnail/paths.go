package thumbnail

import (
	"path/filepath"
	"strconv"
)

// Dir computes the directory thumbnails of one media file are written to.
// Folder is derived from the data directory: <dataDir>/thumbnails/<mediaID>
func Dir(dataDir string, mediaID int64) string {
	return filepath.Join(dataDir, "thumbnails", strconv.FormatInt(mediaID, 10))
}

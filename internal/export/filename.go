package export

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// filenameStamp is the layout appended to export filenames.
const filenameStamp = "2006-01-02_15-04"

var unsafeFilename = regexp.MustCompile(`[^\w.-]+`)

// TimestampedFilename returns "<base>_<yyyy-MM-dd_HH-mm>.<ext>". A trailing
// ".<ext>" on base is removed first, and characters that are unsafe in a
// Content-Disposition header become underscores.
func TimestampedFilename(base, ext string, now time.Time) string {
	ext = strings.TrimPrefix(ext, ".")
	base = filepath.Base(strings.TrimSpace(base))
	base = strings.TrimSuffix(base, "."+ext)
	base = strings.Trim(unsafeFilename.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "export"
	}
	return base + "_" + now.Format(filenameStamp) + "." + ext
}

package source

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// imageExtensions are the URL path extensions kept as-is when deriving a
// fallback destination name. Anything else gets the configured default.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// DestName derives a destination object name for rawURL. The base name of
// the URL path is used when present; otherwise the name falls back to
// image_<row> with the URL's extension (or defaultExt when the extension
// is not a recognized image type).
func DestName(rawURL string, row int, defaultExt string) string {
	var urlPath string
	if parsed, err := url.Parse(rawURL); err == nil {
		urlPath = parsed.Path
	}

	base := path.Base(urlPath)
	if base != "" && base != "." && base != "/" {
		return base
	}
	return fmt.Sprintf("image_%d%s", row, FileExtension(rawURL, defaultExt))
}

// FileExtension returns the extension of the URL path when it is a
// recognized image type, defaultExt otherwise.
func FileExtension(rawURL, defaultExt string) string {
	var urlPath string
	if parsed, err := url.Parse(rawURL); err == nil {
		urlPath = parsed.Path
	}

	ext := strings.ToLower(path.Ext(urlPath))
	if imageExtensions[ext] {
		return ext
	}
	return defaultExt
}

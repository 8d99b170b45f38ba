package http1

import "strings"

// DefaultContentType is served for extensions with no known mapping.
const DefaultContentType = "application/octet-stream"

// mimeTypes maps lowercase file extensions (without the dot) to content
// types.
var mimeTypes = map[string]string{
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"json": "application/json",
	"txt":  "text/plain",
}

// ResolveMIME maps a file extension to a content type. The comparison is
// case-insensitive and the function is total: unknown extensions,
// including the empty one, map to application/octet-stream.
func ResolveMIME(extension string) string {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if ct, ok := mimeTypes[ext]; ok {
		return ct
	}
	return DefaultContentType
}

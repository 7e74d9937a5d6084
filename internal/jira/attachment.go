package jira

import (
	"mime"
	"path/filepath"
	"strings"
)

// AttachmentContentType guesses the MIME type for an attachment from its
// file extension. MindManager files are not in the platform MIME tables and
// unknown extensions fall back to the tracker's plain-text default.
func AttachmentContentType(filePath string) string {
	ext := strings.TrimPrefix(filepath.Ext(filePath), ".")
	if ext == "mmp" {
		return "application/octet-stream"
	}
	contentType := mime.TypeByExtension("." + ext)
	if contentType == "" {
		return "txt/plain"
	}
	return contentType
}

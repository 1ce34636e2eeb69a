package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Attachment kinds used in object keys.
const (
	KindCertificate = "certificate"
	KindTranscript  = "transcript"
)

var folderStripPattern = regexp.MustCompile(`[^a-z0-9_.-]`)

// SanitizeFolder derives a storage folder from a university short name:
// lower-cased, whitespace collapsed to underscores, anything outside
// [a-z0-9_.-] stripped. Returns "" when nothing legible remains; callers fall
// back to the university id so the folder is never empty.
func SanitizeFolder(shortName string) string {
	folder := strings.ToLower(strings.TrimSpace(shortName))
	folder = strings.Join(strings.Fields(folder), "_")
	return folderStripPattern.ReplaceAllString(folder, "")
}

// BuildObjectKey returns "{folder}/{unixMillis}_{kind}_{filename}" with
// whitespace in the original filename replaced by underscores. The timestamp
// prefix keeps concurrent uploads of identically named files apart.
func BuildObjectKey(folder, kind, filename string, now time.Time) string {
	name := strings.Join(strings.Fields(filename), "_")
	return fmt.Sprintf("%s/%d_%s_%s", folder, now.UnixMilli(), kind, name)
}

// ExtractKey recovers the object key from a stored URL. The canonical parse
// takes everything after the bucket segment; when the bucket never appears in
// the URL the last path segment is used so older, differently shaped URLs
// still resolve to something deletable.
func ExtractKey(url, bucket string) string {
	if url == "" {
		return ""
	}

	trimmed := url
	if idx := strings.IndexAny(trimmed, "?#"); idx != -1 {
		trimmed = trimmed[:idx]
	}

	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		if part == bucket && i < len(parts)-1 {
			return strings.Join(parts[i+1:], "/")
		}
		// virtual-hosted style: bucket is the subdomain of the host segment
		if strings.HasPrefix(part, bucket+".") && i < len(parts)-1 {
			return strings.Join(parts[i+1:], "/")
		}
	}

	return parts[len(parts)-1]
}

// FileExtension returns the extension of a key's final segment, defaulting to
// "pdf" for extension-less paths.
func FileExtension(key string) string {
	segments := strings.Split(key, "/")
	last := segments[len(segments)-1]
	if idx := strings.LastIndex(last, "."); idx != -1 && idx < len(last)-1 {
		return last[idx+1:]
	}
	return "pdf"
}

package security

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
)

// FileKind groups the extensions an upload slot accepts.
type FileKind int

const (
	KindImage FileKind = iota
	KindDocument
	KindImageOrDocument
)

// Magic byte signatures keyed by lowercase extension.
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {[]byte("GIF87a"), []byte("GIF89a")},
	".webp": {[]byte("RIFF")},
	".pdf":  {[]byte("%PDF")},
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	".docx": {{0x50, 0x4B, 0x03, 0x04}},
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
var documentExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

// Detected MIME types accepted per extension. octet-stream is only tolerated
// for Word formats, whose magic bytes were already verified.
var allowedMIME = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".gif":  {"image/gif"},
	".webp": {"image/webp"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/octet-stream"},
	".docx": {"application/zip", "application/octet-stream"},
}

// ValidatedFile is an upload that passed ValidateFile.
type ValidatedFile struct {
	Extension   string
	ContentType string
}

func (k FileKind) allows(ext string) bool {
	switch k {
	case KindImage:
		return imageExtensions[ext]
	case KindDocument:
		return documentExtensions[ext]
	default:
		return imageExtensions[ext] || documentExtensions[ext]
	}
}

// AllowedExtensions lists the extensions of a kind, sorted.
func (k FileKind) AllowedExtensions() []string {
	var out []string
	for ext := range magicBytes {
		if k.allows(ext) {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

// ValidateFile checks the extension whitelist, the magic bytes and the
// sniffed MIME type, in that order.
func ValidateFile(filename string, data []byte, kind FileKind) (*ValidatedFile, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, fmt.Errorf("file has no extension")
	}
	if !kind.allows(ext) {
		return nil, fmt.Errorf("file extension not allowed: %s (allowed: %s)", ext, strings.Join(kind.AllowedExtensions(), ", "))
	}
	if !hasMagicBytes(ext, data) {
		return nil, fmt.Errorf("file content does not match extension")
	}

	detected := http.DetectContentType(data)
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	for _, m := range allowedMIME[ext] {
		if m == detected {
			return &ValidatedFile{Extension: ext, ContentType: contentTypeFor(ext, detected)}, nil
		}
	}
	return nil, fmt.Errorf("MIME type not allowed: %s", detected)
}

func hasMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func contentTypeFor(ext, detected string) string {
	switch ext {
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return detected
}

func IsImageExtension(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}

package util

import (
	"path/filepath"
	"strings"
)

const defaultExt = ".bin"

// SafeExtension returns the lowercased extension of name when it is short and
// alphanumeric, and ".bin" otherwise.
func SafeExtension(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 10 {
		return defaultExt
	}
	for _, ch := range ext[1:] {
		if !((ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')) {
			return defaultExt
		}
	}
	return ext
}

package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// WindowsExecutableExtensions returns the lower-cased extensions listed in
// PATHEXT, or the usual defaults when it is unset.
func WindowsExecutableExtensions() map[string]bool {
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	exts := map[string]bool{}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}

// IsExecutable reports whether info describes a file the OS would run.
// On Windows only the extension is checked.
func IsExecutable(path string, info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		return ext != "" && WindowsExecutableExtensions()[ext]
	}
	return info.Mode().Perm()&0111 != 0
}

package store

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
)

// Identity computes the deterministic storage key for a function: the
// sha256 of "path:name". Paths are normalized to forward slashes so the
// same file produces the same key on every platform.
//
// Two same-named functions in different files get distinct identities.
// Two same-named functions in the same file (e.g. methods of different
// classes) do not — a known limitation of the (file, name) keying scheme.
func Identity(filePath, funcName string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(filepath.ToSlash(filePath)+":"+funcName)))
}

// RelPath returns filePath relative to root when possible, so identities
// stay stable regardless of where the project is checked out or how the
// path was spelled on the command line.
func RelPath(root, filePath string) string {
	if root == "" {
		return filePath
	}
	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		return filePath
	}
	return rel
}

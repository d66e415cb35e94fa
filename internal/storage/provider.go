// Package storage defines the workspace file-system abstraction.
package storage

// Provider is the interface for workspace file operations. All paths are
// relative to the workspace root unless noted otherwise.
type Provider interface {
	// Root returns the absolute workspace root.
	Root() string
	// Rel converts an absolute path inside the workspace to a root-relative
	// one. Paths outside the workspace are returned unchanged.
	Rel(abs string) string
	// Exists reports whether the file or directory at path exists.
	Exists(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Append appends content to the file at path, creating it (and parent
	// directories) if absent.
	Append(path string, content []byte) error
	// Copy duplicates the file at src to dst.
	Copy(src, dst string) error
}

// Package version holds the release version stamped into managed templates.
package version

// Current is the codesync release version.
const Current = "1.3.0"

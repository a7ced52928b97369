// Package paths provides cross-platform path resolution for specval's
// configuration file and user-installed schema trees.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/share).
//
//	paths.ConfigDir()     // ~/.config/specval/
//	paths.SchemaDataDir() // ~/.local/share/specval/schemas/
package paths

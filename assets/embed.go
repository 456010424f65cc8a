package assets

import (
	"embed"
)

//go:embed top100_fallback.json
var FS embed.FS

// Top100Fallback returns the bundled SteamSpy top-100 snapshot used when the
// live source is exhausted.
func Top100Fallback() ([]byte, error) {
	return FS.ReadFile("top100_fallback.json")
}

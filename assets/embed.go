// Package assets embeds the default Creole dictionary so the server can
// run without any word files configured.
package assets

import (
	"embed"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/dictionary"
)

//go:embed dictionnaire.json
var FS embed.FS

// DefaultDictionary parses the embedded dictionary.
func DefaultDictionary() ([]dictionary.Entry, error) {
	f, err := FS.Open("dictionnaire.json")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dictionary.Parse(f)
}

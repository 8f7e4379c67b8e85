package forgecfg

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const configFileName = "forge.toml"

// loadDocument reads and strictly decodes <dir>/forge.toml, rejecting any
// key the schema does not recognize.
func loadDocument(dir string) (*document, error) {
	path := filepath.Join(dir, configFileName)
	if _, err := os.Stat(path); err != nil {
		return nil, &ConfigMissingError{Path: path}
	}

	var doc document
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, &ConfigParseError{Path: path, Err: err}
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, &ConfigParseError{Path: path, Key: undecoded[0].String()}
	}
	return &doc, nil
}

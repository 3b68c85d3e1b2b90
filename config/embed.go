package config

import _ "embed"

//go:embed board.json
var boardJSON []byte

// Board returns the embedded board description, or Default when it does
// not load.
func Board() (*Config, error) {
	cfg, err := Load(boardJSON)
	if err != nil {
		return Default(), err
	}
	return cfg, nil
}

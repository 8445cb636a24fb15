package config

import (
	"fmt"
	"os"
)

// Template returns a config file populated with the defaults.
func Template() string {
	return defaultTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o600)
}

const defaultTemplate = `[buffer]
capacity = 257
byte_order = "big"
queue_depth = 16

[log]
level = "info"
`

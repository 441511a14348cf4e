package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given files (".env" when none are
// given) without overriding the existing environment. Missing files are
// reported through the loaded flag rather than as an error.
func LoadDotEnv(paths ...string) (loaded bool, err error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = true
	}
	return loaded, nil
}

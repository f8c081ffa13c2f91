package config

import (
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultOverridePath is the developer-local settings file read on top of
// the process environment.
const DefaultOverridePath = ".env"

// ReadSource returns the raw key/value configuration of the process: the
// ambient environment overlaid with the dotenv file at overridePath.
//
// The override file is optional. When it is missing, unreadable or empty
// the ambient environment is returned as is; deployed environments are
// expected to have no such file.
func ReadSource(overridePath string) map[string]string {
	return readSource(os.Environ(), overridePath)
}

func readSource(environ []string, overridePath string) map[string]string {
	raw := environMap(environ)
	if overridePath == "" {
		return raw
	}

	override, err := godotenv.Read(overridePath)
	if err != nil || len(override) == 0 {
		return raw
	}

	maps.Copy(raw, override)
	return raw
}

func environMap(environ []string) map[string]string {
	raw := make(map[string]string, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		raw[key] = value
	}
	return raw
}

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// DefaultDotEnvFile is read before the YAML config so its variables can
// feed ${VAR} expansion.
const DefaultDotEnvFile = ".env"

// LoadDotEnv exports the variables of a dotenv file into the process
// environment. Variables already set win over the file. A missing file is
// not an error.
func LoadDotEnv(path string) (bool, error) {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return true, nil
}

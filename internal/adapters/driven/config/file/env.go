package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFile is the dotenv file name looked up by LoadDotEnv.
const EnvFile = ".env"

// LoadDotEnv reads .env from each directory in order. Variables already
// set in the environment are kept, so earlier directories win over later
// ones. Missing files are skipped. It returns the files that were read.
func LoadDotEnv(dirs ...string) ([]string, error) {
	var loaded []string
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, EnvFile)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

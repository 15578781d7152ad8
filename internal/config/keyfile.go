package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// KeyEnv names the variable holding the settings encryption key.
const KeyEnv = "THENUMBER_DB_KEY"

// KeyFilePath returns the .env file that stores the encryption key.
func KeyFilePath() string {
	return filepath.Join(Dir(), ".env")
}

// EnsureKey returns the settings encryption key. The process environment wins;
// otherwise the key is read from the .env file, and generated into it with
// generate when neither has one. Other entries in the file are preserved.
func EnsureKey(generate func() (string, error)) (string, error) {
	if key := os.Getenv(KeyEnv); key != "" {
		return key, nil
	}

	path := KeyFilePath()
	env, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading key file: %w", err)
		}
		env = map[string]string{}
	}
	if key := env[KeyEnv]; key != "" {
		return key, nil
	}

	key, err := generate()
	if err != nil {
		return "", err
	}
	env[KeyEnv] = key

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := godotenv.Write(env, path); err != nil {
		return "", fmt.Errorf("writing key file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("securing key file: %w", err)
	}
	return key, nil
}

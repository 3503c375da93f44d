package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/diillson/led-sales-tracker-go/internal/domain/repository"
)

// EnvCredentialStore grava credenciais no arquivo .env, preservando as outras chaves.
type EnvCredentialStore struct {
	path string
}

// NewEnvCredentialStore returns a store backed by the env file at path.
func NewEnvCredentialStore(path string) repository.CredentialStore {
	return &EnvCredentialStore{path: path}
}

// Save merges values into the env file; existing keys are replaced, not duplicated.
func (s *EnvCredentialStore) Save(values map[string]string) error {
	current, err := godotenv.Read(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", s.path, err)
		}
		current = map[string]string{}
	}

	for k, v := range values {
		current[k] = v
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	content, err := godotenv.Marshal(current)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	return writePrivate(s.path, []byte(content+"\n"))
}

// writePrivate grava via arquivo temporário 0600 + rename: o conteúdo nunca
// fica legível por outros, nem se o arquivo antigo tinha permissões abertas.
func writePrivate(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("restricting %s: %w", tmp.Name(), err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

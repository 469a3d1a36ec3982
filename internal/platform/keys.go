package platform

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const keySize = 32

// sessionKey returns explicit when set. Otherwise the key stored under
// systemPath is loaded, or generated and stored. An empty systemPath
// yields a process-local key.
func sessionKey(systemPath string, explicit []byte) ([]byte, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	if systemPath == "" {
		return randomKey()
	}

	path := filepath.Join(systemPath, keyFile)
	data, err := os.ReadFile(path)
	if err == nil {
		key, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil || len(key) < keySize {
			return nil, fmt.Errorf("corrupt session key %s", path)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read session key: %w", err)
	}

	key, err := randomKey()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(systemPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create system dir: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(hex.EncodeToString(key)+"\n"))); err != nil {
		return nil, fmt.Errorf("failed to write session key: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return nil, fmt.Errorf("failed to restrict session key: %w", err)
	}
	return key, nil
}

func randomKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	return key, nil
}

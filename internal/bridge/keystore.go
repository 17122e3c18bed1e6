package bridge

import (
	"os"
	"strings"
	"sync"

	"github.com/petasbytes/dora-assist/internal/logging"
)

// KeyStore holds the provider API key shared between the UI and the worker.
// The worker reads it at every request, so a change applies to the next call.
type KeyStore struct {
	mu  sync.RWMutex
	key string
}

// Set replaces the key. An empty value clears it.
func (k *KeyStore) Set(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.key = strings.TrimSpace(key)
}

func (k *KeyStore) APIKey() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.key
}

// LoadFromEnv sets the key from the named environment variable if present.
// A missing variable is not an error; the user can still supply a key later.
func (k *KeyStore) LoadFromEnv(name string, log logging.Logger) bool {
	if log == nil {
		log = logging.NoOpLogger{}
	}
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		log.Info("api key not found in environment", "env", name)
		return false
	}
	k.Set(v)
	log.Info("api key loaded from environment", "env", name)
	return true
}

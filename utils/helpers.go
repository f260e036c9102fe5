package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
)

// GetEnv returns the value of the environment variable or the supplied
// default when it is unset or empty.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// CreateFolder creates the folder (and parents) if it does not exist yet.
func CreateFolder(path string) error {
	if path == "" {
		return nil
	}
	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("path exists but is not a directory: %s", path)
	}
	return os.MkdirAll(path, 0755)
}

// GenerateUniqueID returns a random 32-bit identifier used to build
// collision-resistant file and record names.
func GenerateUniqueID() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// fall back to the pid; uniqueness here is best-effort
		return uint32(os.Getpid())
	}
	return binary.BigEndian.Uint32(buf[:])
}

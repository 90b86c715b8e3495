package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.mqchat.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mqchat")
}

// Dir returns the directory holding one identity's daemon state.
func Dir(identity string) string {
	return filepath.Join(BaseDir(), "sessions", identity)
}

// SocketPath returns the UDS socket path for an identity.
func SocketPath(identity string) string {
	return filepath.Join(Dir(identity), "daemon.sock")
}

// LogDirName is the log subdirectory of a state directory.
const LogDirName = "logs"

// LogPath returns the daemon log file path.
func LogPath(identity string) string {
	return filepath.Join(Dir(identity), LogDirName, "mqchatd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates a state directory and its log subdirectory, readable
// only by the owner.
func EnsureDir(dir string) error {
	dirs := []string{
		dir,
		filepath.Join(dir, LogDirName),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}

package osutil

import (
	"errors"
	"os"
	"path/filepath"
)

// NormalizeCommand has very similar semantics to NormalizeFilePath, except
// the path is only absoluted if it exists on the filesystem, so that a bare
// shell command (e.g. "make test") passed via --config-style flags isn't
// mistaken for a file reference.
func NormalizeCommand(commandPath string) (string, error) {
	if commandPath == "" {
		return "", nil
	}

	commandPath, err := ExpandHome(os.ExpandEnv(commandPath))
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(commandPath); err == nil {
		abs, err := filepath.Abs(commandPath)
		if err != nil {
			return "", err
		}
		commandPath = abs
	}

	return commandPath, nil
}

// NormalizeFilePath cleans and absolutes path, expanding environment
// variables and a leading "~/" against the user's home directory.
func NormalizeFilePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	path, err := ExpandHome(os.ExpandEnv(path))
	if err != nil {
		return "", err
	}

	return filepath.Abs(path)
}

// ExpandHome expands a leading "~" in path to the current user's home
// directory, via UserHomeDir. A path not prefixed with "~" is returned
// unchanged.
func ExpandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	if len(path) > 1 && path[1] != '/' && path[1] != '\\' {
		return "", errors.New("cannot expand user-specific home dir")
	}

	home, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}

package utils

import "os"

func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

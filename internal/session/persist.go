package session

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenFile = "token"
	themeFile = "theme"
)

// FileStore persists the token and theme preference under the state
// directory. Files are plain text, one value per file.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created
// lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Token reads the persisted token. A missing file is an empty token,
// not an error.
func (f *FileStore) Token() string {
	return f.read(tokenFile)
}

// SaveToken writes the token with owner-only permissions.
func (f *FileStore) SaveToken(token string) error {
	return f.write(tokenFile, token)
}

// ClearToken removes the token file. Missing files are fine.
func (f *FileStore) ClearToken() error {
	return f.remove(tokenFile)
}

// Theme reads the persisted theme preference, empty if never set.
func (f *FileStore) Theme() string {
	return f.read(themeFile)
}

// SaveTheme writes the theme preference.
func (f *FileStore) SaveTheme(theme string) error {
	return f.write(themeFile, theme)
}

// ClearTheme removes the theme file. Missing files are fine.
func (f *FileStore) ClearTheme() error {
	return f.remove(themeFile)
}

func (f *FileStore) read(name string) string {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (f *FileStore) write(name, value string) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.dir, name), []byte(value+"\n"), 0o600)
}

func (f *FileStore) remove(name string) error {
	err := os.Remove(filepath.Join(f.dir, name))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

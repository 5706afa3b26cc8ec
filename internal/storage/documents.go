package storage

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind selects the folder a file lives in.
type Kind string

const (
	KindVoterID Kind = "ids"
	KindAadhaar Kind = "aadhaar"
	KindPhoto   Kind = "photos"
	KindSymbol  Kind = "symbols"
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"pdf":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Upload is a user supplied file.
type Upload struct {
	Filename string
	Content  io.Reader
}

// DocumentStore keeps uploaded documents and voter photos on disk.
type DocumentStore struct {
	dirs map[Kind]string
}

func NewDocumentStore(voterIDDir, aadhaarDir, photoDir, symbolDir string) (*DocumentStore, error) {
	s := &DocumentStore{dirs: map[Kind]string{
		KindVoterID: voterIDDir,
		KindAadhaar: aadhaarDir,
		KindPhoto:   photoDir,
		KindSymbol:  symbolDir,
	}}

	for kind, dir := range s.dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s folder: %w", kind, err)
		}
	}
	return s, nil
}

// Dir returns the folder for kind.
func (s *DocumentStore) Dir(kind Kind) string {
	return s.dirs[kind]
}

// SaveUpload writes u under a randomized, sanitized name
// (<6 random chars><tag><original name>) and returns that name.
func (s *DocumentStore) SaveUpload(kind Kind, tag string, u Upload) (string, error) {
	filename := SecureFilename(randomString(6) + tag + u.Filename)
	if filename == "" {
		return "", fmt.Errorf("unusable filename %q", u.Filename)
	}

	path := filepath.Join(s.dirs[kind], filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(f, u.Content); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return filename, nil
}

// PhotoFilename is the deterministic photo name for a voter.
func PhotoFilename(voterID int64) string {
	return fmt.Sprintf("voter_%d.jpg", voterID)
}

// StagePhoto writes the voter's photo under a temporary name in the photo
// directory. The staged file becomes the voter's photo only through
// CommitPhoto; callers Remove it on failure.
func (s *DocumentStore) StagePhoto(voterID int64, data []byte) (string, error) {
	f, err := os.CreateTemp(s.dirs[KindPhoto], fmt.Sprintf("voter_%d_*.tmp", voterID))
	if err != nil {
		return "", fmt.Errorf("stage photo: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write photo: %w", err)
	}
	return filepath.Base(f.Name()), nil
}

// CommitPhoto renames a staged photo to the voter's photo name.
func (s *DocumentStore) CommitPhoto(voterID int64, staged string) (string, error) {
	filename := PhotoFilename(voterID)
	dir := s.dirs[KindPhoto]
	if err := os.Rename(filepath.Join(dir, filepath.Base(staged)), filepath.Join(dir, filename)); err != nil {
		return "", fmt.Errorf("commit photo: %w", err)
	}
	return filename, nil
}

// Remove deletes a stored file. Empty names and missing files are ignored.
func (s *DocumentStore) Remove(kind Kind, filename string) error {
	if filename == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dirs[kind], filepath.Base(filename)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// AllowedExtension reports whether filename ends in png, jpg, jpeg or pdf.
func AllowedExtension(filename string) bool {
	if filename == "" {
		return false
	}
	idx := strings.LastIndex(filename, ".")
	return allowedExtensions[strings.ToLower(filename[idx+1:])]
}

// SecureFilename flattens a user supplied name to ASCII letters, digits,
// '_', '-' and '.', with no path separators and no leading or trailing dots
// or underscores.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	name = b.String()

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

func randomString(n int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	out := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		idx, _ := rand.Int(rand.Reader, max)
		out[i] = charset[idx.Int64()]
	}
	return string(out)
}

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	root := t.TempDir()
	s, err := NewDocumentStore(
		filepath.Join(root, "ids"),
		filepath.Join(root, "aadhaar"),
		filepath.Join(root, "photos"),
		filepath.Join(root, "symbols"),
	)
	require.NoError(t, err)
	return s
}

func TestSecureFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{"__init__.py", "init__.py"},
		{"...", ""},
		{"abc123idscan (1).pdf", "abc123idscan_1.pdf"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SecureFilename(tc.in), tc.in)
	}
}

func TestAllowedExtension(t *testing.T) {
	for _, name := range []string{"a.png", "a.JPG", "scan.jpeg", "doc.pdf", "x.tar.pdf"} {
		assert.True(t, AllowedExtension(name), name)
	}
	for _, name := range []string{"", "a.gif", "noext", "a.pdf.exe"} {
		assert.False(t, AllowedExtension(name), name)
	}
}

func TestDocumentStore_SaveUpload(t *testing.T) {
	s := newTestStore(t)

	name, err := s.SaveUpload(KindVoterID, "id", Upload{Filename: "card scan.png", Content: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Len(t, name, len("xxxxxxidcard_scan.png"))
	assert.True(t, strings.HasSuffix(name, "idcard_scan.png"))

	data, err := os.ReadFile(filepath.Join(s.Dir(KindVoterID), name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	other, err := s.SaveUpload(KindVoterID, "id", Upload{Filename: "card scan.png", Content: strings.NewReader("x")})
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}

func TestDocumentStore_PhotoAndRemove(t *testing.T) {
	s := newTestStore(t)

	staged, err := s.StagePhoto(42, []byte("jpeg"))
	require.NoError(t, err)
	assert.NotEqual(t, "voter_42.jpg", staged)
	assert.FileExists(t, filepath.Join(s.Dir(KindPhoto), staged))
	assert.NoFileExists(t, filepath.Join(s.Dir(KindPhoto), "voter_42.jpg"))

	name, err := s.CommitPhoto(42, staged)
	require.NoError(t, err)
	assert.Equal(t, "voter_42.jpg", name)
	assert.NoFileExists(t, filepath.Join(s.Dir(KindPhoto), staged))

	path := filepath.Join(s.Dir(KindPhoto), name)
	assert.FileExists(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, s.Remove(KindPhoto, name))
	assert.NoFileExists(t, path)

	// missing files and empty names are not errors
	assert.NoError(t, s.Remove(KindPhoto, name))
	assert.NoError(t, s.Remove(KindPhoto, ""))
}

func TestDocumentStore_StagedPhotoLeavesCurrentPhoto(t *testing.T) {
	s := newTestStore(t)
	current := filepath.Join(s.Dir(KindPhoto), "voter_7.jpg")
	require.NoError(t, os.WriteFile(current, []byte("enrolled"), 0o644))

	staged, err := s.StagePhoto(7, []byte("retry"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(KindPhoto, staged))

	data, err := os.ReadFile(current)
	require.NoError(t, err)
	assert.Equal(t, "enrolled", string(data))
}

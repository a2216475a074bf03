package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-assistant-go/internal/apperr"
	"meeting-assistant-go/internal/logger"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(filepath.Join(t.TempDir(), "uploads"), logger.Discard())
	require.NoError(t, err)
	return l
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "standup.wav", want: "standup.wav"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\me\call.mp3`, want: "call.mp3"},
		{in: " notes.m4a ", want: "notes.m4a"},
		{in: "", wantErr: true},
		{in: "..", wantErr: true},
		{in: "/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanName(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSave_WritesUnderBaseName(t *testing.T) {
	l := newLocal(t)

	u, err := l.Save("../standup.wav", strings.NewReader("audio bytes"))
	require.NoError(t, err)

	assert.Equal(t, "standup.wav", u.Name)
	assert.Equal(t, filepath.Join(l.Dir(), "standup.wav"), u.Path)
	assert.EqualValues(t, len("audio bytes"), u.Size)

	b, err := os.ReadFile(u.Path)
	require.NoError(t, err)
	assert.Equal(t, "audio bytes", string(b))

	entries, err := os.ReadDir(l.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestSave_FailedWriteLeavesNothing(t *testing.T) {
	l := newLocal(t)

	_, err := l.Save("standup.wav", failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client went away")

	entries, err := os.ReadDir(l.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_RollbackRemovesFile(t *testing.T) {
	l := newLocal(t)
	u, err := l.Save("standup.wav", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, u.Rollback())
	assert.NoFileExists(t, u.Path)
	require.NoError(t, u.Rollback(), "second rollback is a no-op")
}

func TestUpload_CommitKeepsFile(t *testing.T) {
	l := newLocal(t)
	u, err := l.Save("standup.wav", strings.NewReader("x"))
	require.NoError(t, err)

	u.Commit()
	require.NoError(t, u.Rollback())
	assert.FileExists(t, u.Path)
}

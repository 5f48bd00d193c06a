package repositories

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiskStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func TestNewDiskStore_CreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewDiskStore(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDiskStore_SaveOpenRoundTrip(t *testing.T) {
	store := newDiskStore(t)
	ctx := context.Background()
	content := []byte("meeting notes from thursday")

	size, err := store.Save(ctx, "m1", "m1_abc.txt", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	src, openSize, err := store.Open(ctx, "m1", "m1_abc.txt")
	require.NoError(t, err)
	defer src.Close()

	got, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), openSize)
}

func TestDiskStore_SaveCreatesMeetingDirLazily(t *testing.T) {
	store := newDiskStore(t)
	meetingDir := filepath.Join(store.Root(), "m1")

	_, err := os.Stat(meetingDir)
	require.True(t, os.IsNotExist(err))

	_, err = store.Save(context.Background(), "m1", "m1_a.bin", bytes.NewReader([]byte{1}))
	require.NoError(t, err)

	info, err := os.Stat(meetingDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDiskStore_OpenMissingFile(t *testing.T) {
	store := newDiskStore(t)

	_, _, err := store.Open(context.Background(), "m1", "nope.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDiskStore_Delete(t *testing.T) {
	store := newDiskStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "m1", "m1_a.txt", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "m1", "m1_a.txt"))

	_, _, err = store.Open(ctx, "m1", "m1_a.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)

	// The emptied meeting directory stays in place.
	info, err := os.Stat(filepath.Join(store.Root(), "m1"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDiskStore_DeleteMissingFileFails(t *testing.T) {
	store := newDiskStore(t)

	err := store.Delete(context.Background(), "m1", "nope.txt")
	assert.Error(t, err)
}

func TestDiskStore_DeleteMeeting(t *testing.T) {
	store := newDiskStore(t)
	ctx := context.Background()

	names := []string{"m1_a.txt", "m1_b.txt", "m1_c.txt"}
	for _, name := range names {
		_, err := store.Save(ctx, "m1", name, bytes.NewReader([]byte("x")))
		require.NoError(t, err)
	}

	result, err := store.DeleteMeeting(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, result.Outcomes, len(names))
	for _, o := range result.Outcomes {
		assert.True(t, o.Deleted, "expected %s to be deleted", o.FileName)
	}
	assert.Empty(t, result.Failed())

	_, err = os.Stat(filepath.Join(store.Root(), "m1"))
	assert.True(t, os.IsNotExist(err), "meeting directory should be gone")
}

func TestDiskStore_DeleteMeetingMissing(t *testing.T) {
	store := newDiskStore(t)

	_, err := store.DeleteMeeting(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrMeetingNotFound)

	entries, readErr := os.ReadDir(store.Root())
	require.NoError(t, readErr)
	assert.Empty(t, entries, "storage root must be untouched")
}

func TestDiskStore_DeleteMeetingWithNestedDir(t *testing.T) {
	store := newDiskStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "m1", "m1_a.txt", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	// A non-empty nested directory cannot be unlinked by the non-recursive purge.
	nested := filepath.Join(store.Root(), "m1", "nested")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "inner.txt"), []byte("x"), 0644))

	result, err := store.DeleteMeeting(ctx, "m1")
	assert.ErrorIs(t, err, ErrPartialDelete)
	require.NotNil(t, result)
	assert.Equal(t, []string{"nested"}, result.Failed())

	// The meeting directory stays; the plain file is already gone and not restored.
	_, statErr := os.Stat(filepath.Join(store.Root(), "m1"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(store.Root(), "m1", "m1_a.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDiskStore_RejectsTraversal(t *testing.T) {
	store := newDiskStore(t)
	ctx := context.Background()

	for _, tc := range []struct{ meetingID, fileName string }{
		{"..", "secret.txt"},
		{"m1", "../secret.txt"},
		{"m1", "a/b.txt"},
		{"", "a.txt"},
		{"m1", ""},
	} {
		_, err := store.FilePath(tc.meetingID, tc.fileName)
		assert.Error(t, err, "meetingID=%q fileName=%q", tc.meetingID, tc.fileName)

		_, err = store.Save(ctx, tc.meetingID, tc.fileName, bytes.NewReader([]byte("x")))
		assert.Error(t, err)
	}

	_, err := store.DeleteMeeting(ctx, "..")
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestDiskStore_FileURL(t *testing.T) {
	store := newDiskStore(t)

	r := httptest.NewRequest(http.MethodGet, "http://example.com/api/upload", nil)
	url := store.FileURL(r, "m1", "m1_a.txt")
	assert.Equal(t, "http://example.com/uploads/m1/m1_a.txt", url)

	r.Header.Set("X-Forwarded-Proto", "https")
	url = store.FileURL(r, "m1", "m1_a.txt")
	assert.Equal(t, "https://example.com/uploads/m1/m1_a.txt", url)
}

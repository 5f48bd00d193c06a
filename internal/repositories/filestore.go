package repositories

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DiskStore keeps meeting files on the local filesystem under an injected
// storage root. Meeting directories are created lazily on first upload.
type DiskStore struct {
	root string
}

// NewDiskStore creates the storage root if missing and returns a store over it.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Root returns the storage root directory.
func (ds *DiskStore) Root() string {
	return ds.root
}

// FilePath resolves a meeting/file pair to its on-disk path. Path segments
// containing separators or ".." are rejected to keep lookups inside the root.
func (ds *DiskStore) FilePath(meetingID, fileName string) (string, error) {
	if !validSegment(meetingID) || !validSegment(fileName) {
		return "", ErrFileNotFound
	}
	return filepath.Join(ds.root, meetingID, fileName), nil
}

func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\")
}

func (ds *DiskStore) Save(_ context.Context, meetingID, fileName string, src io.Reader) (int64, error) {
	dstPath, err := ds.FilePath(meetingID, fileName)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return 0, err
	}
	dst, err := os.Create(dstPath)
	if err != nil {
		return 0, err
	}
	defer dst.Close()

	return io.Copy(dst, src)
}

func (ds *DiskStore) Open(_ context.Context, meetingID, fileName string) (io.ReadCloser, int64, error) {
	path, err := ds.FilePath(meetingID, fileName)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrFileNotFound
		}
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (ds *DiskStore) Delete(_ context.Context, meetingID, fileName string) error {
	path, err := ds.FilePath(meetingID, fileName)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// DeleteMeeting lists the meeting directory non-recursively, unlinks every
// entry concurrently, and removes the directory once it is empty. The purge
// is not transactional: on partial failure the directory stays and the
// result reports which files went.
func (ds *DiskStore) DeleteMeeting(_ context.Context, meetingID string) (*PurgeResult, error) {
	if !validSegment(meetingID) {
		return nil, ErrMeetingNotFound
	}
	dir := filepath.Join(ds.root, meetingID)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ErrMeetingNotFound
	}

	result := &PurgeResult{
		MeetingID: meetingID,
		Outcomes:  make([]FileOutcome, len(entries)),
	}

	var g errgroup.Group
	for i, entry := range entries {
		g.Go(func() error {
			outcome := FileOutcome{FileName: entry.Name()}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				outcome.Error = err.Error()
			} else {
				outcome.Deleted = true
			}
			result.Outcomes[i] = outcome
			if !outcome.Deleted {
				return ErrPartialDelete
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, ErrPartialDelete
	}

	if err := os.Remove(dir); err != nil {
		return result, ErrRemoveDir
	}
	return result, nil
}

func (ds *DiskStore) FileURL(r *http.Request, meetingID, fileName string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return fmt.Sprintf("%s://%s/uploads/%s/%s", scheme, r.Host, meetingID, fileName)
}

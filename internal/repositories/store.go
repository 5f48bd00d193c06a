package repositories

import (
	"context"
	"errors"
	"io"
	"net/http"
)

var (
	// ErrFileNotFound is returned by Open when the requested file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrMeetingNotFound is returned by DeleteMeeting when the meeting's
	// storage cannot be listed (including non-existence).
	ErrMeetingNotFound = errors.New("meeting not found")
	// ErrPartialDelete is returned by DeleteMeeting when one or more file
	// deletions failed. Already-deleted files are not restored.
	ErrPartialDelete = errors.New("some files could not be deleted")
	// ErrRemoveDir is returned by DeleteMeeting when every file was deleted
	// but removing the meeting directory itself failed.
	ErrRemoveDir = errors.New("meeting directory could not be removed")
)

// FileOutcome records the result of one file deletion within a meeting purge.
type FileOutcome struct {
	FileName string `json:"fileName"`
	Deleted  bool   `json:"deleted"`
	Error    string `json:"error,omitempty"`
}

// PurgeResult reports per-file outcomes of a meeting purge. The purge is not
// transactional: on partial failure the outcomes say exactly which files went.
type PurgeResult struct {
	MeetingID string        `json:"meetingId"`
	Outcomes  []FileOutcome `json:"outcomes"`
}

// Failed returns the names of files whose deletion failed.
func (p *PurgeResult) Failed() []string {
	var failed []string
	for _, o := range p.Outcomes {
		if !o.Deleted {
			failed = append(failed, o.FileName)
		}
	}
	return failed
}

// Store persists meeting files (local disk or an S3-compatible bucket).
// Files live in per-meeting namespaces; a namespace exists only by virtue of
// the files under it, there is no separate registry.
type Store interface {
	// Save writes src fully under the meeting's namespace and returns the
	// byte count. A failed write may leave a truncated file behind.
	Save(ctx context.Context, meetingID, fileName string, src io.Reader) (int64, error)
	// Open returns the file's content stream and size. The caller closes it.
	Open(ctx context.Context, meetingID, fileName string) (io.ReadCloser, int64, error)
	// Delete removes a single file. Deleting a missing file is an error.
	Delete(ctx context.Context, meetingID, fileName string) error
	// DeleteMeeting removes every file in the meeting's namespace and then
	// the namespace itself. Deletions run concurrently.
	DeleteMeeting(ctx context.Context, meetingID string) (*PurgeResult, error)
	// FileURL returns the absolute URL a client can fetch the file from.
	FileURL(r *http.Request, meetingID, fileName string) string
}

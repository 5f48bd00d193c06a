package models

// StoredFile describes an uploaded file as returned to clients. Nothing here
// is persisted as metadata; the stored bytes plus the generated name on disk
// are the only record.
type StoredFile struct {
	FileName     string `json:"fileName"`     // generated "<meetingId>_<uuid><ext>"
	OriginalName string `json:"originalName"` // client-supplied name, response only
	FileURL      string `json:"fileUrl"`      // absolute retrieval URL
	FileType     string `json:"fileType"`     // MIME type as declared by the client
	FileSize     int64  `json:"fileSize"`     // bytes written
	MeetingID    string `json:"meetingId"`
}

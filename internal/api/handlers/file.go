package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rohits-web03/meetdrop/internal/models"
	"github.com/rohits-web03/meetdrop/internal/repositories"
	"github.com/rohits-web03/meetdrop/internal/utils"
)

const maxUploadSize = 50 << 20 // 50 MiB

// maxFormOverhead is the slack allowed on top of the file bytes for multipart
// boundaries, part headers, and the meetingId field, so a file of exactly
// maxUploadSize still fits in the request.
const maxFormOverhead = 1 << 20

// DefaultMeetingID buckets uploads that carry no meetingId field.
const DefaultMeetingID = "default"

// FileHandler serves the upload, download, and delete endpoints over an
// injected store.
type FileHandler struct {
	store repositories.Store
}

func NewFileHandler(store repositories.Store) *FileHandler {
	return &FileHandler{store: store}
}

// UploadResponse is the upload success body.
type UploadResponse struct {
	Message string `json:"message"`
	models.StoredFile
}

// POST /api/upload
// UploadFile godoc
// @Summary Upload a file into a meeting's namespace
// @Description Stores a single file (≤50 MiB) under the given meetingId and returns its retrieval URL
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param meetingId formData string false "Meeting namespace (defaults to \"default\")"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} utils.ErrorBody
// @Failure 500 {object} utils.ErrorBody
// @Router /api/upload [post]
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	// Reject oversized requests before the body is read; MaxBytesReader
	// backstops chunked uploads that carry no Content-Length. The file part
	// itself is checked against maxUploadSize after the parse.
	if r.ContentLength > maxUploadSize+maxFormOverhead {
		utils.JSONError(w, http.StatusBadRequest, "File too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+maxFormOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.JSONError(w, http.StatusBadRequest, "File too large")
			return
		}
		utils.JSONError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		utils.JSONError(w, http.StatusBadRequest, "File too large")
		return
	}

	meetingID := r.FormValue("meetingId")
	if meetingID == "" {
		meetingID = DefaultMeetingID
	}

	fileName := utils.GenerateFileName(meetingID, header.Filename)

	size, err := h.store.Save(r.Context(), meetingID, fileName, file)
	if err != nil {
		log.Printf("upload of %q to meeting %q failed: %v", header.Filename, meetingID, err)
		utils.JSONError(w, http.StatusInternalServerError, "File upload failed")
		return
	}

	utils.JSONResponse(w, http.StatusOK, UploadResponse{
		Message: "File uploaded successfully",
		StoredFile: models.StoredFile{
			FileName:     fileName,
			OriginalName: header.Filename,
			FileURL:      h.store.FileURL(r, meetingID, fileName),
			FileType:     header.Header.Get("Content-Type"),
			FileSize:     size,
			MeetingID:    meetingID,
		},
	})
}

// GET /uploads/{meetingId}/{file}
// ServeUpload statically serves a stored file by its meeting/name pair.
// Anyone who knows the pair may fetch it; the storage root is public by
// design, but only exact pairs resolve (no listing, no traversal).
func (h *FileHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingId")
	fileName := r.PathValue("file")

	if ds, ok := h.store.(*repositories.DiskStore); ok {
		path, err := ds.FilePath(meetingID, fileName)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		// Only regular files resolve; ServeFile would otherwise render a
		// directory listing for a nested directory.
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
		return
	}

	src, size, err := h.store.Open(r.Context(), meetingID, fileName)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer src.Close()

	w.Header().Set("Content-Type", contentTypeFor(fileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	_, _ = io.Copy(w, src)
}

// GET /api/download/{meetingId}/{filename}
// DownloadFile godoc
// @Summary Download a stored file as an attachment
// @Tags Files
// @Produce octet-stream
// @Param meetingId path string true "Meeting namespace"
// @Param filename path string true "Stored file name"
// @Success 200 {file} file
// @Failure 404 {object} utils.ErrorBody
// @Router /api/download/{meetingId}/{filename} [get]
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingId")
	fileName := r.PathValue("filename")

	src, size, err := h.store.Open(r.Context(), meetingID, fileName)
	if err != nil {
		if errors.Is(err, repositories.ErrFileNotFound) {
			utils.JSONError(w, http.StatusNotFound, "File not found")
			return
		}
		log.Printf("download of %s/%s failed: %v", meetingID, fileName, err)
		utils.JSONError(w, http.StatusInternalServerError, "File download failed")
		return
	}
	defer src.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Type", contentTypeFor(fileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	_, _ = io.Copy(w, src)
}

// DELETE /api/files/{meetingId}/{filename}
// DeleteFile godoc
// @Summary Delete a single stored file
// @Tags Files
// @Produce json
// @Param meetingId path string true "Meeting namespace"
// @Param filename path string true "Stored file name"
// @Success 200 {object} utils.MessageBody
// @Failure 500 {object} utils.ErrorBody
// @Router /api/files/{meetingId}/{filename} [delete]
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingId")
	fileName := r.PathValue("filename")

	if err := h.store.Delete(r.Context(), meetingID, fileName); err != nil {
		log.Printf("delete of %s/%s failed: %v", meetingID, fileName, err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.MessageBody{Message: "File deleted successfully"})
}

// DELETE /api/meeting-files/{meetingId}
// DeleteMeetingFiles godoc
// @Summary Delete every file in a meeting's namespace
// @Description Removes all stored files for the meeting and the namespace itself. Not transactional: a partial failure leaves the remainder in place.
// @Tags Files
// @Produce json
// @Param meetingId path string true "Meeting namespace"
// @Success 200 {object} utils.MessageBody
// @Failure 404 {object} utils.ErrorBody
// @Failure 500 {object} utils.ErrorBody
// @Router /api/meeting-files/{meetingId} [delete]
func (h *FileHandler) DeleteMeetingFiles(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingId")

	result, err := h.store.DeleteMeeting(r.Context(), meetingID)
	switch {
	case errors.Is(err, repositories.ErrMeetingNotFound):
		utils.JSONError(w, http.StatusNotFound, "Meeting directory not found")
	case errors.Is(err, repositories.ErrPartialDelete):
		log.Printf("purge of meeting %q left files behind: %v", meetingID, result.Failed())
		utils.JSONError(w, http.StatusInternalServerError, "Failed to delete some files")
	case errors.Is(err, repositories.ErrRemoveDir):
		log.Printf("purge of meeting %q could not remove directory: %v", meetingID, err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to remove meeting directory")
	case err != nil:
		utils.JSONError(w, http.StatusInternalServerError, "Failed to delete some files")
	default:
		utils.JSONResponse(w, http.StatusOK, utils.MessageBody{Message: "All meeting files deleted successfully"})
	}
}

func contentTypeFor(fileName string) string {
	if ct := mime.TypeByExtension(filepath.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

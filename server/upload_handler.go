package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"melodify/logger"
	"melodify/storage"
)

// uploadTarget describes one of the upload endpoints.
type uploadTarget struct {
	field       string // multipart field holding the file
	prefix      string // object key prefix
	bucket      string
	responseKey string
}

func (h *APIHandler) UploadAudioHandler(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, uploadTarget{field: "audio", prefix: "audio", bucket: h.cfg.AudioBucket, responseKey: "audio_url"})
}

func (h *APIHandler) UploadReelAudioHandler(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, uploadTarget{field: "audio", prefix: "reel", bucket: h.cfg.ReelAudioBucket, responseKey: "audio_url"})
}

func (h *APIHandler) UploadCoverHandler(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, uploadTarget{field: "cover", prefix: "cover", bucket: h.cfg.CoverBucket, responseKey: "cover_url"})
}

// handleUpload buffers the file in memory, stores it under
// <prefix>_<epochMillis><ext> and returns its public URL.
func (h *APIHandler) handleUpload(w http.ResponseWriter, r *http.Request, target uploadTarget) {
	missing := badRequest(fmt.Sprintf("No %s file uploaded", target.field))

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32MB max memory
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, r, badRequest(fmt.Sprintf("File too large, limit is %d bytes", tooLarge.Limit)))
		case errors.Is(err, http.ErrNotMultipart):
			writeError(w, r, missing)
		default:
			writeError(w, r, badRequest(fmt.Sprintf("Failed to parse multipart form: %v", err)))
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(target.field)
	if err != nil {
		writeError(w, r, missing)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, badRequest(fmt.Sprintf("Failed to read uploaded file: %v", err)))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	key := fmt.Sprintf("%s_%d%s", target.prefix, h.now().UnixMilli(), filepath.Ext(header.Filename))
	err = h.store.Upload(r.Context(), storage.UploadInput{
		Bucket:      target.bucket,
		Key:         key,
		Body:        data,
		ContentType: contentType,
		Upsert:      true,
	})
	if err != nil {
		writeError(w, r, internalError(err))
		return
	}

	logger.Info("[Upload] 文件上传成功",
		logger.String("bucket", target.bucket),
		logger.String("key", key),
		logger.Int("size", len(data)))
	writeJSON(w, http.StatusOK, map[string]string{target.responseKey: h.store.PublicURL(target.bucket, key)})
}

package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"fitpulse/internal/httputil"
	"fitpulse/internal/model"
	"fitpulse/internal/service"
)

// AvatarStorage is what the avatar upload needs from the media service.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, file io.Reader, size int64, contentType string) (*model.UploadResult, error)
	DeleteObject(ctx context.Context, key string) error
	KeyFromURL(url string) string
}

type MediaHandler struct {
	sessions         service.Sessions
	media            AvatarStorage // nil when R2 is not configured
	defaultAvatarURL string
}

func NewMediaHandler(sessions service.Sessions, media AvatarStorage, defaultAvatarURL string) *MediaHandler {
	return &MediaHandler{
		sessions:         sessions,
		media:            media,
		defaultAvatarURL: defaultAvatarURL,
	}
}

// UploadAvatar handles POST /onboarding/avatar/upload
// Stores the multipart "avatar" file in R2 and sets it as the onboarding avatar.
// The previously uploaded avatar, if any, is removed from the bucket.
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.media == nil {
		httputil.WriteServiceUnavailable(w, "Avatar uploads are not configured")
		return
	}
	s, ok := deviceSession(w, r, h.sessions)
	if !ok {
		return
	}

	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			httputil.WriteBadRequest(w, "avatar file is required")
			return
		}
		httputil.WriteBadRequest(w, "Invalid avatar upload")
		return
	}
	defer file.Close()

	previous := s.Onboarding.State().AvatarURL

	upload, err := h.media.UploadAvatar(r.Context(), file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif")
		default:
			log.Printf("[ERROR] Upload avatar handler: device=%s err=%v", s.DeviceID, err)
			httputil.WriteInternalError(w, "Failed to upload avatar")
		}
		return
	}

	s.Onboarding.SetAvatarURL(upload.URL)
	h.removeAvatar(r.Context(), previous)

	httputil.WriteJSON(w, http.StatusCreated, upload)
}

func (h *MediaHandler) removeAvatar(ctx context.Context, url string) {
	if url == "" || url == h.defaultAvatarURL {
		return
	}
	key := h.media.KeyFromURL(url)
	if key == "" {
		return
	}
	if err := h.media.DeleteObject(ctx, key); err != nil {
		log.Printf("[Media] Failed to delete previous avatar key=%s err=%v", key, err)
	}
}

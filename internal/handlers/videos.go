package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/models"
	"github.com/clipstream/backend/internal/repositories"
)

// VideoHandler implements the video CRUD and publish-toggle endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Channels ChannelStore
	Relay    MediaRelay
	Prober   DurationProber
	Sessions SessionManager

	UploadDir     string
	MaxUploadSize int64
	NowFunc       func() time.Time
}

// List handles GET /api/v1/videos. Supports free-text search, owner
// filtering, sorting, and pagination via query parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	opts := repositories.ListVideosOptions{
		Query:   strings.TrimSpace(r.URL.Query().Get("query")),
		OwnerID: strings.TrimSpace(r.URL.Query().Get("userId")),
		SortBy:  strings.TrimSpace(r.URL.Query().Get("sortBy")),
		Page:    queryInt(r, "page", 1),
		Limit:   queryInt(r, "limit", 10),
	}
	opts.SortDesc = strings.EqualFold(r.URL.Query().Get("sortType"), "desc")

	videos, err := h.Videos.List(ctx, opts)
	if err != nil {
		logger.Error("video listing failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "unable to list videos")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "Videos fetched successfully")
}

// Publish handles POST /api/v1/videos. The request is multipart with a
// required video file and thumbnail; duration is probed from the spooled
// file before it is relayed to the media host.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(uploadLimit(h.MaxUploadSize)); err != nil {
		logger.Warn("invalid publish payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart request body")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	videoPath, err := saveUpload(r, "videoFile", h.UploadDir)
	if err != nil {
		logger.Warn("video spool failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "unable to read video upload")
		return
	}
	if videoPath == "" {
		respondError(ctx, w, http.StatusBadRequest, "video file is required")
		return
	}

	thumbPath, err := saveUpload(r, "thumbnail", h.UploadDir)
	if err != nil {
		discardUpload(videoPath)
		logger.Warn("thumbnail spool failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "unable to read thumbnail upload")
		return
	}
	if thumbPath == "" {
		discardUpload(videoPath)
		respondError(ctx, w, http.StatusBadRequest, "thumbnail file is required")
		return
	}

	var duration float64
	if h.Prober != nil {
		probe, err := h.Prober.Inspect(ctx, videoPath)
		if err != nil {
			logger.Warn("duration probe failed", "error", err)
		} else {
			duration = probe.Duration
		}
	}

	videoAsset, err := h.Relay.Upload(ctx, videoPath)
	if err != nil {
		discardUpload(thumbPath)
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "failed to upload video file")
		return
	}

	thumbAsset, err := h.Relay.Upload(ctx, thumbPath)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "failed to upload thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     callerID,
		Title:       title,
		Description: description,
		VideoURL:    videoAsset.URL,
		Thumbnail:   thumbAsset.URL,
		Duration:    duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("video create failed", "error", err, "ownerId", callerID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to save video")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "Video published successfully")
}

// Get handles GET /api/v1/videos/{videoId}. Fetching a video bumps its view
// counter; when the caller is authenticated the watch is also appended to
// their history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := r.PathValue("videoId")
	if !validID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return
		}
		logger.Error("video lookup failed", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("failed to increment views", "error", err, "videoId", videoID)
	} else {
		video.Views++
	}

	if callerID := callerIfAuthenticated(h.Sessions, r); callerID != "" && h.Channels != nil {
		if err := h.Channels.RecordWatch(ctx, callerID, videoID); err != nil {
			logger.Warn("failed to record watch", "error", err, "videoId", videoID, "userId", callerID)
		}
	}

	respondData(ctx, w, http.StatusOK, video, "Video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{videoId}. Title and description are
// updated from the multipart fields; a new thumbnail, when present, replaces
// the old asset.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, err := h.ownedVideo(ctx, w, r.PathValue("videoId"), callerID)
	if err != nil {
		return
	}

	if err := r.ParseMultipartForm(uploadLimit(h.MaxUploadSize)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart request body")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" && description == "" && !hasFile(r, "thumbnail") {
		respondError(ctx, w, http.StatusBadRequest, "at least one of title, description, or thumbnail is required")
		return
	}

	previousThumb := ""
	thumbPath, err := saveUpload(r, "thumbnail", h.UploadDir)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "unable to read thumbnail upload")
		return
	}
	if thumbPath != "" {
		asset, err := h.Relay.Upload(ctx, thumbPath)
		if err != nil {
			logger.Error("thumbnail upload failed", "error", err)
			respondError(ctx, w, http.StatusBadRequest, "failed to upload thumbnail")
			return
		}
		previousThumb = video.Thumbnail
		video.Thumbnail = asset.URL
	}

	if title != "" {
		video.Title = title
	}
	if description != "" {
		video.Description = description
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		logger.Error("video update failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to update video")
		return
	}

	if previousThumb != "" {
		if err := h.Relay.Delete(ctx, previousThumb); err != nil {
			logger.Warn("failed to delete previous thumbnail", "error", err, "url", previousThumb)
		}
	}

	respondData(ctx, w, http.StatusOK, video, "Video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId}. Remote assets are removed
// first; a relay failure aborts the delete so the record and its assets
// stay consistent.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, err := h.ownedVideo(ctx, w, r.PathValue("videoId"), callerID)
	if err != nil {
		return
	}

	for _, url := range []string{video.VideoURL, video.Thumbnail} {
		if url == "" {
			continue
		}
		if err := h.Relay.Delete(ctx, url); err != nil {
			logger.Error("asset delete failed", "error", err, "url", url, "videoId", video.ID)
			respondError(ctx, w, http.StatusInternalServerError, "failed to delete video assets")
			return
		}
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		logger.Error("video delete failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to delete video")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "Video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/{videoId}/toggle-publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request, callerID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	video, err := h.ownedVideo(ctx, w, r.PathValue("videoId"), callerID)
	if err != nil {
		return
	}

	published, err := h.Videos.TogglePublish(ctx, video.ID)
	if err != nil {
		logger.Error("publish toggle failed", "error", err, "videoId", video.ID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to toggle publish status")
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]bool{"isPublished": published}, "Publish status toggled successfully")
}

// ownedVideo loads the video and enforces the caller-owns-it rule, writing
// the error response itself. A non-nil error means the response is already
// sent.
func (h VideoHandler) ownedVideo(ctx context.Context, w http.ResponseWriter, videoID, callerID string) (models.Video, error) {
	if !validID(videoID) {
		respondError(ctx, w, http.StatusBadRequest, "invalid video id")
		return models.Video{}, errInvalidRequest
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "video not found")
			return models.Video{}, err
		}
		logging.FromContext(ctx).Error("video lookup failed", "error", err, "videoId", videoID)
		respondError(ctx, w, http.StatusInternalServerError, "unable to load video")
		return models.Video{}, err
	}

	if err := requireOwner(callerID, video.OwnerID); err != nil {
		respondError(ctx, w, http.StatusForbidden, "you do not own this video")
		return models.Video{}, err
	}

	return video, nil
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

var errInvalidRequest = errors.New("invalid request")

// queryInt parses an integer query parameter, falling back to def for
// missing or malformed values.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// hasFile reports whether the multipart form carries a part for the field.
func hasFile(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	return len(r.MultipartForm.File[field]) > 0
}

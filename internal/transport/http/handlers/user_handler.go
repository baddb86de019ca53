package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkovacic/picstream/internal/service"
	"github.com/mkovacic/picstream/internal/transport/http/middleware"
	"github.com/mkovacic/picstream/pkg/validator"
)

const maxUploadBytes = 5 << 20 // 5MB

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Suggested(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	users, err := h.userService.Suggested(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR suggested users: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	profile, err := h.userService.Profile(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			log.Printf("ERROR profile: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile accepts multipart form data: optional bio and gender
// fields, optional avatar file.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid or oversized form data")
		return
	}

	var input service.UpdateProfileInput
	if values, ok := r.MultipartForm.Value["bio"]; ok && len(values) > 0 {
		input.Bio = &values[0]
	}
	if values, ok := r.MultipartForm.Value["gender"]; ok && len(values) > 0 {
		input.Gender = &values[0]
	}

	bio, gender := "", ""
	if input.Bio != nil {
		bio = *input.Bio
	}
	if input.Gender != nil {
		gender = *input.Gender
	}
	if errs := validator.ValidateProfile(bio, gender); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	if file, _, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		data, contentType, err := readImage(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_IMAGE", err.Error())
			return
		}
		input.Avatar = data
		input.AvatarContentType = contentType
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			log.Printf("ERROR update profile: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *UserHandler) FollowToggle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	state, err := h.userService.FollowToggle(r.Context(), userID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			writeError(w, http.StatusBadRequest, "INVALID_OPERATION", "You cannot follow yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			log.Printf("ERROR follow toggle: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"state": state})
}

// readImage buffers an uploaded file and sniffs its MIME type; only
// images are accepted.
func readImage(file io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, "", errors.New("could not read uploaded file")
	}
	if len(data) == 0 {
		return nil, "", errors.New("uploaded file is empty")
	}
	if len(data) > maxUploadBytes {
		return nil, "", errors.New("image exceeds the 5MB limit")
	}

	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return data, contentType, nil
	}
	return nil, "", errors.New("only image uploads are allowed")
}

package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/fashion"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/apierr"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/gcp"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/status"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/temporalx"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/temporalx/recommend"
)

const maxPhotoBytes = 10 << 20

// AnalyzeRequest is the intake payload for one styling session.
type AnalyzeRequest struct {
	Photo           string                  `json:"photo" binding:"required"`
	UserPreferences fashion.UserPreferences `json:"userPreferences"`
	Occasion        string                  `json:"occasion" binding:"required"`
	Quality         string                  `json:"quality,omitempty"`
	Constraints     string                  `json:"constraints,omitempty"`
	TextDescription string                  `json:"textDescription,omitempty"`
}

type AnalyzeResponse struct {
	SessionID string `json:"sessionId"`
	PhotoURL  string `json:"photoUrl"`
	Status    string `json:"status"`
}

// IntakeService accepts a photo plus preferences, stores the photo, and
// starts the recommendation workflow.
type IntakeService interface {
	StartAnalysis(ctx context.Context, userID string, req AnalyzeRequest) (*AnalyzeResponse, *apierr.Error)
}

type intakeService struct {
	log       *logger.Logger
	bucket    gcp.BucketService
	temporal  temporalsdkclient.Client
	status    status.Service
	preflight PhotoPreflight
	taskQueue string
}

func NewIntakeService(log *logger.Logger, bucket gcp.BucketService, tc temporalsdkclient.Client, statusSvc status.Service, preflight PhotoPreflight) IntakeService {
	return &intakeService{
		log:       log.With("service", "IntakeService"),
		bucket:    bucket,
		temporal:  tc,
		status:    statusSvc,
		preflight: preflight,
		taskQueue: temporalx.LoadConfig().TaskQueue,
	}
}

func (s *intakeService) StartAnalysis(ctx context.Context, userID string, req AnalyzeRequest) (*AnalyzeResponse, *apierr.Error) {
	if s.temporal == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "WORKFLOW_ENGINE_UNAVAILABLE",
			fmt.Errorf("workflow engine not configured"))
	}

	photo, err := decodePhoto(req.Photo)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "INVALID_PHOTO", err)
	}

	if s.preflight != nil {
		if err := s.preflight.Check(ctx, photo); err != nil {
			return nil, apierr.New(http.StatusUnprocessableEntity, "PHOTO_REJECTED", err)
		}
	}

	sessionID := fashion.NewSessionID(userID, time.Now())
	uploadKey := fashion.UploadKey(sessionID)
	if err := s.bucket.Upload(ctx, uploadKey, bytes.NewReader(photo)); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "PHOTO_UPLOAD_FAILED",
			fmt.Errorf("store photo: %w", err))
	}
	photoURL := s.bucket.PublicURL(uploadKey)

	s.status.Set(ctx, sessionID, status.Pending, "", "")

	input := recommend.WorkflowInput{
		UserID:          userID,
		SessionID:       sessionID,
		PhotoURL:        photoURL,
		UserPreferences: req.UserPreferences,
		Occasion:        req.Occasion,
		Quality:         req.Quality,
		Constraints:     req.Constraints,
		TextDescription: req.TextDescription,
	}
	_, err = s.temporal.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        sessionID,
		TaskQueue: s.taskQueue,
	}, recommend.WorkflowName, input)
	if err != nil {
		s.status.Set(ctx, sessionID, status.Failed, "", err.Error())
		return nil, apierr.New(http.StatusInternalServerError, "WORKFLOW_START_FAILED",
			fmt.Errorf("start workflow: %w", err))
	}

	s.log.Info("analysis started", "user_id", userID, "session_id", sessionID, "occasion", req.Occasion)
	return &AnalyzeResponse{SessionID: sessionID, PhotoURL: photoURL, Status: status.Pending}, nil
}

// decodePhoto accepts a raw base64 payload or a data URL and returns the image
// bytes.
func decodePhoto(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("empty photo payload")
	}
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 {
			return nil, fmt.Errorf("malformed data url")
		}
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty photo payload")
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}
	return data, nil
}

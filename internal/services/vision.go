package services

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/envutil"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/gcp"
	"github.com/AshleyDelph84/fashion-designer-ai/internal/platform/logger"
)

// PhotoPreflight screens an uploaded photo before a workflow is started.
// ErrPhotoRejected wraps the reason when the photo cannot be styled.
type PhotoPreflight interface {
	Check(ctx context.Context, photo []byte) error
}

type ErrPhotoRejected struct {
	Reason string
}

func (e *ErrPhotoRejected) Error() string {
	return fmt.Sprintf("photo rejected: %s", e.Reason)
}

type visionPreflight struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

// NewPhotoPreflight builds the Cloud Vision preflight, or returns (nil, nil)
// when FASHION_VISION_PREFLIGHT is off. Callers treat a nil preflight as a
// pass-through.
func NewPhotoPreflight(ctx context.Context, log *logger.Logger) (PhotoPreflight, error) {
	if !envutil.Bool("FASHION_VISION_PREFLIGHT", false) {
		return nil, nil
	}
	client, err := vision.NewImageAnnotatorClient(ctx, gcp.ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &visionPreflight{log: log.With("service", "PhotoPreflight"), client: client}, nil
}

func (v *visionPreflight) Check(ctx context.Context, photo []byte) error {
	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: photo},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_FACE_DETECTION, MaxResults: 5},
				{Type: visionpb.Feature_SAFE_SEARCH_DETECTION},
			},
		}},
	})
	if err != nil {
		// Availability of the screen must not block intake.
		v.log.Warn("Vision preflight unavailable; skipping", "error", err)
		return nil
	}
	if len(resp.Responses) == 0 {
		return nil
	}
	r := resp.Responses[0]
	if r.Error != nil {
		v.log.Warn("Vision preflight errored; skipping", "error", r.Error.Message)
		return nil
	}

	if ss := r.SafeSearchAnnotation; ss != nil {
		if likely(ss.Adult) || likely(ss.Violence) || likely(ss.Racy) {
			return &ErrPhotoRejected{Reason: "photo failed content screening"}
		}
	}
	if len(r.FaceAnnotations) == 0 {
		return &ErrPhotoRejected{Reason: "no person detected in photo"}
	}
	return nil
}

func likely(l visionpb.Likelihood) bool {
	return l == visionpb.Likelihood_LIKELY || l == visionpb.Likelihood_VERY_LIKELY
}

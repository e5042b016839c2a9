// Package rekognition classifies food photos with AWS Rekognition label
// detection, as an alternative to the Clarifai model.
package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/healthbite/backend/internal/foodid"
	"github.com/healthbite/backend/internal/upstream"
	"github.com/sirupsen/logrus"
)

// DetectLabelsAPI is the subset of the Rekognition client the classifier uses.
type DetectLabelsAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

type Classifier struct {
	api           DetectLabelsAPI
	maxLabels     int32
	minConfidence float32
	logger        *logrus.Logger
}

func New(api DetectLabelsAPI, logger *logrus.Logger) *Classifier {
	return &Classifier{
		api:           api,
		maxLabels:     10,
		minConfidence: 50,
		logger:        logger,
	}
}

// NewFromRegion loads the default AWS credential chain for region. SDK
// retries are disabled; the pipeline's stage runner owns the retry budget.
func NewFromRegion(ctx context.Context, region string, logger *logrus.Logger) (*Classifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryMaxAttempts(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(rekognition.NewFromConfig(cfg), logger), nil
}

// Classify implements foodid.Classifier. Rekognition reports confidence as a
// percentage; it is scaled to [0,1].
func (c *Classifier) Classify(ctx context.Context, image []byte) ([]foodid.Candidate, error) {
	out, err := c.api.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(c.maxLabels),
		MinConfidence: aws.Float32(c.minConfidence),
	})
	if err != nil {
		if retryable(err) {
			return nil, fmt.Errorf("rekognition DetectLabels failed: %w: %w", upstream.ErrTransient, err)
		}
		return nil, fmt.Errorf("rekognition DetectLabels failed: %w", err)
	}

	candidates := make([]foodid.Candidate, 0, len(out.Labels))
	for _, label := range out.Labels {
		if label.Name == nil {
			continue
		}
		candidates = append(candidates, foodid.Candidate{
			Label:      *label.Name,
			Confidence: float64(aws.ToFloat32(label.Confidence)) / 100,
		})
	}

	c.logger.WithField("labels", len(candidates)).Debug("Rekognition labels received")
	return candidates, nil
}

// retryable applies the SDK's own classification: throttling, 5xx and
// connection errors.
func retryable(err error) bool {
	if retry.IsErrorThrottles(retry.DefaultThrottles).IsErrorThrottle(err) == aws.TrueTernary {
		return true
	}
	return retry.IsErrorRetryables(retry.DefaultRetryables).IsErrorRetryable(err) == aws.TrueTernary
}

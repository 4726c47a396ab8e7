package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// AlertSender notifies an account holder about security events
type AlertSender interface {
	SendLockoutAlert(ctx context.Context, email, name string, lockedUntil time.Time) error
}

// AWSSESAlertService sends security alerts using AWS SES
type AWSSESAlertService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESAlertService creates a new AWS SES alert service
func NewAWSSESAlertService(region, fromAddress string, logger *slog.Logger) (*AWSSESAlertService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESAlertService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendLockoutAlert tells the account holder their account was just locked
// after repeated failures.
func (s *AWSSESAlertService) SendLockoutAlert(ctx context.Context, email, name string, lockedUntil time.Time) error {
	textBody := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your account was temporarily locked after repeated failed sign-in attempts.\n"+
			"It will unlock automatically at %s.\n\n"+
			"If these attempts were not yours, contact your administrator.\n",
		name, lockedUntil.Format(time.RFC1123))

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String("Security alert: account temporarily locked"),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send lockout alert: %w", err)
	}

	s.logger.Info("lockout alert sent")
	return nil
}

// NoopAlertService is used when email alerts are disabled
type NoopAlertService struct{}

func (NoopAlertService) SendLockoutAlert(ctx context.Context, email, name string, lockedUntil time.Time) error {
	return nil
}

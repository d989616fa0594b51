// Package mailer is the notification side channel. Delivery is best-effort:
// nothing here feeds back into booking state.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/cloudnativeg23/stadium-matching/pkg/logger"
)

const sendTimeout = 5 * time.Second

// Notifier delivers a templated message to a list of recipients.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, subject, body string) error
}

// SESNotifier sends mail through AWS SESv2.
type SESNotifier struct {
	client *sesv2.Client
	sender string
}

// NewSESNotifier initializes an SES notifier using static credentials.
func NewSESNotifier(accessKeyID, secretAccessKey, region, sender string) (*SESNotifier, error) {
	if accessKeyID == "" || secretAccessKey == "" || region == "" {
		return nil, fmt.Errorf("ses credentials and region are required")
	}
	if sender == "" {
		return nil, fmt.Errorf("ses sender is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESNotifier{
		client: sesv2.NewFromConfig(awsCfg),
		sender: sender,
	}, nil
}

// Notify delivers one message to all recipients.
func (n *SESNotifier) Notify(ctx context.Context, recipients []string, subject, body string) error {
	if n == nil || n.client == nil {
		return fmt.Errorf("ses notifier is not initialized")
	}
	if len(recipients) == 0 {
		return nil
	}

	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: recipients,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(body)},
				},
			},
		},
		FromEmailAddress: aws.String(n.sender),
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		logger.L().Error("failed to send email",
			zap.Strings("recipients", recipients),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NoopNotifier drops every message. Used when mail is not configured and in
// tests.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, recipients []string, subject, body string) error {
	return nil
}

// NotifyAsync fires the notification in the background, detached from the
// handler-scoped context so an early client disconnect doesn't abort the
// send. Errors are logged, never surfaced: dispatch happens strictly after
// the booking transaction committed, so there is no state to roll back.
func NotifyAsync(ctx context.Context, n Notifier, recipients []string, subject, body string) {
	if n == nil || len(recipients) == 0 {
		return
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if err := n.Notify(sendCtx, recipients, subject, body); err != nil {
			logger.L().Warn("notification dispatch failed", zap.Error(err))
		}
	}()
}

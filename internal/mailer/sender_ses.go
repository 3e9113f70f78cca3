package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/clinicore/contact-api/internal/config"
)

// SESSender delivers mail through AWS SES using the SDK v2.
type SESSender struct {
	client *sesv2.Client
}

// NewSESSender creates an SES sender. Initializes the AWS SDK client if
// credentials are provided; otherwise Verify/Send report ErrNotConfigured.
func NewSESSender(cfg config.EmailConfig) *SESSender {
	sender := &SESSender{}

	if cfg.SESAccessKey != "" && cfg.SESSecretKey != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.SESRegion),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.SESAccessKey, cfg.SESSecretKey, "")),
		)
		if err != nil {
			log.Printf("[SES] Warning: Failed to initialize AWS config: %v", err)
		} else {
			sender.client = sesv2.NewFromConfig(awsCfg)
		}
	}
	return sender
}

// Verify only checks static configuration; SES has no cheap pre-flight and
// credential problems surface on the first send.
func (s *SESSender) Verify(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("%w: SES credentials missing", ErrNotConfigured)
	}
	return nil
}

// Send delivers a single email through AWS SES.
func (s *SESSender) Send(ctx context.Context, msg *Message) error {
	if s.client == nil {
		return fmt.Errorf("%w: SES credentials missing", ErrNotConfigured)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", msg.FromName, msg.From)),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if strings.Contains(err.Error(), "InvalidClientTokenId") || strings.Contains(err.Error(), "SignatureDoesNotMatch") {
			return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	log.Printf("[SES] Sent %q to %s (id: %s)", msg.Subject, msg.To, aws.ToString(result.MessageId))
	return nil
}

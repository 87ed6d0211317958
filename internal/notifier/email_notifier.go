package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	config "github.com/Keoroanthony/go-storefront/configs"
)

type Email struct {
	To      []string
	ReplyTo []string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// sesAPI is the part of the SES client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	client sesAPI
	sender string
}

func NewSESMailer(ctx context.Context, cfg config.EmailConfig) (*SESMailer, error) {
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email address is not configured in environment variables")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return &SESMailer{client: ses.NewFromConfig(awsCfg), sender: cfg.SenderEmail}, nil
}

func newSESMailer(client sesAPI, sender string) *SESMailer {
	return &SESMailer{client: client, sender: sender}
}

func content(s string) *types.Content {
	return &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(s)}
}

func (m *SESMailer) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 || email.To[0] == "" {
		return errors.New("recipient email address is empty")
	}

	body := &types.Body{Text: content(email.Text)}
	if email.HTML != "" {
		body.Html = content(email.HTML)
	}

	input := &ses.SendEmailInput{
		Source:           aws.String(m.sender),
		Destination:      &types.Destination{ToAddresses: email.To},
		ReplyToAddresses: email.ReplyTo,
		Message: &types.Message{
			Subject: content(email.Subject),
			Body:    body,
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		log.Printf("Failed to send email %q to %v: %v", email.Subject, email.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email %q sent to %v", email.Subject, email.To)
	return nil
}

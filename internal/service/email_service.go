package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends transactional email via Amazon SES. When no sender
// address is configured the service runs disabled and skips every send.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail sends the post-signup welcome email
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Email service disabled, skipping welcome email to %s", toEmail)
		return nil
	}

	subject := "Welcome to Magizh Quiz"
	htmlBody := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your Magizh Quiz account is ready. Create a deck, add some cards
		and start a study session to begin learning.</p>
		<p><a href="%s">Open Magizh Quiz</a></p>
	`, toName, s.appBaseURL)
	textBody := fmt.Sprintf(
		"Welcome, %s!\n\nYour Magizh Quiz account is ready. Visit %s to start learning.\n",
		toName, s.appBaseURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

// SendStreakReminderEmail nudges a user whose streak is about to lapse
func (s *EmailService) SendStreakReminderEmail(ctx context.Context, toEmail, toName string, currentStreak int) error {
	if !s.enabled {
		log.Printf("Email service disabled, skipping streak reminder to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("Keep your %d-day streak alive", currentStreak)
	htmlBody := fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your %d-day learning streak ends at midnight. Complete today's
		challenge to keep it going.</p>
		<p><a href="%s">Take today's challenge</a></p>
	`, toName, currentStreak, s.appBaseURL)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nYour %d-day learning streak ends at midnight. Visit %s to complete today's challenge.\n",
		toName, currentStreak, s.appBaseURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
					Text: &types.Content{Data: aws.String(textBody)},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	log.Printf("Sent email to %s: %s", toEmail, subject)
	return nil
}

// utils/email.go
package utils

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/gomail.v2"
)

// SendEmail delivers a plain-text email through the SendGrid SMTP relay.
// Delivery failures are the caller's to log; no workflow ever fails because
// an email did not go out.
func SendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = "smtp.sendgrid.net"
	}
	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	apiKey := os.Getenv("SENDGRID_API_KEY")

	// SendGrid SMTP authenticates with the literal username "apikey"
	d := gomail.NewDialer(smtpHost, smtpPort, "apikey", apiKey)
	return d.DialAndSend(emailMessage(to, subject, body))
}

// emailMessage addresses one message to one recipient. Callers fanning out
// to several recipients send one message each; a joined recipient list is
// not a parseable address and the send fails.
func emailMessage(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("EMAIL_FROM"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// ReminderTier identifies which pre-expiry reminder is being sent
type ReminderTier string

const (
	ReminderSevenDay ReminderTier = "sevenDay"
	ReminderThreeDay ReminderTier = "threeDay"
	ReminderOneDay   ReminderTier = "oneDay"
)

// ReminderEmailBody builds the tiered-urgency reminder text
func ReminderEmailBody(fullName, planName string, endDate time.Time, tier ReminderTier) (subject, body string) {
	dateStr := endDate.Format("January 2, 2006")
	switch tier {
	case ReminderSevenDay:
		subject = "Your membership renews in 7 days"
		body = fmt.Sprintf("Hi %s,\n\nYour %s membership is valid until %s. Renew any time from your account page to keep your access uninterrupted.\n\nStay strong,\nThe GymFit Team", fullName, planName, dateStr)
	case ReminderThreeDay:
		subject = "3 days left on your membership"
		body = fmt.Sprintf("Hi %s,\n\nOnly 3 days left: your %s membership expires on %s. Renew now so you don't miss a session.\n\nStay strong,\nThe GymFit Team", fullName, planName, dateStr)
	case ReminderOneDay:
		subject = "Last day! Your membership expires tomorrow"
		body = fmt.Sprintf("Hi %s,\n\nThis is your final reminder: your %s membership expires on %s. Renew today to keep your access.\n\nStay strong,\nThe GymFit Team", fullName, planName, dateStr)
	}
	return subject, body
}

// GracePeriodEmailBody builds the notification sent when a membership slips
// into its grace window.
func GracePeriodEmailBody(fullName, planName string, gracePeriodEnd time.Time) (subject, body string) {
	subject = "Your membership has expired - grace period active"
	body = fmt.Sprintf("Hi %s,\n\nYour %s membership has expired. You have until %s to renew before your access is removed.\n\nStay strong,\nThe GymFit Team",
		fullName, planName, gracePeriodEnd.Format("January 2, 2006 15:04 MST"))
	return subject, body
}

// TerminationEmailBody builds the one-time email after the grace window ends.
func TerminationEmailBody(fullName, planName string) (subject, body string) {
	subject = "Your membership has ended"
	body = fmt.Sprintf("Hi %s,\n\nYour %s membership and its grace period have ended, and your member access has been removed. We'd love to have you back - browse our plans any time.\n\nThe GymFit Team", fullName, planName)
	return subject, body
}

// ConfirmationEmailBody builds the payment confirmation email.
func ConfirmationEmailBody(fullName, planName string, endDate time.Time, renewal bool) (subject, body string) {
	if renewal {
		subject = "Membership renewed - welcome back!"
		body = fmt.Sprintf("Hi %s,\n\nYour %s membership has been renewed. Your new access window runs until %s.\n\nSee you at the gym,\nThe GymFit Team", fullName, planName, endDate.Format("January 2, 2006"))
	} else {
		subject = "Welcome to GymFit - membership active"
		body = fmt.Sprintf("Hi %s,\n\nYour payment went through and your %s membership is now active until %s. Your member QR pass is available on your account page.\n\nSee you at the gym,\nThe GymFit Team", fullName, planName, endDate.Format("January 2, 2006"))
	}
	return subject, body
}

// SendEmailAsync fires an email in the background, logging failure.
func SendEmailAsync(to, subject, body string) {
	go func() {
		if err := SendEmail(to, subject, body); err != nil {
			log.Printf("Failed to send email to %s: %v", to, err)
		}
	}()
}

package utils

import (
	"edumitra/config"
	"fmt"
	"log"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers a single HTML email through Sendgrid. When no API key
// is configured (local development, tests) the send is logged and skipped.
func SendEmail(to []string, subject string, htmlBody string) error {
	if config.AppConfig == nil || config.AppConfig.SendgridApiKey == "" {
		log.Printf("[EMAIL] Sendgrid not configured, skipping send to %v (subject: %s)", to, subject)
		return nil
	}

	from := sgmail.NewEmail(config.AppConfig.EmailFromName, config.AppConfig.EmailSender)
	for _, recipient := range to {
		message := sgmail.NewSingleEmail(from, subject, sgmail.NewEmail("", recipient), "", htmlBody)
		client := sendgrid.NewSendClient(config.AppConfig.SendgridApiKey)
		response, err := client.Send(message)
		if err != nil {
			log.Printf("[EMAIL] Error sending to %s: %v", recipient, err)
			return err
		}
		if response.StatusCode >= 400 {
			log.Printf("[EMAIL] Sendgrid rejected send to %s: %d %s", recipient, response.StatusCode, response.Body)
			return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
		}
	}
	return nil
}

// HTML wrapper shared by all outgoing mail
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
			.content h2 { color: #1A237E; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #FFB300; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>EDUMITRA</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 EduMitra Learning. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// SendWelcomeEmail greets a newly registered student.
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to EduMitra"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>EduMitra</strong>! Your account has been created successfully.</p>
		<p>Browse our catalogue and enroll in your first course to get started.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// SendEnrollmentEmail confirms a new enrollment.
func SendEnrollmentEmail(email, name, courseTitle string, accessExpiry time.Time) {
	subject := "Enrollment Confirmed: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have successfully enrolled in <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Access valid until:</strong> %s
		</div>
		<p>Head to your dashboard to start learning.</p>
	`, name, courseTitle, accessExpiry.Format("January 2, 2006"))

	go SendEmail([]string{email}, subject, getEmailTemplate("Enrollment Successful", body))
}

// SendMembershipEmail confirms a membership purchase or renewal.
func SendMembershipEmail(email, name, tier string, endDate time.Time) {
	subject := "Your EduMitra " + tier + " Membership"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your <strong>%s</strong> membership is active until <strong>%s</strong>.</p>
		<p>Enjoy your member benefits across the platform.</p>
	`, name, tier, endDate.Format("January 2, 2006"))

	go SendEmail([]string{email}, subject, getEmailTemplate("Membership Confirmed", body))
}

// SendExpiryReminderEmail warns that access is about to lapse.
func SendExpiryReminderEmail(email, name, what string, expiresAt time.Time) {
	subject := fmt.Sprintf("Your %s is expiring soon", what)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your <strong>%s</strong> expires on <strong>%s</strong>.</p>
		<p>Renew before then to keep your access uninterrupted.</p>
	`, name, what, expiresAt.Format("January 2, 2006"))

	go SendEmail([]string{email}, subject, getEmailTemplate("Expiring Soon", body))
}

// SendPaymentReceiptEmail acknowledges a completed payment.
func SendPaymentReceiptEmail(email, name string, amount float64, currency string) {
	subject := "Payment Received"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We have received your payment of <strong>%s %.2f</strong>.</p>
		<p>Thank you for learning with EduMitra.</p>
	`, name, currency, amount)

	go SendEmail([]string{email}, subject, getEmailTemplate("Payment Confirmed", body))
}

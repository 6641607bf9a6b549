package utils

import (
	"coursemanager/config"
	"fmt"
	"html"
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendEmail delivers through SendGrid, or prints the message when no API key is configured
func SendEmail(to []string, subject string, htmlBody string) error {
	cfg := config.AppConfig
	if cfg == nil || cfg.SendgridAPIKey == "" {
		log.Printf("[EMAIL] (console) to=%v subject=%q\n%s", to, subject, htmlBody)
		return nil
	}

	p := sgmail.NewPersonalization()
	p.Subject = subject
	for _, addr := range to {
		p.AddTos(sgmail.NewEmail("", addr))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("Course Manager", cfg.EmailSender))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", htmlBody))

	req := sendgrid.GetRequest(cfg.SendgridAPIKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		log.Printf("[EMAIL] sending %q to %v: %v", subject, to, err)
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		log.Printf("[EMAIL] sending %q to %v: status %d body %s", subject, to, res.StatusCode, res.Body)
		return fmt.Errorf("sendgrid returned status %d", res.StatusCode)
	}
	log.Printf("[EMAIL] sent %q to %v", subject, to)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F3A5F; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4A90D9; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>COURSE MANAGER</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">This is an automated message, please do not reply.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

func SendWelcomeEmail(email, username string) {
	go SendEmail([]string{email}, "Welcome to Course Manager", getEmailTemplate("Welcome!", welcomeBody(username)))
}

func SendEnrollmentEmail(email, username, courseTitle string) {
	go SendEmail([]string{email}, "Enrolled: "+courseTitle, getEmailTemplate("New Enrollment", enrollmentBody(username, courseTitle)))
}

func SendCourseCompletedEmail(email, username, courseTitle string) {
	go SendEmail([]string{email}, "Course completed: "+courseTitle, getEmailTemplate("Course Completed", courseCompletedBody(username, courseTitle)))
}

// User supplied names are escaped before they reach the HTML body.

func welcomeBody(username string) string {
	return fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account has been created. You can now sign in, browse courses and enroll.</p>
	`, html.EscapeString(username))
}

func enrollmentBody(username, courseTitle string) string {
	return fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You have been enrolled in <strong>%s</strong>.</p>
		<div class="info-box">Open the course to see its lessons, quizzes and attendance sessions.</div>
	`, html.EscapeString(username), html.EscapeString(courseTitle))
}

func courseCompletedBody(username, courseTitle string) string {
	return fmt.Sprintf(`
		<p>Congratulations %s,</p>
		<p>You have completed every lesson of <strong>%s</strong>.</p>
	`, html.EscapeString(username), html.EscapeString(courseTitle))
}

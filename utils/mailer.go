package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"numrenohacks/config"
)

type EmailData struct {
	Subject   string
	To        []string
	Template  string
	Data      interface{}
	FromName  string
	FromEmail string
}

// Embedded email templates
var emailTemplates = map[string]string{
	"registration_confirmation": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #c41e3a 0%, #165b33 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .team-id { background: #fff; border-left: 4px solid #c41e3a; padding: 15px; margin: 20px 0; font-size: 18px; font-weight: bold; color: #c41e3a; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd; }
    </style>
</head>
<body>
    <div class="header">
        <h1>🎄 NumrenoHacks 2025 🎅</h1>
        <p>Registration Confirmed!</p>
    </div>

    <div class="content">
        <h2>Welcome, {{.TeamLeadName}}! 🎉</h2>

        <p>Congratulations! Your team <strong>{{.TeamName}}</strong> has been successfully registered for NumrenoHacks 2025.</p>

        <div class="team-id">
            Your Team ID: {{.TeamID}}
        </div>

        <p><strong>What happens next?</strong></p>
        <ul>
            <li>Our team will review your registration</li>
            <li>You'll receive a status update within 24-48 hours</li>
            <li>Check your dashboard for real-time status updates</li>
            <li>Approved teams will receive further instructions via email</li>
        </ul>

        <p><strong>Login credentials:</strong></p>
        <ul>
            <li><strong>Email:</strong> {{.TeamEmail}}</li>
            <li><strong>Password:</strong> Your registered phone number</li>
        </ul>
    </div>

    <div class="footer">
        <p>NumrenoHacks 2025 - The Most Wonderful Hackathon of the Year</p>
        <p>© {{.Year}} NumrenoHacks. All rights reserved.</p>
    </div>
</body>
</html>`,

	"status_update": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #165b33 0%, #c41e3a 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .status { background: #fff; border-left: 4px solid {{.StatusColor}}; padding: 15px; margin: 20px 0; font-size: 18px; font-weight: bold; color: {{.StatusColor}}; text-transform: uppercase; }
        .footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd; }
    </style>
</head>
<body>
    <div class="header">
        <h1>🎄 NumrenoHacks 2025 🎅</h1>
        <p>Registration Status Update</p>
    </div>

    <div class="content">
        <h2>Hello, {{.TeamLeadName}}!</h2>

        <p>There is an update on your team <strong>{{.TeamName}}</strong> (Team ID: {{.TeamID}}):</p>

        <div class="status">
            Status: {{.Status}}
        </div>

        {{if .Approved}}
        <p>Congratulations! Your team is in. Watch your inbox for event instructions and check the dashboard for the schedule.</p>
        {{else}}
        <p>You can log in to your dashboard at any time to see the latest state of your registration.</p>
        {{end}}
    </div>

    <div class="footer">
        <p>NumrenoHacks 2025 - The Most Wonderful Hackathon of the Year</p>
        <p>© {{.Year}} NumrenoHacks. All rights reserved.</p>
    </div>
</body>
</html>`,
}

func SendEmail(data EmailData) error {
	if data.FromEmail == "" {
		data.FromEmail = config.AppConfig.FromEmail
	}
	if data.FromName == "" {
		data.FromName = config.AppConfig.FromName
	}

	body, err := RenderEmailTemplate(data.Template, data.Data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", data.FromName, data.FromEmail))
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

// RenderEmailTemplate executes one of the embedded templates.
func RenderEmailTemplate(name string, data interface{}) (string, error) {
	tmplContent, ok := emailTemplates[name]
	if !ok {
		return "", fmt.Errorf("template '%s' not found", name)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("error parsing template: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}

// SendConfirmationEmail notifies a team lead that their registration went
// through. Callers treat failure as best-effort: log it, never fail the
// registration over it.
func SendConfirmationEmail(teamEmail, teamName, teamID, teamLeadName string) error {
	data := EmailData{
		Subject:  "🎄 Registration Confirmed - NumrenoHacks 2025",
		To:       []string{teamEmail},
		Template: "registration_confirmation",
		Data: struct {
			Subject      string
			TeamLeadName string
			TeamName     string
			TeamID       string
			TeamEmail    string
			Year         int
		}{
			Subject:      "Registration Confirmed",
			TeamLeadName: teamLeadName,
			TeamName:     teamName,
			TeamID:       teamID,
			TeamEmail:    teamEmail,
			Year:         time.Now().Year(),
		},
	}

	return SendEmail(data)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SendStatusEmail notifies a team lead about an admin review decision.
// Best-effort like the confirmation email.
func SendStatusEmail(teamEmail, teamName, teamID, teamLeadName, status string) error {
	statusColor := "#c41e3a"
	approved := strings.EqualFold(status, "approved")
	if approved {
		statusColor = "#165b33"
	}

	data := EmailData{
		Subject:  fmt.Sprintf("🎄 Registration %s - NumrenoHacks 2025", titleCase(status)),
		To:       []string{teamEmail},
		Template: "status_update",
		Data: struct {
			Subject      string
			TeamLeadName string
			TeamName     string
			TeamID       string
			Status       string
			StatusColor  string
			Approved     bool
			Year         int
		}{
			Subject:      "Registration Status Update",
			TeamLeadName: teamLeadName,
			TeamName:     teamName,
			TeamID:       teamID,
			Status:       status,
			StatusColor:  statusColor,
			Approved:     approved,
			Year:         time.Now().Year(),
		},
	}

	return SendEmail(data)
}

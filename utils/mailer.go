package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"startupops/config"
)

type EmailData struct {
	Subject   string
	To        []string
	Template  string
	Data      interface{}
	Year      int
	FromName  string
	FromEmail string
}

// Embedded email templates
var emailTemplates = map[string]string{
	"access_granted": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .startup-name { font-size: 20px; font-weight: bold; color: #3498db; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>You've been granted access</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>A founder has granted you {{.Flavor}} access to their startup:</p>

        <p class="startup-name">{{.StartupName}}</p>

        <p>Log in to your dashboard to review their profile, tasks and milestones.</p>
    </div>

    <div class="footer">
        <p>If you weren't expecting this, you can ignore this email.</p>
        <p>&copy; {{.Year}} StartupOps. All rights reserved.</p>
    </div>
</body>
</html>`,

	"team_welcome": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .startup-name { font-size: 20px; font-weight: bold; color: #27ae60; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Welcome to the team</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>You've been added to the team of:</p>

        <p class="startup-name">{{.StartupName}}</p>

        <p>Head over to your dashboard to see the tasks and milestones waiting for you.</p>
    </div>

    <div class="footer">
        <p>&copy; {{.Year}} StartupOps. All rights reserved.</p>
    </div>
</body>
</html>`,
}

func SendEmail(data EmailData) error {
	// Set default from address if not provided
	if data.FromEmail == "" {
		data.FromEmail = config.AppConfig.FromEmail
	}
	if data.FromName == "" {
		data.FromName = config.AppConfig.FromName
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	// Get template from embedded templates
	tmplContent, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("template '%s' not found", data.Template)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("error parsing template: %v", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return fmt.Errorf("error executing template: %v", err)
	}

	smtpPort, err := strconv.Atoi(config.AppConfig.SMTPPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", data.FromName, data.FromEmail))
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		smtpPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}

func SendAccessGrantedEmail(email, startupName, flavor string) error {
	data := EmailData{
		Subject:  "You've been granted startup access",
		To:       []string{email},
		Template: "access_granted",
		Data: struct {
			Subject     string
			StartupName string
			Flavor      string
			Year        int
		}{
			Subject:     "You've been granted startup access",
			StartupName: startupName,
			Flavor:      flavor,
			Year:        time.Now().Year(),
		},
	}

	return SendEmail(data)
}

func SendTeamWelcomeEmail(email, startupName string) error {
	data := EmailData{
		Subject:  "Welcome to the team",
		To:       []string{email},
		Template: "team_welcome",
		Data: struct {
			Subject     string
			StartupName string
			Year        int
		}{
			Subject:     "Welcome to the team",
			StartupName: startupName,
			Year:        time.Now().Year(),
		},
	}

	return SendEmail(data)
}

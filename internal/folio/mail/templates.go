package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// Message is a rendered email ready to be sent or logged.
type Message struct {
	To      string
	Subject string
	HTML    string
	// Link is the action URL embedded in the body, empty for notices.
	Link string
}

const (
	SubjectVerification    = "Verify Your Email Address - Developer Portfolio"
	SubjectPasswordReset   = "Password Reset Request - Developer Portfolio"
	SubjectPasswordChanged = "Password Changed Successfully - Developer Portfolio"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "verification"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Welcome to Developer Portfolio!</h2>
  <p>Thank you for registering. Please verify your email address by clicking the button below:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.Link}}" style="background-color: #007bff; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email Address</a>
  </div>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">{{.Link}}</p>
  <p style="color: #666; font-size: 14px;">This verification link will expire in {{.Expiry}}. If you didn't create this account, please ignore this email.</p>
</div>{{end}}

{{define "password_reset"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Password Reset Request</h2>
  <p>You requested to reset your password. Click the button below to set a new password:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.Link}}" style="background-color: #dc3545; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
  </div>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">{{.Link}}</p>
  <p style="color: #666; font-size: 14px;">This reset link will expire in {{.Expiry}}. If you didn't request this reset, please ignore this email and your password will remain unchanged.</p>
</div>{{end}}

{{define "password_changed"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Password Changed Successfully</h2>
  <p>Your password has been successfully changed.</p>
  <p style="color: #666; font-size: 14px;">If you didn't make this change, please contact support immediately.</p>
</div>{{end}}
`))

type templateData struct {
	Link   string
	Expiry string
}

// Composer renders account emails with links into the frontend.
type Composer struct {
	// FrontendURL is the base for action links, without trailing slash.
	FrontendURL        string
	VerificationExpiry string
	ResetExpiry        string
}

func (c Composer) link(path, token string) string {
	base := strings.TrimRight(c.FrontendURL, "/")
	return base + path + "?token=" + url.QueryEscape(token)
}

func (c Composer) Verification(to, token string) (Message, error) {
	link := c.link("/verify-email", token)
	body, err := render("verification", templateData{Link: link, Expiry: orDefault(c.VerificationExpiry, "24 hours")})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: SubjectVerification, HTML: body, Link: link}, nil
}

func (c Composer) PasswordReset(to, token string) (Message, error) {
	link := c.link("/reset-password", token)
	body, err := render("password_reset", templateData{Link: link, Expiry: orDefault(c.ResetExpiry, "1 hour(s)")})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: SubjectPasswordReset, HTML: body, Link: link}, nil
}

func (c Composer) PasswordChanged(to string) (Message, error) {
	body, err := render("password_changed", templateData{})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: SubjectPasswordChanged, HTML: body}, nil
}

func render(name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", name, err)
	}
	return buf.String(), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

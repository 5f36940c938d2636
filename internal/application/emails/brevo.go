package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoContact   `json:"sender"`
	To          []BrevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type BrevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender sends transactional emails. A nil Sender means email is disabled.
type Sender interface {
	SendInvite(ctx context.Context, toEmail, inviteLink, orgName, inviterRole, message string) error
}

// BrevoClient sends emails via the Brevo (Sendinblue) API.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string // defaults to the Brevo v3 endpoint
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@codm.social"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body, err := json.Marshal(BrevoSendRequest{
		Sender:      BrevoContact{Email: c.from(), Name: "CODM Social"},
		To:          []BrevoContact{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendInvite sends the organization invite email.
func (c *BrevoClient) SendInvite(ctx context.Context, toEmail, inviteLink, orgName, inviterRole, message string) error {
	if c.APIKey == "" {
		return nil
	}
	subject := fmt.Sprintf("You have been invited to join %s", orgName)
	return c.send(ctx, toEmail, subject, EmailLayout(invitationContent(inviteLink, orgName, inviterRole, message)))
}

func invitationContent(inviteLink, orgName, inviterRole, message string) string {
	note := ""
	if message != "" {
		note = fmt.Sprintf("\n    <p><em>&ldquo;%s&rdquo;</em></p>", EscapeHTML(message))
	}
	return fmt.Sprintf(`
    <h1>You've been invited to join %s</h1>
    <p>A %s of <strong>%s</strong> invited you to join their organization on CODM Social.</p>%s
    <p><a href="%s" class="cta">Accept invitation</a></p>
    <p>This invitation expires in 7 days. If you were not expecting it you can ignore this email.</p>
`, EscapeHTML(orgName), EscapeHTML(inviterRole), EscapeHTML(orgName), note, EscapeHTML(inviteLink))
}

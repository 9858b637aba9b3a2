package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/cinetro/internal/config"
	"github.com/jon4hz/cinetro/internal/database"
	mail "github.com/xhit/go-simple-mail/v2"
)

// NotificationService sends the emails triggered by contact form submissions.
type NotificationService struct {
	config   *config.EmailConfig
	siteName string
	// send delivers a rendered email, replaced in tests.
	send func(to, subject, body string) error
}

// contactData is the data passed to the contact templates.
type contactData struct {
	SiteName string
	Message  database.ContactMessage
}

// New creates a new email notification service.
func New(cfg *config.EmailConfig, siteName string) *NotificationService {
	if cfg == nil {
		cfg = &config.EmailConfig{}
	}
	n := &NotificationService{
		config:   cfg,
		siteName: siteName,
	}
	n.send = n.sendEmail
	return n
}

// Enabled reports whether emails are actually sent.
func (n *NotificationService) Enabled() bool {
	return n.config.Enabled
}

// SendContactAlert notifies the operator about a new contact message.
func (n *NotificationService) SendContactAlert(msg database.ContactMessage) error {
	if !n.config.Enabled {
		log.Debug("Email notifications are disabled, skipping contact alert")
		return nil
	}

	subject := fmt.Sprintf("New Contact Form Submission from %s", msg.Name)
	return n.render(n.config.OperatorEmail, subject, "contact_alert.html", msg)
}

// SendContactAcknowledgement thanks the sender of a contact message.
func (n *NotificationService) SendContactAcknowledgement(msg database.ContactMessage) error {
	if !n.config.Enabled {
		log.Debug("Email notifications are disabled, skipping contact acknowledgement")
		return nil
	}

	if msg.Email == "" {
		log.Warn("Sender email is empty, skipping acknowledgement", "name", msg.Name)
		return nil
	}

	subject := fmt.Sprintf("Thank you for contacting %s", n.siteName)
	return n.render(msg.Email, subject, "contact_ack.html", msg)
}

func (n *NotificationService) render(to, subject, name string, msg database.ContactMessage) error {
	body, err := generateEmailBody(name, contactData{SiteName: n.siteName, Message: msg})
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}
	return n.send(to, subject, body)
}

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05 MST")
	},
}

// generateEmailBody creates the HTML email body.
func generateEmailBody(name string, data any) (string, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// sendEmail sends an email using go-simple-mail library.
func (n *NotificationService) sendEmail(to, subject, body string) error {
	// Create SMTP server configuration
	server := mail.NewSMTPClient()
	server.Host = n.config.SMTPHost
	server.Port = n.config.SMTPPort
	server.Username = n.config.Username
	server.Password = n.config.Password

	// Configure encryption
	if n.config.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if n.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	if n.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	email := mail.NewMSG()

	fromName := n.config.FromName
	if fromName == "" {
		fromName = n.siteName
	}
	email.SetFrom(fmt.Sprintf("%s <%s>", fromName, n.config.FromEmail))
	email.AddTo(to)
	email.SetSubject(subject)
	email.SetBody(mail.TextHTML, body)

	if email.Error != nil {
		return fmt.Errorf("failed to build email: %w", email.Error)
	}

	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email sent", "to", to, "subject", subject)
	return nil
}

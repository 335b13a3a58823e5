package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/pkg/events"
)

//go:embed templates/*.html
var templateFS embed.FS

var approvedTmpl = template.Must(template.ParseFS(templateFS, "templates/approved.html"))

type approvedData struct {
	Name        string
	SiteName    string
	LoginURL    string
	ContactMail string
}

// Notifier turns approval events into welcome mails
type Notifier struct {
	sender Sender
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewNotifier creates a Notifier
func NewNotifier(sender Sender, cfg *config.MailConfig, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, cfg: cfg, logger: logger}
}

// HandleApproval mails approved alumni; rejections are acknowledged silently.
// Matches events.Handler.
func (n *Notifier) HandleApproval(ctx context.Context, evt events.ApprovalEvent) error {
	if !evt.Approved {
		n.logger.Debug("skip rejection event", zap.String("alumni_id", evt.AlumniID))
		return nil
	}
	if evt.Email == "" {
		n.logger.Warn("approval event without email", zap.String("alumni_id", evt.AlumniID))
		return nil
	}

	body, err := n.render(evt)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Your %s account has been approved", n.cfg.SiteName)
	if err := n.sender.Send(ctx, evt.Email, subject, body); err != nil {
		return fmt.Errorf("send approval mail: %w", err)
	}

	n.logger.Info("approval mail sent",
		zap.String("alumni_id", evt.AlumniID),
		zap.String("to", evt.Email),
	)
	return nil
}

func (n *Notifier) render(evt events.ApprovalEvent) (string, error) {
	var buf bytes.Buffer
	err := approvedTmpl.Execute(&buf, approvedData{
		Name:        evt.Name,
		SiteName:    n.cfg.SiteName,
		LoginURL:    strings.TrimRight(n.cfg.SiteURL, "/") + "/login",
		ContactMail: n.cfg.ContactMail,
	})
	if err != nil {
		return "", fmt.Errorf("render approval mail: %w", err)
	}
	return buf.String(), nil
}

package mailer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rakapratama/go-admin-backend/config"
	"github.com/rakapratama/go-admin-backend/pkg/mailer/templates"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
)

// MaskedPassword stands in for the real password when resending an
// invitation; the plain text is never stored, so it cannot be shown
// again.
const MaskedPassword = "********"

// Sender delivers a rendered email immediately.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// QueuePublisher hands a job to the email worker.
type QueuePublisher interface {
	PublishJSON(ctx context.Context, v any) error
}

// Notifier sends transactional mail. It reports success as a bool
// rather than an error: callers treat delivery as best effort and only
// need to know whether the user should be told the mail went out.
type Notifier struct {
	Cfg    *config.Config
	Queue  QueuePublisher // preferred when configured
	Direct Sender
	Logger *logrus.Logger
}

func NewNotifier(cfg *config.Config, queue QueuePublisher, direct Sender, logger *logrus.Logger) *Notifier {
	return &Notifier{Cfg: cfg, Queue: queue, Direct: direct, Logger: logger}
}

// SendWelcome emails login credentials to a newly created or re-invited
// user. plainPassword may be empty for resends, in which case the
// masked placeholder is shown. passwordGenerated adds the notice that
// the password must be changed on first login.
func (n *Notifier) SendWelcome(ctx context.Context, u *entity.User, plainPassword string, passwordGenerated bool) bool {
	if !n.Cfg.MailSendEnabled {
		n.Logger.WithField("to", u.Email).Info("mail sending disabled, skipping welcome email")
		return true
	}

	shown := plainPassword
	if shown == "" {
		shown = MaskedPassword
	}
	data := templates.NewWelcomeData(n.Cfg, u.Name, u.Email,
		templates.WithPassword(shown),
		templates.WithPasswordGenerated(passwordGenerated),
	)

	if n.Queue != nil {
		job := EmailJob{
			To:       u.Email,
			Subject:  n.Cfg.WelcomeSubject,
			Template: n.Cfg.WelcomeTemplate,
			Data:     templates.ToMap(data),
		}
		if err := n.Queue.PublishJSON(ctx, job); err != nil {
			n.Logger.WithError(err).WithField("to", u.Email).Warn("failed to enqueue welcome email")
			return false
		}
		return true
	}

	if n.Direct == nil {
		n.Logger.WithField("to", u.Email).Warn("no mail transport configured")
		return false
	}

	subject, text, html, err := templates.Render(n.Cfg.WelcomeTemplate, data)
	if err != nil {
		n.Logger.WithError(err).Warn("failed to render welcome email")
		return false
	}
	if n.Cfg.WelcomeSubject != "" {
		subject = n.Cfg.WelcomeSubject
	}
	if err := n.Direct.Send(ctx, u.Email, subject, text, html); err != nil {
		n.Logger.WithError(err).WithField("to", u.Email).Warn("failed to send welcome email")
		return false
	}
	return true
}

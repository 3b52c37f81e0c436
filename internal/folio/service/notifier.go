package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Mailer delivers account emails. Implementations live in internal/folio/mail.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
	SendPasswordChangedNotice(ctx context.Context, to string) error
}

const DefaultMailTimeout = 30 * time.Second

// Notifier sends mail off the request path. Failures are logged and never
// reach the caller.
type Notifier struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Timeout time.Duration

	wg sync.WaitGroup
}

func NewNotifier(mailer Mailer, logger *slog.Logger, timeout time.Duration) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultMailTimeout
	}
	return &Notifier{Mailer: mailer, Logger: logger, Timeout: timeout}
}

func (n *Notifier) VerificationEmail(to, token string) {
	n.dispatch("verification", to, func(ctx context.Context) error {
		return n.Mailer.SendVerificationEmail(ctx, to, token)
	})
}

func (n *Notifier) PasswordResetEmail(to, token string) {
	n.dispatch("password_reset", to, func(ctx context.Context) error {
		return n.Mailer.SendPasswordResetEmail(ctx, to, token)
	})
}

func (n *Notifier) PasswordChangedNotice(to string) {
	n.dispatch("password_changed", to, func(ctx context.Context) error {
		return n.Mailer.SendPasswordChangedNotice(ctx, to)
	})
}

func (n *Notifier) dispatch(kind, to string, send func(context.Context) error) {
	if n == nil || n.Mailer == nil {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.Timeout)
		defer cancel()
		if err := send(ctx); err != nil {
			n.Logger.Error("mail send failed", slog.String("kind", kind), slog.String("to", to), slog.Any("error", err))
			return
		}
		n.Logger.Debug("mail sent", slog.String("kind", kind), slog.String("to", to))
	}()
}

// Wait blocks until in-flight sends finish. Used on shutdown and in tests.
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}

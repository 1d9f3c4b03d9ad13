package application

import (
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/gomail.v2"
	"roombuddy/domain"
	"time"
)

// MailDialer is the part of gomail.Dialer the notifier needs.
type MailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// MailNotifier e-mails the hostel contact when a review is posted. Sends go
// through a circuit breaker so an unreachable SMTP server is not retried on
// every review.
type MailNotifier struct {
	dialer MailDialer
	from   string
	cb     *gobreaker.CircuitBreaker
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewMailNotifier(dialer MailDialer, from string, tracer trace.Tracer, logger *logrus.Logger) *MailNotifier {
	return &MailNotifier{
		dialer: dialer,
		from:   from,
		cb:     CircuitBreaker("reviewMailer", logger),
		tracer: tracer,
		logger: logger,
	}
}

func NewSMTPDialer(host string, port int, user, password string) *gomail.Dialer {
	return gomail.NewDialer(host, port, user, password)
}

func (notifier *MailNotifier) NotifyReview(ctx context.Context, hostel *domain.Hostel, review *domain.Review) error {
	_, span := notifier.tracer.Start(ctx, "MailNotifier.NotifyReview")
	defer span.End()

	m := reviewMessage(notifier.from, hostel, review)
	_, err := notifier.cb.Execute(func() (interface{}, error) {
		return nil, notifier.dialer.DialAndSend(m)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("send review mail: %w", err)
	}
	return nil
}

func reviewMessage(from string, hostel *domain.Hostel, review *domain.Review) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", hostel.ContactEmail)
	m.SetHeader("Subject", fmt.Sprintf("New review for %s", hostel.Name))
	m.SetBody("text/plain", fmt.Sprintf("%s rated %s %d/5:\n\n%s\n", review.Name, hostel.Name, review.Rating, review.Comment))
	return m
}

// LogNotifier records review notifications in the log when no SMTP server
// is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (notifier *LogNotifier) NotifyReview(ctx context.Context, hostel *domain.Hostel, review *domain.Review) error {
	notifier.logger.WithFields(logrus.Fields{
		"hostel": hostel.ID.Hex(),
		"to":     hostel.ContactEmail,
		"rating": review.Rating,
	}).Info("review notification")
	return nil
}

func CircuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warnf("circuit breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
		},
	)
}

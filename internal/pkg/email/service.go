package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"
)

// Template names
const (
	TemplateWelcome            = "welcome"
	TemplateRequestSubmitted   = "request_submitted"
	TemplateRequestUpdated     = "request_updated"
	TemplateOnboardingApproved = "onboarding_approved"
	TemplateOnboardingRejected = "onboarding_rejected"
)

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

type queued struct {
	to       string
	toName   string
	subject  string
	template string
	data     interface{}
}

// Service renders templates and delivers them from a background worker.
// Delivery failures are logged and never reach the caller.
type Service struct {
	transport Transport
	base      *template.Template
	templates map[string]*template.Template
	queue     chan queued
	wg        sync.WaitGroup
	disabled  bool
}

// NewService starts the delivery worker. A config without an API key
// produces a service that only logs what it would have sent.
func NewService(config SendGridConfig) *Service {
	return NewServiceWithTransport(NewSendGridClient(config), config.APIKey == "")
}

func NewServiceWithTransport(t Transport, disabled bool) *Service {
	s := &Service{
		transport: t,
		base:      template.Must(template.New("base").Parse(BaseTemplate)),
		templates: make(map[string]*template.Template),
		queue:     make(chan queued, 100),
		disabled:  disabled,
	}
	for name, body := range map[string]string{
		TemplateWelcome:            WelcomeTemplate,
		TemplateRequestSubmitted:   RequestSubmittedTemplate,
		TemplateRequestUpdated:     RequestUpdatedTemplate,
		TemplateOnboardingApproved: OnboardingApprovedTemplate,
		TemplateOnboardingRejected: OnboardingRejectedTemplate,
	} {
		s.templates[name] = template.Must(template.New(name).Parse(body))
	}

	s.wg.Add(1)
	go s.worker()
	return s
}

func (s *Service) worker() {
	defer s.wg.Done()
	for q := range s.queue {
		if err := s.deliver(context.Background(), q); err != nil {
			log.Error().Err(err).
				Str("to", q.to).
				Str("template", q.template).
				Msg("Failed to send email")
		}
	}
}

func (s *Service) render(name string, data interface{}) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return "", err
	}
	var page bytes.Buffer
	if err := s.base.Execute(&page, map[string]interface{}{"Content": template.HTML(content.String())}); err != nil {
		return "", err
	}
	return page.String(), nil
}

func (s *Service) deliver(ctx context.Context, q queued) error {
	html, err := s.render(q.template, q.data)
	if err != nil {
		return err
	}
	if s.disabled {
		log.Debug().Str("to", q.to).Str("template", q.template).Msg("Email delivery disabled, skipping")
		return nil
	}
	return s.transport.Send(ctx, &Message{
		To:          q.to,
		ToName:      q.toName,
		Subject:     q.subject,
		HTMLContent: html,
	})
}

// Queue enqueues a templated email; a full queue drops the message.
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- queued{to: to, toName: toName, subject: subject, template: templateName, data: data}:
	default:
		log.Warn().Str("to", to).Str("template", templateName).Msg("Email queue full, dropping email")
	}
}

// Close drains the queue and stops the worker.
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}

func (s *Service) SendWelcome(to, name, role, dashboardURL string) {
	s.Queue(to, name, TemplateWelcome, "Welcome to Vendora", map[string]string{
		"Name":         name,
		"Role":         role,
		"DashboardURL": dashboardURL,
	})
}

// SendRequestSubmitted tells a vendor about a new booking request.
func (s *Service) SendRequestSubmitted(to, vendorName, firstDate, requestURL string) {
	s.Queue(to, vendorName, TemplateRequestSubmitted, "New booking request", map[string]string{
		"VendorName": vendorName,
		"FirstDate":  firstDate,
		"RequestURL": requestURL,
	})
}

// SendRequestUpdated tells a counterparty that a request changed status.
func (s *Service) SendRequestUpdated(to, toName, vendorName, status, requestURL string) {
	s.Queue(to, toName, TemplateRequestUpdated, "Your booking request was updated", map[string]string{
		"Name":       toName,
		"VendorName": vendorName,
		"Status":     status,
		"RequestURL": requestURL,
	})
}

func (s *Service) SendOnboardingApproved(to, contactName, businessName, inviteURL string) {
	s.Queue(to, contactName, TemplateOnboardingApproved, "Your vendor application was approved", map[string]string{
		"ContactName":  contactName,
		"BusinessName": businessName,
		"InviteURL":    inviteURL,
	})
}

func (s *Service) SendOnboardingRejected(to, contactName, businessName, reason string) {
	s.Queue(to, contactName, TemplateOnboardingRejected, "Your vendor application", map[string]string{
		"ContactName":  contactName,
		"BusinessName": businessName,
		"Reason":       reason,
	})
}

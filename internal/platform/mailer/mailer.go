package mailer

import (
	"fmt"
	"io"
	"time"

	"github.com/2sn/starfit-server/internal/common"

	log "github.com/sirupsen/logrus"
	"gopkg.in/mail.v2"
)

// Attachment is a named file sent with a message.
type Attachment struct {
	Name string
	Data []byte
}

// Envelope describes a multipart HTML message.
type Envelope struct {
	From        string
	To          string
	Bcc         string
	Subject     string
	Headers     map[string]string
	HTMLBody    string
	Attachments []Attachment
}

// Compose builds the MIME message for e.
func Compose(e Envelope) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", e.From)
	m.SetHeader("To", e.To)
	if e.Bcc != "" {
		m.SetHeader("Bcc", e.Bcc)
	}
	m.SetHeader("Subject", e.Subject)
	m.SetDateHeader("Date", time.Now())
	for k, v := range e.Headers {
		m.SetHeader(k, v)
	}
	m.SetBody("text/html", e.HTMLBody)
	for _, a := range e.Attachments {
		data := a.Data
		m.Attach(a.Name, mail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return m
}

// Sender delivers composed messages.
type Sender interface {
	Send(m *mail.Message) error
}

// SMTP sends through a mail relay.
type SMTP struct {
	dialer *mail.Dialer
}

func NewSMTP(host string, port int, username, password, localName string) *SMTP {
	d := mail.NewDialer(host, port, username, password)
	d.LocalName = localName
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	d.Timeout = 30 * time.Second
	return &SMTP{dialer: d}
}

// Send delivers m once. Failures wrap common.ErrDelivery and are not retried.
func (s *SMTP) Send(m *mail.Message) error {
	if err := s.dialer.DialAndSend(m); err != nil {
		log.WithError(err).WithField("to", m.GetHeader("To")).Error("SMTP delivery failed")
		return fmt.Errorf("%w: %v", common.ErrDelivery, err)
	}
	return nil
}

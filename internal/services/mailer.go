package services

import (
	"bytes"
	"fmt"
	"log"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const fromAddress = "Research Portal <no-reply@research.nitt.edu>"

// Mailer enqueues transactional email. It owns queueing and retry; callers
// get a boolean back and never block on downstream delivery. A failed send
// must not roll back the mutation that triggered it.
type Mailer interface {
	SendMessage(recipients []string, subject, bodyText, bodyHTML string) bool
}

// Mail is the dispatcher used by the handlers. Tests swap in a stub.
var Mail Mailer = noopMailer{}

type noopMailer struct{}

func (noopMailer) SendMessage(recipients []string, subject, bodyText, bodyHTML string) bool {
	log.Printf("Mailer disabled, dropping mail (to=%s subject=%q)", strings.Join(recipients, ", "), subject)
	return false
}

// rabbitMailer publishes RFC 822 messages to the mailer queue, where a
// separate consumer hands them to SMTP. The channel is re-dialed on demand
// so a broker restart does not take the portal down with it.
type rabbitMailer struct {
	mu      sync.Mutex
	url     string
	queue   string
	conn    *amqp.Connection
	channel *amqp.Channel
}

// InitMailer connects to RabbitMQ using the MAILER_RABBITMQ_* environment
// variables and installs the resulting mailer as the default dispatcher.
func InitMailer() error {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		os.Getenv("MAILER_RABBITMQ_USER"),
		os.Getenv("MAILER_RABBITMQ_PASS"),
		os.Getenv("MAILER_RABBITMQ_HOST"),
		os.Getenv("MAILER_RABBITMQ_PORT"),
		os.Getenv("MAILER_RABBITMQ_VHOST"),
	)

	mailer := &rabbitMailer{
		url:   url,
		queue: os.Getenv("MAILER_RABBITMQ_QUEUE"),
	}

	if _, err := mailer.getChannel(); err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	Mail = mailer

	return nil
}

func (m *rabbitMailer) getChannel() (*amqp.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.channel != nil && !m.channel.IsClosed() {
		return m.channel, nil
	}

	if m.conn == nil || m.conn.IsClosed() {
		conn, err := amqp.Dial(m.url)
		if err != nil {
			return nil, err
		}
		m.conn = conn
	}

	channel, err := m.conn.Channel()

	if err != nil {
		return nil, err
	}

	if _, err := channel.QueueDeclare(m.queue, true, false, false, false, nil); err != nil {
		channel.Close()
		return nil, err
	}

	m.channel = channel

	return channel, nil
}

func (m *rabbitMailer) SendMessage(recipients []string, subject, bodyText, bodyHTML string) bool {
	channel, err := m.getChannel()

	if err != nil {
		log.Printf("Mailer: channel unavailable: %v", err)
		return false
	}

	body, err := composeMessage(recipients, subject, bodyText, bodyHTML)

	if err != nil {
		log.Printf("Mailer: failed to compose message: %v", err)
		return false
	}

	err = channel.Publish("", m.queue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "message/rfc822",
		Body:         body,
	})

	if err != nil {
		log.Printf("Mailer: publish failed: %v", err)
		return false
	}

	log.Printf("Email(to=%s) added to queue", strings.Join(recipients, ", "))

	return true
}

// composeMessage renders a multipart/alternative RFC 822 message, which is
// the format the queue consumer expects.
func composeMessage(recipients []string, subject, bodyText, bodyHTML string) ([]byte, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", fromAddress)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())

	plain, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := plain.Write([]byte(bodyText)); err != nil {
		return nil, err
	}

	html, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := html.Write([]byte(bodyHTML)); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

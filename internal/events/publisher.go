package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects published by the platform.
const (
	SubjectLessonUnlocked    = "skillroute.lesson.unlocked"
	SubjectSubmissionGraded  = "skillroute.submission.graded"
	SubjectCertificateIssued = "skillroute.certificate.issued"
)

// Publisher emits platform events over NATS. A nil connection disables
// publishing; every method is safe to call in that state.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewPublisher wraps the provided NATS connection. conn may be nil.
func NewPublisher(conn *nats.Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Envelope is the wire format for platform events.
type Envelope struct {
	Subject   string      `json:"subject"`
	Payload   interface{} `json:"payload"`
	EmittedAt time.Time   `json:"emitted_at"`
}

// Publish emits the payload on the given subject. Failures are logged and
// swallowed; event delivery never affects request outcomes.
func (p *Publisher) Publish(subject string, payload interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(Envelope{
		Subject:   subject,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

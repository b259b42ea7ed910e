package sms

import (
	"context"
	"errors"
)

// Sender define la interfaz para envío de SMS salientes.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender devuelve un Sender que falla siempre con la razón dada.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _, _ string) error {
	if s.reason == "" {
		return errors.New("sms sender disabled")
	}
	return errors.New(s.reason)
}

package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sender define la interfaz para envío de correos salientes.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Proveedores soportados. Un selector desconocido es error de configuración
// y se rechaza al arrancar, nunca en el momento del envío.
const (
	ProviderGmail   = "gmail"
	ProviderOutlook = "outlook"
	ProviderHotmail = "hotmail"
	ProviderCustom  = "custom"
)

// NewSender selecciona el transporte SMTP según el proveedor configurado.
func NewSender(provider, user, password, smtpHost string, smtpPort int) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderGmail:
		return newSMTPSender("smtp.gmail.com", 587, user, password, user, false)
	case ProviderOutlook, ProviderHotmail:
		return newSMTPSender("smtp-mail.outlook.com", 587, user, password, user, false)
	case ProviderCustom:
		if strings.TrimSpace(smtpHost) == "" {
			return nil, errors.New("custom email provider requires SMTP_HOST")
		}
		return newSMTPSender(smtpHost, smtpPort, user, password, user, true)
	default:
		return nil, fmt.Errorf("unknown email provider: %q", provider)
	}
}

type disabledSender struct {
	reason string
}

// NewDisabledSender devuelve un Sender que falla siempre con la razón dada.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _, _, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

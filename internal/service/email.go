package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/logger"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridEmailService struct {
	key  string
	from *sgmail.Email
}

func NewSendgridEmailService(key, fromName, fromEmail string) EmailService {
	return &sendgridEmailService{
		key:  key,
		from: sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *sendgridEmailService) SendPaymentCompleted(ctx context.Context, email, name, nomFamille string, details *domain.PaymentDetails) error {
	subject := fmt.Sprintf("Paiement complété - Famille %s", nomFamille)
	body := fmt.Sprintf(`Bonjour %s,

Le paiement de la scolarité de la famille %s est désormais complet.

Montant total : %d
Montant payé : %d

Merci de votre confiance.`, name, nomFamille, details.MontantTotal, details.MontantPaye)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendPaymentReminder(ctx context.Context, email, name, nomFamille string, resteAPayer int32) error {
	subject := fmt.Sprintf("Rappel de paiement - Famille %s", nomFamille)
	body := fmt.Sprintf(`Bonjour %s,

Il reste %d à régler sur la scolarité de la famille %s.

Merci de régulariser la situation auprès du secrétariat.`, name, resteAPayer, nomFamille)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) send(email, name, subject, body string) error {
	to := sgmail.NewEmail(name, email)
	content := sgmail.NewContent("text/plain", body)
	m := sgmail.NewV3MailInit(s.from, subject, to, content)

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// consoleEmailService logs instead of sending; used in development and when
// no sendgrid key is configured.
type consoleEmailService struct{}

func NewConsoleEmailService() EmailService {
	return consoleEmailService{}
}

func (consoleEmailService) SendPaymentCompleted(ctx context.Context, email, name, nomFamille string, details *domain.PaymentDetails) error {
	logger.Info("EMAIL payment completed", "to", email, "famille", nomFamille, "montant_total", details.MontantTotal)
	return nil
}

func (consoleEmailService) SendPaymentReminder(ctx context.Context, email, name, nomFamille string, resteAPayer int32) error {
	logger.Info("EMAIL payment reminder", "to", email, "famille", nomFamille, "reste_a_payer", resteAPayer)
	return nil
}

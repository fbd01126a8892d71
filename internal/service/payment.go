package service

import (
	"context"
	"errors"
	"fmt"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/logger"
	"madrasa-backend/internal/repository"
)

type paymentService struct {
	atomic     repository.Atomic
	repos      repository.Repositories
	emailSvc   EmailService
	dispatcher TaskDispatcher
}

func NewPaymentService(atomic repository.Atomic, repos repository.Repositories, emailSvc EmailService, dispatcher TaskDispatcher) PaymentService {
	return &paymentService{
		atomic:     atomic,
		repos:      repos,
		emailSvc:   emailSvc,
		dispatcher: dispatcher,
	}
}

func (s *paymentService) GetDetails(ctx context.Context, familyID int32) (*domain.PaymentDetails, error) {
	return getPaymentDetails(ctx, s.repos, familyID)
}

// getPaymentDetails always recomputes owed from live enrollment and rule
// state; remaining due reflects the latest tarifs even after partial payment.
func getPaymentDetails(ctx context.Context, r repository.Repositories, familyID int32) (*domain.PaymentDetails, error) {
	tarifs, err := computeFamilyTarifs(ctx, r, familyID, nil)
	if err != nil {
		return nil, err
	}

	var paiement *domain.Paiement
	var lines []domain.LignePaiement
	p, err := r.Payment.GetByFamily(ctx, familyID)
	switch {
	case err == nil:
		paiement = p
		if lines, err = r.Payment.ListLines(ctx, p.ID); err != nil {
			return nil, err
		}
	case errors.Is(err, domain.ErrNotFound):
		// No payment recorded yet; the view still carries the owed amount.
	default:
		return nil, err
	}

	paye, breakdown := sumLines(lines)
	return &domain.PaymentDetails{
		Paiement:     paiement,
		MontantTotal: tarifs.Total,
		MontantPaye:  paye,
		ResteAPayer:  tarifs.Total - paye,
		Details:      breakdown,
		Tarifs:       tarifs,
	}, nil
}

func sumLines(lines []domain.LignePaiement) (int32, domain.PaymentBreakdown) {
	var paye int32
	breakdown := domain.PaymentBreakdown{Cheques: []domain.ChequeDetails{}}
	for _, l := range lines {
		paye += l.Montant
		switch l.Type {
		case domain.PaymentEspece:
			breakdown.Espece += l.Montant
		case domain.PaymentCarte:
			breakdown.Carte += l.Montant
		case domain.PaymentCheque:
			breakdown.Cheque += l.Montant
			if l.Cheque != nil {
				breakdown.Cheques = append(breakdown.Cheques, *l.Cheque)
			}
		case domain.PaymentExoneration:
			breakdown.Exoneration += l.Montant
		}
	}
	return paye, breakdown
}

func (s *paymentService) AddLine(ctx context.Context, familyID, createdBy int32, in PaymentLineInput) (*LineMutation, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	line := &domain.LignePaiement{
		Type:          domain.PaymentType(in.Type),
		Montant:       in.Montant,
		Cheque:        in.Cheque,
		Justification: in.Justification,
		CreatedBy:     createdBy,
	}
	if err := line.ValidateDetails(); err != nil {
		return nil, err
	}

	var out LineMutation
	var resteBefore int32
	err := s.atomic.InTx(ctx, func(r repository.Repositories) error {
		paiement, err := r.Payment.LockByFamily(ctx, familyID, createdBy)
		if err != nil {
			return err
		}
		owed, paye, err := currentTotals(ctx, r, familyID, paiement.ID)
		if err != nil {
			return err
		}
		resteBefore = owed - paye

		if paye+line.Montant > owed {
			return domain.ErrOverpayment
		}

		line.PaiementID = paiement.ID
		if err := r.Payment.InsertLine(ctx, line); err != nil {
			return fmt.Errorf("insert ligne: %w", err)
		}
		out = LineMutation{
			Ligne:        line,
			NouveauTotal: paye + line.Montant,
			ResteAPayer:  owed - paye - line.Montant,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCompletionCheck(familyID, resteBefore)
	return &out, nil
}

func (s *paymentService) ModifyLine(ctx context.Context, familyID, lineID, updatedBy int32, in PaymentLineUpdate) (*LineMutation, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var out LineMutation
	var resteBefore int32
	err := s.atomic.InTx(ctx, func(r repository.Repositories) error {
		paiement, err := r.Payment.LockByFamily(ctx, familyID, updatedBy)
		if err != nil {
			return err
		}
		line, err := r.Payment.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line.PaiementID != paiement.ID {
			// A line queried under the wrong family is not found, not leaked.
			return domain.ErrNotFound
		}

		owed, paye, err := currentTotals(ctx, r, familyID, paiement.ID)
		if err != nil {
			return err
		}
		resteBefore = owed - paye

		nouveauPaye := paye - line.Montant + in.Montant
		if nouveauPaye > owed {
			return domain.ErrOverpayment
		}

		// The type never changes; only the amount and the type's own details.
		line.Montant = in.Montant
		switch line.Type {
		case domain.PaymentCheque:
			if in.Cheque != nil {
				line.Cheque = in.Cheque
			}
		case domain.PaymentExoneration:
			if in.Justification != "" {
				line.Justification = in.Justification
			}
		}
		if err := line.ValidateDetails(); err != nil {
			return err
		}
		if err := r.Payment.UpdateLine(ctx, line); err != nil {
			return fmt.Errorf("update ligne: %w", err)
		}
		out = LineMutation{Ligne: line, NouveauTotal: nouveauPaye, ResteAPayer: owed - nouveauPaye}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCompletionCheck(familyID, resteBefore)
	return &out, nil
}

func (s *paymentService) DeleteLine(ctx context.Context, familyID, lineID int32) (*LineMutation, error) {
	var out LineMutation
	var resteBefore int32
	err := s.atomic.InTx(ctx, func(r repository.Repositories) error {
		paiement, err := r.Payment.LockByFamily(ctx, familyID, 0)
		if err != nil {
			return err
		}
		line, err := r.Payment.GetLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line.PaiementID != paiement.ID {
			return domain.ErrNotFound
		}

		owed, paye, err := currentTotals(ctx, r, familyID, paiement.ID)
		if err != nil {
			return err
		}
		resteBefore = owed - paye

		if err := r.Payment.DeleteLine(ctx, lineID); err != nil {
			return fmt.Errorf("delete ligne: %w", err)
		}
		// The empty ledger row stays in place when the last line goes.
		out = LineMutation{NouveauTotal: paye - line.Montant, ResteAPayer: owed - paye + line.Montant}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.scheduleCompletionCheck(familyID, resteBefore)
	return &out, nil
}

// currentTotals recomputes owed and paid through the given repositories, so
// inside a mutation both come from the transaction's snapshot.
func currentTotals(ctx context.Context, r repository.Repositories, familyID, paiementID int32) (owed, paye int32, err error) {
	tarifs, err := computeFamilyTarifs(ctx, r, familyID, nil)
	if err != nil {
		return 0, 0, err
	}
	lines, err := r.Payment.ListLines(ctx, paiementID)
	if err != nil {
		return 0, 0, err
	}
	paye, _ = sumLines(lines)
	return tarifs.Total, paye, nil
}

func (s *paymentService) scheduleCompletionCheck(familyID, resteBefore int32) {
	before := resteBefore
	s.dispatcher.Enqueue("check-payment-completion", func(ctx context.Context) {
		s.checkPaymentCompletion(ctx, familyID, &before)
	})
}

// checkPaymentCompletion fires the one-time completion notification when the
// remaining due crossed from positive to zero. It runs after commit and its
// failures are logged, never surfaced.
func (s *paymentService) checkPaymentCompletion(ctx context.Context, familyID int32, resteBefore *int32) {
	details, err := getPaymentDetails(ctx, s.repos, familyID)
	if err != nil {
		logger.Error("Completion check failed", "family_id", familyID, "error", err)
		return
	}
	if details.ResteAPayer != 0 || details.MontantTotal <= 0 {
		return
	}
	if resteBefore != nil && *resteBefore <= 0 {
		// Already complete before this mutation; do not re-notify.
		return
	}

	responsibles, err := s.repos.Family.ListResponsibles(ctx, familyID)
	if err != nil {
		logger.Error("Completion check: cannot list responsibles", "family_id", familyID, "error", err)
		return
	}
	for _, resp := range responsibles {
		if err := s.emailSvc.SendPaymentCompleted(ctx, resp.Email, resp.FullName(), details.Tarifs.NomFamille, details); err != nil {
			logger.Error("Completion email failed", "family_id", familyID, "user_id", resp.ID, "error", err)
			continue
		}
		note := &domain.Notification{
			UserID:   resp.ID,
			FamilyID: familyID,
			Title:    "Paiement complété",
			Message:  fmt.Sprintf("Le paiement de la famille %s est complet (%d)", details.Tarifs.NomFamille, details.MontantTotal),
			Attributes: map[string]string{
				"type":      "PAYMENT_COMPLETED",
				"family_id": fmt.Sprintf("%d", familyID),
			},
		}
		if err := s.repos.Notification.Create(ctx, note); err != nil {
			logger.Error("Completion notification row failed", "family_id", familyID, "user_id", resp.ID, "error", err)
		}
	}
	logger.Info("Payment completion notified", "family_id", familyID, "responsibles", len(responsibles))
}

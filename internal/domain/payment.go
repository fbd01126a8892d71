package domain

import "time"

type PaymentType string

const (
	PaymentEspece      PaymentType = "espece"
	PaymentCarte       PaymentType = "carte"
	PaymentCheque      PaymentType = "cheque"
	PaymentExoneration PaymentType = "exoneration"
)

// ValidPaymentType reports whether t is one of the known payment types.
func ValidPaymentType(t PaymentType) bool {
	switch t {
	case PaymentEspece, PaymentCarte, PaymentCheque, PaymentExoneration:
		return true
	}
	return false
}

// ChequeDetails are the required sub-fields of a cheque line.
type ChequeDetails struct {
	Banque      string `json:"banque" validate:"required"`
	Numero      string `json:"numero" validate:"required"`
	NomEmetteur string `json:"nom_emetteur" validate:"required"`
}

// Paiement is the per-family ledger, created lazily on first payment.
type Paiement struct {
	ID        int32     `json:"id"`
	FamilyID  int32     `json:"family_id"`
	CreatedBy int32     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// LignePaiement is one recorded payment or exemption event. The type is
// immutable once created; montant and the type-specific details may change.
type LignePaiement struct {
	ID            int32          `json:"id"`
	PaiementID    int32          `json:"paiement_id"`
	Type          PaymentType    `json:"type_paiement"`
	Montant       int32          `json:"montant"` // integer currency units, > 0
	Cheque        *ChequeDetails `json:"cheque,omitempty"`
	Justification string         `json:"justification,omitempty"`
	CreatedBy     int32          `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ValidateDetails enforces the type-specific required fields. New payment
// types must be handled here.
func (l *LignePaiement) ValidateDetails() error {
	switch l.Type {
	case PaymentEspece, PaymentCarte:
		return nil
	case PaymentCheque:
		if l.Cheque == nil {
			return NewValidationError("cheque", "cheque details are required")
		}
		verr := &ValidationError{}
		if l.Cheque.Banque == "" {
			verr.Add("cheque.banque", "required")
		}
		if l.Cheque.Numero == "" {
			verr.Add("cheque.numero", "required")
		}
		if l.Cheque.NomEmetteur == "" {
			verr.Add("cheque.nom_emetteur", "required")
		}
		if len(verr.Fields) > 0 {
			return verr
		}
		return nil
	case PaymentExoneration:
		if l.Justification == "" {
			return NewValidationError("justification", "required for exoneration")
		}
		return nil
	default:
		return NewValidationError("type", "unknown payment type")
	}
}

// PaymentBreakdown sums paid amounts per type and lists cheque details.
type PaymentBreakdown struct {
	Espece      int32           `json:"espece"`
	Carte       int32           `json:"carte"`
	Cheque      int32           `json:"cheque"`
	Exoneration int32           `json:"exoneration"`
	Cheques     []ChequeDetails `json:"cheques"`
}

// PaymentDetails is the full ledger view for a family. Owed is always
// recomputed from live enrollment and rule state.
type PaymentDetails struct {
	Paiement     *Paiement        `json:"paiement"`
	MontantTotal int32            `json:"montant_total"`
	MontantPaye  int32            `json:"montant_paye"`
	ResteAPayer  int32            `json:"reste_a_payer"`
	Details      PaymentBreakdown `json:"details"`
	Tarifs       *FamilyTarifs    `json:"tarifs"`
}

package domain

import "time"

// PaymentTypeStat aggregates ledger lines of one payment type.
type PaymentTypeStat struct {
	Count  int32 `json:"count"`
	Amount int32 `json:"amount"`
}

// PaymentStats is the school-wide projection over all ledgers.
type PaymentStats struct {
	TotalAmount     int32                           `json:"total_amount"`
	ExpectedRevenue int32                           `json:"expected_revenue"`
	ByType          map[PaymentType]PaymentTypeStat `json:"by_type"`
}

// UnpaidFamily is a family whose remaining due is still positive.
type UnpaidFamily struct {
	FamilyID     int32         `json:"family_id"`
	NomFamille   string        `json:"nom_famille"`
	MontantTotal int32         `json:"montant_total"`
	MontantPaye  int32         `json:"montant_paye"`
	ResteAPayer  int32         `json:"reste_a_payer"`
	Responsables []Responsible `json:"responsables"`
}

// PaymentSearchRow is one ledger line with its family context.
type PaymentSearchRow struct {
	LigneID    int32       `json:"ligne_id"`
	Type       PaymentType `json:"type_paiement"`
	Montant    int32       `json:"montant"`
	FamilyID   int32       `json:"family_id"`
	NomFamille string      `json:"nom_famille"`
	CreatedAt  time.Time   `json:"created_at"`
}

// MonthlyRevenue is the per-month, per-type sum of recorded payments.
type MonthlyRevenue struct {
	Month string      `json:"month"` // YYYY-MM
	Type  PaymentType `json:"type_paiement"`
	Total int32       `json:"total"`
}

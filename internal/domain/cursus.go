package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProgressionMode string

const (
	ProgressionLeveled    ProgressionMode = "leveled"
	ProgressionContinuous ProgressionMode = "continuous"
)

// Cursus is a school program with its own pricing and level structure.
type Cursus struct {
	ID          int32           `json:"id"`
	SchoolID    int32           `json:"school_id"`
	Name        string          `json:"name"`
	Progression ProgressionMode `json:"progression"`
	LevelsCount int32           `json:"levels_count"`
}

// Tarif is a base price for a cursus. Several rows may exist over time; the
// most recent active one is authoritative.
type Tarif struct {
	ID        int32     `json:"id"`
	CursusID  int32     `json:"cursus_id"`
	Prix      int32     `json:"prix"` // integer currency units
	Actif     bool      `json:"actif"`
	CreatedBy int32     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ReductionFamiliale grants a percentage discount on a cursus when at least
// NombreElevesMin students of the same family are enrolled in it.
type ReductionFamiliale struct {
	ID              int32           `json:"id"`
	CursusID        int32           `json:"cursus_id"`
	NombreElevesMin int32           `json:"nombre_eleves_min"`
	Pourcentage     decimal.Decimal `json:"pourcentage_reduction"`
	Actif           bool            `json:"actif"`
}

// ReductionMultiCursus grants a percentage discount on the beneficiary cursus
// when the student is also actively enrolled in the required cursus. The rule
// is directional.
type ReductionMultiCursus struct {
	ID                   int32           `json:"id"`
	CursusBeneficiaireID int32           `json:"cursus_beneficiaire_id"`
	CursusRequisID       int32           `json:"cursus_requis_id"`
	CursusRequisNom      string          `json:"cursus_requis_nom,omitempty"`
	Pourcentage          decimal.Decimal `json:"pourcentage_reduction"`
	Actif                bool            `json:"actif"`
}

// BestReductionFamiliale selects, among active rules with a minimum not
// exceeding count, the one with the largest minimum. Returns zero when count
// is 1 or less, or when no rule qualifies. Rules form a step function.
func BestReductionFamiliale(rules []ReductionFamiliale, count int) decimal.Decimal {
	if count <= 1 {
		return decimal.Zero
	}
	best := decimal.Zero
	bestMin := int32(0)
	for _, r := range rules {
		if !r.Actif || int(r.NombreElevesMin) > count {
			continue
		}
		if r.NombreElevesMin > bestMin {
			bestMin = r.NombreElevesMin
			best = r.Pourcentage
		}
	}
	return best
}

// BestReductionMultiCursus returns the maximum percentage among active rules
// whose required cursus is in autresCursus, or zero.
func BestReductionMultiCursus(rules []ReductionMultiCursus, autresCursus map[int32]bool) decimal.Decimal {
	best := decimal.Zero
	for _, r := range rules {
		if !r.Actif || !autresCursus[r.CursusRequisID] {
			continue
		}
		if r.Pourcentage.GreaterThan(best) {
			best = r.Pourcentage
		}
	}
	return best
}

var dCent = decimal.NewFromInt(100)

// ApplyReduction computes prix * (1 - pct/100) rounded half away from zero to
// the nearest integer currency unit.
func ApplyReduction(prix int32, pct decimal.Decimal) int32 {
	final := decimal.NewFromInt32(prix).Mul(dCent.Sub(pct)).Div(dCent)
	return int32(final.Round(0).IntPart())
}

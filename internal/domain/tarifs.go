package domain

// CursusTarif is the per-cursus pricing breakdown for one student. The
// percentage fields record both candidate reductions for auditability; only
// the applied one affects the final price.
type CursusTarif struct {
	CursusID             int32   `json:"cursus_id"`
	CursusName           string  `json:"cursus_name"`
	TarifBase            int32   `json:"tarif_base"`
	ReductionFamiliale   float64 `json:"reduction_familiale"`
	ReductionMultiCursus float64 `json:"reduction_multi_cursus"`
	ReductionAppliquee   float64 `json:"reduction_appliquee"`
	TarifFinal           int32   `json:"tarif_final"`
}

// StudentTarifs is one student's pricing breakdown across cursuses.
type StudentTarifs struct {
	StudentID   int32         `json:"student_id"`
	StudentName string        `json:"student_name"`
	Cursus      []CursusTarif `json:"cursus"`
}

// FamilyTarifs is the calculator output. Field names are the wire contract;
// statistics and invoicing views depend on them.
type FamilyTarifs struct {
	Total           int32           `json:"total"`
	TotalFamille    int32           `json:"total_famille"`
	DetailsParEleve []StudentTarifs `json:"details_par_eleve"`
	NombreEleves    int             `json:"nombre_eleves"`
	NomFamille      string          `json:"nom_famille"`
	IDFamille       int32           `json:"id_famille"`
}

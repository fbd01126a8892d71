package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/repository"
)

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetOrCreate(ctx context.Context, familyID, createdBy int32) (*domain.Paiement, error) {
	// Insert-or-return in one statement so two callers racing on the first
	// payment still end up with a single row.
	query := `INSERT INTO paiements (family_id, created_by, created_at)
	          VALUES ($1, $2, now())
	          ON CONFLICT (family_id) DO UPDATE SET family_id = EXCLUDED.family_id
	          RETURNING id, family_id, created_by, created_at`
	var p domain.Paiement
	err := r.db.QueryRowContext(ctx, query, familyID, createdBy).
		Scan(&p.ID, &p.FamilyID, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create paiement: %w", err)
	}
	return &p, nil
}

func (r *paymentRepository) LockByFamily(ctx context.Context, familyID, createdBy int32) (*domain.Paiement, error) {
	var p domain.Paiement
	err := r.db.QueryRowContext(ctx,
		`SELECT id, family_id, created_by, created_at FROM paiements WHERE family_id = $1 FOR UPDATE`,
		familyID).Scan(&p.ID, &p.FamilyID, &p.CreatedBy, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		created, cerr := r.GetOrCreate(ctx, familyID, createdBy)
		if cerr != nil {
			return nil, cerr
		}
		// Re-read under lock; another transaction may have created the row.
		err = r.db.QueryRowContext(ctx,
			`SELECT id, family_id, created_by, created_at FROM paiements WHERE id = $1 FOR UPDATE`,
			created.ID).Scan(&p.ID, &p.FamilyID, &p.CreatedBy, &p.CreatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("lock paiement: %w", err)
	}
	return &p, nil
}

func (r *paymentRepository) GetByFamily(ctx context.Context, familyID int32) (*domain.Paiement, error) {
	var p domain.Paiement
	err := r.db.QueryRowContext(ctx,
		`SELECT id, family_id, created_by, created_at FROM paiements WHERE family_id = $1`,
		familyID).Scan(&p.ID, &p.FamilyID, &p.CreatedBy, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// lineDetails is the JSONB blob persisted per line; its shape depends on the
// line type.
type lineDetails struct {
	Banque        string `json:"banque,omitempty"`
	Numero        string `json:"numero,omitempty"`
	NomEmetteur   string `json:"nom_emetteur,omitempty"`
	Justification string `json:"justification,omitempty"`
}

func marshalDetails(line *domain.LignePaiement) ([]byte, error) {
	switch line.Type {
	case domain.PaymentCheque:
		if line.Cheque == nil {
			return nil, nil
		}
		return json.Marshal(lineDetails{
			Banque:      line.Cheque.Banque,
			Numero:      line.Cheque.Numero,
			NomEmetteur: line.Cheque.NomEmetteur,
		})
	case domain.PaymentExoneration:
		return json.Marshal(lineDetails{Justification: line.Justification})
	default:
		return nil, nil
	}
}

func unmarshalDetails(line *domain.LignePaiement, blob []byte) error {
	if len(blob) == 0 {
		return nil
	}
	var d lineDetails
	if err := json.Unmarshal(blob, &d); err != nil {
		return err
	}
	switch line.Type {
	case domain.PaymentCheque:
		line.Cheque = &domain.ChequeDetails{Banque: d.Banque, Numero: d.Numero, NomEmetteur: d.NomEmetteur}
	case domain.PaymentExoneration:
		line.Justification = d.Justification
	}
	return nil
}

func (r *paymentRepository) ListLines(ctx context.Context, paiementID int32) ([]domain.LignePaiement, error) {
	query := `SELECT id, paiement_id, type_paiement, montant, details, created_by, created_at
	          FROM lignes_paiement WHERE paiement_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, paiementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LignePaiement
	for rows.Next() {
		var line domain.LignePaiement
		var blob []byte
		if err := rows.Scan(&line.ID, &line.PaiementID, &line.Type, &line.Montant, &blob, &line.CreatedBy, &line.CreatedAt); err != nil {
			return nil, err
		}
		if err := unmarshalDetails(&line, blob); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (r *paymentRepository) GetLine(ctx context.Context, lineID int32) (*domain.LignePaiement, error) {
	query := `SELECT id, paiement_id, type_paiement, montant, details, created_by, created_at
	          FROM lignes_paiement WHERE id = $1`
	var line domain.LignePaiement
	var blob []byte
	err := r.db.QueryRowContext(ctx, query, lineID).
		Scan(&line.ID, &line.PaiementID, &line.Type, &line.Montant, &blob, &line.CreatedBy, &line.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalDetails(&line, blob); err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *paymentRepository) InsertLine(ctx context.Context, line *domain.LignePaiement) error {
	blob, err := marshalDetails(line)
	if err != nil {
		return err
	}
	query := `INSERT INTO lignes_paiement (paiement_id, type_paiement, montant, details, created_by, created_at)
	          VALUES ($1, $2, $3, $4, $5, now()) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, line.PaiementID, line.Type, line.Montant, blob, line.CreatedBy).
		Scan(&line.ID, &line.CreatedAt)
}

func (r *paymentRepository) UpdateLine(ctx context.Context, line *domain.LignePaiement) error {
	blob, err := marshalDetails(line)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE lignes_paiement SET montant = $2, details = $3 WHERE id = $1`,
		line.ID, line.Montant, blob)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *paymentRepository) DeleteLine(ctx context.Context, lineID int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lignes_paiement WHERE id = $1`, lineID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *paymentRepository) TotalsByType(ctx context.Context, schoolID int32) (map[domain.PaymentType]domain.PaymentTypeStat, error) {
	query := `SELECT l.type_paiement, count(*), COALESCE(SUM(l.montant), 0)
	          FROM lignes_paiement l
	          JOIN paiements p ON p.id = l.paiement_id
	          JOIN families f ON f.id = p.family_id
	          WHERE f.school_id = $1
	          GROUP BY l.type_paiement`
	rows, err := r.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.PaymentType]domain.PaymentTypeStat)
	for rows.Next() {
		var t domain.PaymentType
		var stat domain.PaymentTypeStat
		if err := rows.Scan(&t, &stat.Count, &stat.Amount); err != nil {
			return nil, err
		}
		out[t] = stat
	}
	return out, rows.Err()
}

func (r *paymentRepository) SearchLines(ctx context.Context, schoolID int32, query string, ptype domain.PaymentType, page, pageSize int32) ([]domain.PaymentSearchRow, int32, error) {
	base := `FROM lignes_paiement l
	         JOIN paiements p ON p.id = l.paiement_id
	         JOIN families f ON f.id = p.family_id
	         LEFT JOIN family_responsibles fr ON fr.family_id = f.id
	         LEFT JOIN users u ON u.id = fr.user_id
	         WHERE f.school_id = $1`
	args := []any{schoolID}
	if ptype != "" {
		args = append(args, ptype)
		base += fmt.Sprintf(" AND l.type_paiement = $%d", len(args))
	}
	if query != "" {
		args = append(args, "%"+query+"%")
		base += fmt.Sprintf(" AND (u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR l.details->>'numero' ILIKE $%d)",
			len(args), len(args), len(args))
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(DISTINCT l.id) "+base, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	sel := fmt.Sprintf(`SELECT DISTINCT l.id, l.type_paiement, l.montant, f.id,
	         COALESCE(MIN(u.first_name || ' ' || u.last_name), ''), l.created_at %s
	         GROUP BY l.id, l.type_paiement, l.montant, f.id, l.created_at
	         ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d`, base, len(args)-1, len(args))
	rows, err := r.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.PaymentSearchRow
	for rows.Next() {
		var row domain.PaymentSearchRow
		if err := rows.Scan(&row.LigneID, &row.Type, &row.Montant, &row.FamilyID, &row.NomFamille, &row.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, count, rows.Err()
}

func (r *paymentRepository) RevenueByMonth(ctx context.Context, schoolID int32) ([]domain.MonthlyRevenue, error) {
	query := `SELECT to_char(l.created_at, 'YYYY-MM') AS month, l.type_paiement, COALESCE(SUM(l.montant), 0)
	          FROM lignes_paiement l
	          JOIN paiements p ON p.id = l.paiement_id
	          JOIN families f ON f.id = p.family_id
	          WHERE f.school_id = $1
	          GROUP BY month, l.type_paiement
	          ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MonthlyRevenue
	for rows.Next() {
		var m domain.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Type, &m.Total); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

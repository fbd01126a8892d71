package jobs

import (
	"context"

	"madrasa-backend/internal/logger"
)

// SendUnpaidReminders emails every responsible of families whose tuition
// is not fully settled. Runs on the scheduler and is safe to invoke
// manually; it only reads the ledger and sends mail.
func (jr *JobRunner) SendUnpaidReminders() {
	jr.runWithRecovery("SendUnpaidReminders", func() {
		ctx := context.Background()

		rows, err := jr.db.QueryContext(ctx, `SELECT id, name FROM schools ORDER BY id`)
		if err != nil {
			logger.Error("Failed to query schools", "error", err)
			return
		}
		defer rows.Close()

		type school struct {
			id   int32
			name string
		}
		var schools []school
		for rows.Next() {
			var s school
			if err := rows.Scan(&s.id, &s.name); err != nil {
				logger.Error("Failed to scan school", "error", err)
				continue
			}
			schools = append(schools, s)
		}
		if err := rows.Err(); err != nil {
			logger.Error("Error iterating schools", "error", err)
			return
		}

		count := 0
		for _, s := range schools {
			unpaid, err := jr.services.Statistics.UnpaidFamilies(ctx, s.id)
			if err != nil {
				logger.Error("Failed to list unpaid families",
					"school_id", s.id,
					"error", err)
				continue
			}

			for _, fam := range unpaid {
				for _, resp := range fam.Responsables {
					if resp.Email == "" {
						continue
					}
					err := jr.services.Email.SendPaymentReminder(ctx,
						resp.Email, resp.FullName(), fam.NomFamille, fam.ResteAPayer)
					if err != nil {
						logger.Error("Failed to send payment reminder",
							"family_id", fam.FamilyID,
							"email", resp.Email,
							"error", err)
						continue
					}
					count++
					logger.Debug("Sent payment reminder",
						"family_id", fam.FamilyID,
						"email", resp.Email,
						"reste_a_payer", fam.ResteAPayer)
				}
			}
		}

		logger.Info("Payment reminders sent", "count", count)
	})
}

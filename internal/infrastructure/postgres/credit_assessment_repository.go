package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/domain/model"
	"github.com/bibbank/creditrisk/internal/domain/port"
	pkgpostgres "github.com/bibbank/creditrisk/pkg/postgres"
)

// CreditAssessmentRepository implements port.CreditAssessmentRepository using PostgreSQL.
type CreditAssessmentRepository struct {
	pool *pgxpool.Pool
}

var _ port.CreditAssessmentRepository = (*CreditAssessmentRepository)(nil)

// NewCreditAssessmentRepository creates a new PostgreSQL-backed assessment repository.
func NewCreditAssessmentRepository(pool *pgxpool.Pool) *CreditAssessmentRepository {
	return &CreditAssessmentRepository{pool: pool}
}

const selectAssessment = `
	SELECT id, tenant_id, applicant_id, result, version, created_at
	FROM credit_assessments
`

// Save inserts an assessment and its ranked reason codes in one transaction.
// Assessments are immutable, so saving an existing ID fails.
func (r *CreditAssessmentRepository) Save(ctx context.Context, a model.CreditAssessment) error {
	result := a.Result()
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode scoring result: %w", err)
	}

	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO credit_assessments (
				id, tenant_id, applicant_id,
				final_score, risk_band, base_rule_score, enhanced_rule_score,
				ml_probability, model_auc, signals_available,
				result, version, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			a.ID(), a.TenantID(), a.ApplicantID(),
			result.FinalScore, result.RiskBand.String(), result.BaseRuleScore,
			decimal.NewFromFloat(result.EnhancedRuleScore).Round(3),
			decimal.NewFromFloat(result.MLProbability).Round(6),
			decimal.NewFromFloat(result.ModelAUC).Round(4),
			result.SignalsAvailable,
			payload, a.Version(), a.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}

		batch := &pgx.Batch{}
		for rank, rc := range result.ReasonCodes {
			code, text, _ := strings.Cut(rc, ": ")
			batch.Queue(`
				INSERT INTO credit_assessment_reason_codes (assessment_id, tenant_id, rank, code, text)
				VALUES ($1, $2, $3, $4, $5)`,
				a.ID(), a.TenantID(), rank+1, code, text,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save reason codes: %w", err)
		}
		return nil
	})
}

// FindByID retrieves an assessment within a tenant.
func (r *CreditAssessmentRepository) FindByID(ctx context.Context, tenantID, id string) (model.CreditAssessment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.CreditAssessment{}, port.ErrAssessmentNotFound
	}
	row := r.pool.QueryRow(ctx, selectAssessment+` WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return scanAssessment(row)
}

// FindByApplicantID returns one page of an applicant's assessments, newest
// first, and the applicant's total assessment count.
func (r *CreditAssessmentRepository) FindByApplicantID(
	ctx context.Context, tenantID, applicantID string, limit, offset int,
) ([]model.CreditAssessment, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM credit_assessments WHERE tenant_id = $1 AND applicant_id = $2`,
		tenantID, applicantID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count assessments: %w", err)
	}

	rows, err := r.pool.Query(ctx, selectAssessment+`
		WHERE tenant_id = $1 AND applicant_id = $2
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`,
		tenantID, applicantID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	assessments := make([]model.CreditAssessment, 0, limit)
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, 0, err
		}
		assessments = append(assessments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate assessments: %w", err)
	}

	return assessments, total, nil
}

func scanAssessment(row pgx.Row) (model.CreditAssessment, error) {
	var (
		id          string
		tenantID    string
		applicantID string
		payload     []byte
		version     int
		createdAt   time.Time
	)

	if err := row.Scan(&id, &tenantID, &applicantID, &payload, &version, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CreditAssessment{}, port.ErrAssessmentNotFound
		}
		return model.CreditAssessment{}, fmt.Errorf("failed to scan assessment: %w", err)
	}

	var result model.ScoringResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return model.CreditAssessment{}, fmt.Errorf("failed to decode scoring result: %w", err)
	}

	return model.ReconstructCreditAssessment(id, tenantID, applicantID, result, version, createdAt), nil
}

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/internal/domain/port"
	"github.com/bibbank/creditrisk/internal/infrastructure/postgres/migrations"
)

func TestNewCreditAssessmentRepository(t *testing.T) {
	repo := NewCreditAssessmentRepository(nil)
	assert.NotNil(t, repo)
	assert.Nil(t, repo.pool)
}

func TestFindByID_MalformedIDIsNotFound(t *testing.T) {
	repo := NewCreditAssessmentRepository(nil)

	_, err := repo.FindByID(context.Background(), "tenant-1", "not-a-uuid")

	assert.ErrorIs(t, err, port.ErrAssessmentNotFound)
}

func TestMigrationsEmbedded(t *testing.T) {
	up, err := migrations.FS.ReadFile("000001_create_credit_assessments.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS credit_assessments")
	assert.Contains(t, string(up), "credit_assessment_reason_codes")

	_, err = migrations.FS.ReadFile("000001_create_credit_assessments.down.sql")
	assert.NoError(t, err)
}

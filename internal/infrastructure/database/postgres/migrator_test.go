package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollbackMigrationRejectsNonPositiveSteps(t *testing.T) {
	for _, steps := range []int{0, -1} {
		err := RollbackMigration("postgres://localhost/casebrain", "file://migrations", steps)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "steps must be greater than 0")
	}
}

func TestRunMigrationsRejectsBadSource(t *testing.T) {
	err := RunMigrations("postgres://localhost/casebrain", "not-a-url")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrate instance")
}

func TestMigrationStatusRejectsBadSource(t *testing.T) {
	_, _, err := MigrationStatus("postgres://localhost/casebrain", "not-a-url")
	assert.Error(t, err)
}

package repository

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/danielagrograos-wq/senior/internal/models"
)

func readInitMigration(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.up.sql"))
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	return string(data)
}

func columnClause(t *testing.T, schema, column string) string {
	t.Helper()
	re := regexp.MustCompile(`(?s)` + column + `\s+TEXT.*?(?:,\n|\n\);)`)
	match := re.FindString(schema)
	if match == "" {
		t.Fatalf("column %s not found in init migration", column)
	}
	return match
}

// The escrow enum the bookings table accepts must cover every value the
// booking repository writes, or inserts die on the CHECK constraint.
func TestBookingsSchemaAcceptsEscrowStatuses(t *testing.T) {
	clause := columnClause(t, readInitMigration(t), "escrow_status")

	if !strings.Contains(clause, "DEFAULT '"+models.EscrowPending+"'") {
		t.Fatalf("escrow_status default is not %q: %s", models.EscrowPending, clause)
	}
	for _, status := range []string{
		models.EscrowPending,
		models.EscrowHeld,
		models.EscrowReleased,
		models.EscrowRefunded,
	} {
		if !strings.Contains(clause, "'"+status+"'") {
			t.Fatalf("escrow_status CHECK does not allow %q: %s", status, clause)
		}
	}
}

func TestCaregiverSchemaDefaultsBackgroundCheckPending(t *testing.T) {
	clause := columnClause(t, readInitMigration(t), "background_check_status")

	if !strings.Contains(clause, "DEFAULT 'pending'") {
		t.Fatalf("background_check_status default is not pending: %s", clause)
	}
}

package sqlite

import (
	"strings"

	"github.com/maloquacious/mealmax/internal/store/sqlite/migrations"
)

// initialSchema holds the schema_migrations table for version tracking.
const initialSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// DefaultCreateTableScript is the embedded reset script.
var DefaultCreateTableScript = migrations.CreateMealTable

// createMealsTable is the CREATE statement of the reset script without the
// leading DROP, so InitSchema never discards existing rows.
var createMealsTable = createStatement(DefaultCreateTableScript)

func createStatement(script string) string {
	i := strings.Index(script, "CREATE TABLE")
	if i < 0 {
		return ""
	}
	return script[i:]
}

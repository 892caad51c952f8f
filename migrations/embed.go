// Package migrations holds the SQL schema of the export history.
//
// Importing it for side effects hands the embedded files to the database
// package:
//
//	import _ "github.com/nerrad567/gray-logic-ets/migrations"
package migrations

import (
	"embed"

	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}

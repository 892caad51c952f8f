// Package database opens the SQLite file that stores the ETS export history
// and applies its schema.
//
// Migrations are plain SQL files named YYYYMMDD_HHMMSS_name.up.sql and
// .down.sql. The migrations package embeds them and registers them here on
// import:
//
//	db, err := database.Open(ctx, database.FromConfig(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Schema changes are additive: new columns are nullable or carry a default,
// so an older binary keeps reading a newer database.
package database

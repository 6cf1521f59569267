// Package errordb translates console UART error codes into descriptions
// using an offline copy of the public error-code database.
//
// The database is a flat JSON object mapping upper-case hex codes to
// descriptions:
//
//	{"80801001": "Power supply fault", ...}
//
// Refresh downloads the latest copy and stores it in a local cache file.
// Translate loads the cache on first use, so lookups work offline once the
// database has been downloaded.
//
//	db, err := errordb.New()
//	if err != nil {
//	    return err
//	}
//	desc, err := db.Translate("80801001")
//	if errors.Is(err, errordb.ErrCacheMissing) {
//	    // run `uartcl db download` first
//	}
//
// A DB is safe for concurrent use.
package errordb

package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"campusnet-client/lib/telemetry"

	"github.com/dgraph-io/badger/v4"
	_ "modernc.org/sqlite"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if set, opens an in-memory badger instance
	Badger bool
}

type ServiceResult struct {
	DB     *sql.DB
	Badger *badger.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	telemetryCleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	result := ServiceResult{}

	if params.DbSchema != "" {
		sqlite, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			t.Fatal(err)
		}
		_, err = sqlite.Exec(params.DbSchema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			t.Fatal(err)
		}
		result.DB = sqlite
	}

	if params.Badger {
		db, err := badger.Open(
			badger.DefaultOptions("").
				WithInMemory(true).
				WithLogger(nil),
		)
		if err != nil {
			t.Fatal(err)
		}
		result.Badger = db
	}

	return result, func() {
		if result.Badger != nil {
			result.Badger.Close()
		}
		if result.DB != nil {
			result.DB.Close()
		}
		telemetryCleanup()
	}
}

package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nimasrn/customer-ledger/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testDB struct {
	*pg.DB
	rawDB *gorm.DB
}

// SetupTestDB opens a private in-memory sqlite database with the ledger schema.
// It is exported for the service and handler tests.
func SetupTestDB(t testing.TB) *testDB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	err = db.AutoMigrate(&CustomerEntity{}, &TransactionEntity{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps every query on the same in-memory database and
	// serializes writers the way a single logical writer would
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return &testDB{
		DB:    pg.New(db, db),
		rawDB: db,
	}
}

package migrations

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrateCreatesEveryTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range tables {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table.name + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, AutoMigrate(db, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateReportsFailingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").WillReturnError(errors.New("connection refused"))

	err = AutoMigrate(db, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create table products")
}

func TestOrdersReferenceTheirOwner(t *testing.T) {
	created := map[string]int{}
	for i, table := range tables {
		created[table.name] = i
	}

	for _, table := range tables {
		if table.name != "orders" {
			continue
		}
		assert.Contains(t, table.query, "FOREIGN KEY (user_id) REFERENCES users(id)")
		assert.Contains(t, table.query, "FOREIGN KEY (billing_id) REFERENCES billing_details(id)")
	}
	assert.Less(t, created["users"], created["orders"])
	assert.Less(t, created["billing_details"], created["orders"])
}

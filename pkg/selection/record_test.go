package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open("postgres", db)
	require.NoError(t, err)
	t.Cleanup(func() { gormDB.Close() })
	return gormDB, dbMock
}

func TestGormPersisterLoad(t *testing.T) {
	gormDB, dbMock := newMockDB(t)

	dbMock.ExpectQuery(`SELECT (.+) FROM "selections" WHERE (.+) LIMIT 1`).
		WithArgs("5").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner", "active", "data"}).
			AddRow(1, "5", true, []byte(`{"actingSeer": {"id": 3, "user": 8}, "counterpart": {"id": 21}}`)))

	persister := &GormPersister{DB: gormDB}
	selection, err := persister.Load(context.Background(), "5")
	require.NoError(t, err)
	require.NotNil(t, selection)
	assert.Equal(t, chat.ID("8"), selection.ActingSeer.User)
	assert.Equal(t, chat.ID("21"), selection.Counterpart.ID)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestGormPersisterLoadMissing(t *testing.T) {
	gormDB, dbMock := newMockDB(t)

	dbMock.ExpectQuery(`SELECT (.+) FROM "selections" WHERE (.+) LIMIT 1`).
		WithArgs("5").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	persister := &GormPersister{DB: gormDB}
	selection, err := persister.Load(context.Background(), "5")
	assert.NoError(t, err)
	assert.Nil(t, selection)
}

func TestGormPersisterSaveCreatesRecord(t *testing.T) {
	gormDB, dbMock := newMockDB(t)

	dbMock.ExpectQuery(`SELECT (.+) FROM "selections" WHERE (.+) LIMIT 1`).
		WithArgs("5").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`INSERT INTO "selections" (.+) RETURNING "selections"."id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	dbMock.ExpectCommit()

	persister := &GormPersister{DB: gormDB}
	require.NoError(t, persister.Save(context.Background(), "5", Selection{Counterpart: &anne}))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCleanupInactive(t *testing.T) {
	gormDB, dbMock := newMockDB(t)

	dbMock.ExpectBegin()
	dbMock.ExpectExec(`UPDATE "selections" SET (.+) WHERE (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	dbMock.ExpectCommit()

	require.NoError(t, CleanupInactive(gormDB))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestMigrateReportsFailure(t *testing.T) {
	gormDB, dbMock := newMockDB(t)

	dbMock.ExpectExec(`CREATE TABLE "selections"`).WillReturnError(errors.New("permission denied"))

	assert.Error(t, Migrate(gormDB))
}

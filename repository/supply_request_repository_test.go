package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"supply-service/models"
	"supply-service/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func fulfilledRequest() *models.SupplyRequest {
	now := time.Now()
	return &models.SupplyRequest{
		ID:          uuid.New(),
		ItemID:      uuid.New(),
		RequesterID: uuid.New(),
		Quantity:    5,
		Status:      models.StatusFulfilled,
		FulfilledAt: &now,
	}
}

func TestFulfill_CommitsDebitAndTransition(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSupplyRequestRepository(gormDB)

	req := fulfilledRequest()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "supply_requests"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Fulfill(context.Background(), req, 5, models.StatusApproved, models.StatusForClaiming)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFulfill_DebitsNonRejectedLines(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSupplyRequestRepository(gormDB)

	req := fulfilledRequest()
	req.Items = []models.SupplyRequestItem{
		{ID: uuid.New(), SupplyRequestID: req.ID, ItemID: uuid.New(), Quantity: 3, Status: models.LineStatusPending},
		{ID: uuid.New(), SupplyRequestID: req.ID, ItemID: uuid.New(), Quantity: 2, Status: models.LineStatusRejected},
	}

	// One debit for the primary item, one for the pending line; the
	// rejected line is skipped.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "supply_requests"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Fulfill(context.Background(), req, 5, models.StatusApproved)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFulfill_LineShortfallRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSupplyRequestRepository(gormDB)

	req := fulfilledRequest()
	req.Items = []models.SupplyRequestItem{
		{ID: uuid.New(), SupplyRequestID: req.ID, ItemID: uuid.New(), Quantity: 30, Status: models.LineStatusPending},
	}

	// The primary debit lands but the line debit matches no row, so the
	// whole transaction rolls back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "items"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Fulfill(context.Background(), req, 5, models.StatusApproved)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFulfill_InsufficientStockRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSupplyRequestRepository(gormDB)

	req := fulfilledRequest()

	// The guarded decrement matches no row, so the status update never runs.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "items"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Fulfill(context.Background(), req, 5, models.StatusApproved)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFulfill_StaleStatusRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSupplyRequestRepository(gormDB)

	req := fulfilledRequest()

	// Stock is debited inside the transaction, then the status guard
	// matches nothing; the rollback undoes the debit.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "supply_requests"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Fulfill(context.Background(), req, 5, models.StatusApproved)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithStatusCheck_Stale(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSupplyRequestRepository(gormDB)

	req := fulfilledRequest()
	req.Status = models.StatusCancelled

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "supply_requests"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateWithStatusCheck(context.Background(), req, models.StatusPending)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)
}

func TestSupplyRequestFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSupplyRequestRepository(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "supply_requests"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	req, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, req)
}

func TestRejectLine_AlreadyDecided(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormSupplyRequestRepository(gormDB)

	line := &models.SupplyRequestItem{
		ID:              uuid.New(),
		RejectionReason: "duplicate line",
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "supply_request_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.RejectLine(context.Background(), line)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)
}

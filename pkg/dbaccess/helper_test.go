package dbaccess_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/navyx/nexus/nexus-users/pkg/dbaccess"
	"gitlab.com/navyx/nexus/nexus-users/pkg/internal/dbmock"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("successful transaction", func(t *testing.T) {
		mockDS := new(dbmock.DataSource)
		mockTx := new(dbmock.Tx)

		mockDS.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Commit", ctx).Return(nil)
		mockTx.On("Rollback", ctx).Return(nil)

		err := dbaccess.WithTx(ctx, mockDS, func(ctx context.Context, ds dbaccess.DataSource) error {
			assert.NotNil(t, ds)
			return nil
		})

		assert.NoError(t, err)
		mockDS.AssertExpectations(t)
		mockTx.AssertExpectations(t)
	})

	t.Run("begin transaction error", func(t *testing.T) {
		mockDS := new(dbmock.DataSource)
		mockDS.On("Begin", ctx).Return(nil, errors.New("begin error"))

		err := dbaccess.WithTx(ctx, mockDS, func(ctx context.Context, ds dbaccess.DataSource) error {
			t.Fatal("This function should not be called")
			return nil
		})

		assert.ErrorContains(t, err, "error beginning transaction")
		mockDS.AssertExpectations(t)
	})

	t.Run("inner function error rolls back", func(t *testing.T) {
		mockDS := new(dbmock.DataSource)
		mockTx := new(dbmock.Tx)

		mockDS.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Rollback", ctx).Return(nil)

		err := dbaccess.WithTx(ctx, mockDS, func(ctx context.Context, ds dbaccess.DataSource) error {
			return errors.New("inner error")
		})

		assert.ErrorContains(t, err, "inner error")
		mockTx.AssertNotCalled(t, "Commit", ctx)
		mockDS.AssertExpectations(t)
		mockTx.AssertExpectations(t)
	})

	t.Run("commit error", func(t *testing.T) {
		mockDS := new(dbmock.DataSource)
		mockTx := new(dbmock.Tx)

		mockDS.On("Begin", ctx).Return(mockTx, nil)
		mockTx.On("Commit", ctx).Return(errors.New("commit error"))
		mockTx.On("Rollback", ctx).Return(nil)

		err := dbaccess.WithTx(ctx, mockDS, func(ctx context.Context, ds dbaccess.DataSource) error {
			return nil
		})

		assert.ErrorContains(t, err, "error committing transaction")
		mockDS.AssertExpectations(t)
		mockTx.AssertExpectations(t)
	})
}

func TestWithTxV(t *testing.T) {
	ctx := context.Background()

	mockDS := new(dbmock.DataSource)
	mockTx := new(dbmock.Tx)

	mockDS.On("Begin", ctx).Return(mockTx, nil)
	mockTx.On("Commit", ctx).Return(nil)
	mockTx.On("Rollback", ctx).Return(nil)

	count, err := dbaccess.WithTxV(ctx, mockDS, func(ctx context.Context, ds dbaccess.DataSource) (int64, error) {
		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, int64(42), count)
	mockDS.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

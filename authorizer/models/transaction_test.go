package models_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roberto5g/mini-authorizer/authorizer/models"
)

func TestNewTransaction(t *testing.T) {
	amount, err := models.NewMoneyFromString("10.00")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		transaction, err := models.NewTransaction("1234567890123456", "1234", amount)
		require.NoError(t, err)
		require.Equal(t, "1234567890123456", transaction.CardNumber)
		require.Equal(t, "1234", transaction.CardCredential)
		require.Equal(t, "10.00", transaction.Amount.String())
		require.False(t, transaction.Timestamp.IsZero())
	})

	t.Run("blank card number", func(t *testing.T) {
		_, err := models.NewTransaction("   ", "1234", amount)
		require.ErrorIs(t, err, models.ErrInvalidCardNumber)
	})

	t.Run("blank credential", func(t *testing.T) {
		_, err := models.NewTransaction("1234567890123456", "", amount)
		require.ErrorIs(t, err, models.ErrInvalidCredential)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := models.NewTransaction("1234567890123456", "1234", models.Money{})
		require.ErrorIs(t, err, models.ErrInvalidAmount)

		negative, err := models.NewMoneyFromString("-1.00")
		require.NoError(t, err)
		_, err = models.NewTransaction("1234567890123456", "1234", negative)
		require.ErrorIs(t, err, models.ErrInvalidAmount)
	})
}

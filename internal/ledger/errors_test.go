package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrValidation, 400},
		{ErrInsufficientFunds, 400},
		{ErrExpired, 400},
		{ErrNotFound, 404},
		{ErrUnauthorized, 404},
		{ErrConflict, 409},
		{errors.New("pool timeout"), 500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
		assert.Equal(t, tc.want, Status(fmt.Errorf("%w: detail", tc.err)), "wrapped "+tc.err.Error())
	}
}

func TestMessageMasksInternals(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("dial tcp 10.0.0.3: connection refused")))
	assert.Equal(t, "not found", Message(fmt.Errorf("%w: account row missing", ErrNotFound)))
	assert.Equal(t, "not found", Message(ErrUnauthorized))
	assert.Equal(t, "insufficient funds", Message(fmt.Errorf("%w: balance 3.00 < 10.00", ErrInsufficientFunds)))
}

func TestMessageKeepsValidationDetail(t *testing.T) {
	err := fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	assert.Contains(t, Message(err), "amount must be greater than zero")
}

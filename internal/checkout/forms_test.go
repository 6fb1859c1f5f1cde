package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

func validDelivery() DeliveryForm {
	return DeliveryForm{
		Name:         "Ana",
		Email:        "ana@x.com",
		Address:      "Rua A, 1",
		DeliveryDate: "12/03/2026",
	}
}

func TestValidateDelivery_Valid(t *testing.T) {
	d, err := ValidateDelivery(validDelivery(), today)
	require.NoError(t, err)
	assert.Equal(t, "Ana", d.Name)
	assert.Equal(t, time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC), d.DeliveryDate)
}

func TestValidateDelivery_TodayAccepted(t *testing.T) {
	form := validDelivery()
	form.DeliveryDate = "10/03/2026"
	_, err := ValidateDelivery(form, today)
	assert.NoError(t, err)
}

func TestValidateDelivery_PastDateRejected(t *testing.T) {
	form := validDelivery()
	form.DeliveryDate = "09/03/2026"
	_, err := ValidateDelivery(form, today)
	require.Error(t, err)

	fields, ok := err.(FieldErrors)
	require.True(t, ok)
	assert.Equal(t, "must be today or later", fields["delivery_date"])
}

func TestValidateDelivery_BadDates(t *testing.T) {
	for _, s := range []string{"31/02/2026", "2026-03-12", "1/3/2026", "aa/bb/cccc"} {
		form := validDelivery()
		form.DeliveryDate = s
		_, err := ValidateDelivery(form, today)
		require.Error(t, err, s)
		assert.Contains(t, err.(FieldErrors), "delivery_date", s)
	}
}

func TestValidateDelivery_MissingFields(t *testing.T) {
	_, err := ValidateDelivery(DeliveryForm{Email: "not-an-email"}, today)
	require.Error(t, err)

	fields := err.(FieldErrors)
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "is required", fields["address"])
	assert.Equal(t, "is required", fields["delivery_date"])
	assert.Equal(t, "must be a valid email", fields["email"])
}

func TestValidateDelivery_WhitespaceOnlyIsMissing(t *testing.T) {
	form := validDelivery()
	form.Name = "   "
	_, err := ValidateDelivery(form, today)
	require.Error(t, err)
	assert.Contains(t, err.(FieldErrors), "name")
}

func TestParseDeliveryDate(t *testing.T) {
	d, err := ParseDeliveryDate("29/02/2028", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	_, err = ParseDeliveryDate("29/02/2027", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestValidatePayment(t *testing.T) {
	p, err := ValidatePayment(PaymentForm{
		CardNumber: "4111 1111-1111 1111",
		CardHolder: " Ana Souza ",
		CardExpiry: "1229",
		CardCVV:    "1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "credit", p.Method)
	assert.Equal(t, "4111111111111111", p.CardNumber)
	assert.Equal(t, "Ana Souza", p.CardHolder)
	assert.Equal(t, "12/29", p.CardExpiry)
	assert.Equal(t, "123", p.CardCVV)
}

func TestValidatePayment_Missing(t *testing.T) {
	_, err := ValidatePayment(PaymentForm{CardNumber: "abc", CardHolder: "Ana"})
	require.Error(t, err)

	fields := err.(FieldErrors)
	assert.Len(t, fields, 3)
	assert.Contains(t, fields, "card_number")
	assert.Contains(t, fields, "card_expiry")
	assert.Contains(t, fields, "card_cvv")
}

func TestCardMasks(t *testing.T) {
	assert.Equal(t, "4111 1111 1111 1111", FormatCardNumber("4111111111111111"))
	assert.Equal(t, "4111 11", FormatCardNumber("411111"))
	assert.Equal(t, "", FormatCardNumber(""))
	assert.Equal(t, "12", FormatExpiry("12"))
	assert.Equal(t, "12/2", FormatExpiry("12/2"))
	assert.Equal(t, "12/29", FormatExpiry("12/2999"))
	assert.Equal(t, "12", NormalizeCVV("1a2"))
	assert.Equal(t, "**** **** **** 1111", MaskCardNumber("4111111111111111"))
	assert.Equal(t, "**** **** **** 1111", MaskCardNumber("4111 1111 1111 1111"))
	assert.Equal(t, "**** **** ***0 005", MaskCardNumber("378282246310005"))
	assert.Equal(t, "123", MaskCardNumber("123"))
}

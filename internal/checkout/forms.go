package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DeliveryDateLayout is the DD/MM/YYYY layout customers type the date in.
const DeliveryDateLayout = "02/01/2006"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrPastDate    = errors.New("delivery date must be today or later")

	dateShape = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	nonDigits = regexp.MustCompile(`\D`)

	validate = newValidator()
)

// FieldErrors maps a request field name to a message. It is returned as an
// error so callers can propagate it without losing the per-field detail.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "invalid form: " + strings.Join(parts, ", ")
}

type DeliveryForm struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Address      string `json:"address" validate:"required"`
	DeliveryDate string `json:"delivery_date" validate:"required"`
}

type DeliveryData struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	DeliveryDate time.Time `json:"delivery_date"`
}

type PaymentForm struct {
	Method     string `json:"method"`
	CardNumber string `json:"card_number" validate:"required"`
	CardHolder string `json:"card_holder" validate:"required"`
	CardExpiry string `json:"card_expiry" validate:"required"`
	CardCVV    string `json:"card_cvv" validate:"required"`
}

// PaymentData lives only in the session; nothing persists it.
type PaymentData struct {
	Method     string
	CardNumber string // digits only
	CardHolder string
	CardExpiry string // MM/YY
	CardCVV    string
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func collect(err error) FieldErrors {
	fields := FieldErrors{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fields
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "email":
			fields[fe.Field()] = "must be a valid email"
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return fields
}

// ParseDeliveryDate parses a DD/MM/YYYY date at midnight in loc.
func ParseDeliveryDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !dateShape.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	d, err := time.ParseInLocation(DeliveryDateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// ValidateDelivery checks the delivery form. The date must be today or later
// in now's location.
func ValidateDelivery(form DeliveryForm, now time.Time) (*DeliveryData, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Address = strings.TrimSpace(form.Address)

	fields := collect(validate.Struct(form))

	var date time.Time
	if _, bad := fields["delivery_date"]; !bad {
		d, err := ParseDeliveryDate(form.DeliveryDate, now.Location())
		switch {
		case err != nil:
			fields["delivery_date"] = "must be a valid DD/MM/YYYY date"
		case d.Before(startOfDay(now)):
			fields["delivery_date"] = "must be today or later"
		default:
			date = d
		}
	}

	if len(fields) > 0 {
		return nil, fields
	}
	return &DeliveryData{
		Name:         form.Name,
		Email:        form.Email,
		Address:      form.Address,
		DeliveryDate: date,
	}, nil
}

// NormalizePayment applies the input masks: digits only card number, MM/YY
// expiry and a CVV of at most three digits.
func NormalizePayment(form PaymentForm) PaymentForm {
	form.Method = strings.ToLower(strings.TrimSpace(form.Method))
	if form.Method == "" {
		form.Method = "credit"
	}
	form.CardHolder = strings.TrimSpace(form.CardHolder)
	form.CardNumber = StripCardNumber(form.CardNumber)
	form.CardExpiry = FormatExpiry(form.CardExpiry)
	form.CardCVV = NormalizeCVV(form.CardCVV)
	return form
}

// ValidatePayment only checks that every card field is present.
func ValidatePayment(form PaymentForm) (*PaymentData, error) {
	form = NormalizePayment(form)
	if fields := collect(validate.Struct(form)); len(fields) > 0 {
		return nil, fields
	}
	return &PaymentData{
		Method:     form.Method,
		CardNumber: form.CardNumber,
		CardHolder: form.CardHolder,
		CardExpiry: form.CardExpiry,
		CardCVV:    form.CardCVV,
	}, nil
}

func StripCardNumber(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// FormatCardNumber groups the digits of s in blocks of four.
func FormatCardNumber(s string) string {
	return groupFours(StripCardNumber(s))
}

func groupFours(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func FormatExpiry(s string) string {
	digits := nonDigits.ReplaceAllString(s, "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) > 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

func NormalizeCVV(s string) string {
	digits := nonDigits.ReplaceAllString(s, "")
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return digits
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Package credentials validates customer credential and profile input
// before it is sent to the commerce API.
//
// Validators return Fields keyed by form field name. Each value is a
// message catalog key rendered inline next to the field.
package credentials

import (
	"errors"
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"

	apperrors "github.com/anvistudio/storefront/internal/services/storefront/platform/errors"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// MaxStrength is the top of the strength meter.
const MaxStrength = 4

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+91[0-9]{10}$`)
)

// Fields maps a form field name to a message catalog key.
type Fields map[string]string

// Valid reports whether no field failed validation.
func (f Fields) Valid() bool {
	return len(f) == 0
}

// Err returns a *ValidationError for the failing fields, or nil when every
// field passed.
func (f Fields) Err() error {
	if f.Valid() {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidationError carries per-field failures. It unwraps to an invalid-input
// error keyed by the first failing field in name order.
type ValidationError struct {
	Fields Fields
}

func (e *ValidationError) Error() string {
	return e.Unwrap().Error()
}

func (e *ValidationError) Unwrap() error {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return apperrors.E(apperrors.KindInvalidInput, "invalid input")
	}
	return apperrors.EK(apperrors.KindInvalidInput, e.Fields[names[0]], "invalid "+names[0])
}

// FieldsOf returns the failing fields carried by err, if any.
func FieldsOf(err error) (Fields, bool) {
	var validation *ValidationError
	if !errors.As(err, &validation) {
		return nil, false
	}
	return validation.Fields, true
}

func (f Fields) add(field string, key string) {
	if key == "" {
		return
	}
	if _, exists := f[field]; exists {
		return
	}
	f[field] = key
}

// ValidatePassword checks the complexity policy: at least eight characters
// with one uppercase letter, one lowercase letter and one digit.
func ValidatePassword(password string) string {
	if password == "" {
		return "error.password.required"
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len([]rune(password)) < MinPasswordLength || !upper || !lower || !digit {
		return "error.password.policy"
	}
	return ""
}

// PasswordStrength scores password from 0 to MaxStrength for the meter.
// Length, mixed case, digits and symbols each contribute one point.
func PasswordStrength(password string) int {
	if password == "" {
		return 0
	}
	score := 0
	if len([]rune(password)) >= MinPasswordLength {
		score++
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	for _, ok := range []bool{upper, lower, digit, symbol} {
		if ok {
			score++
		}
	}
	if score > MaxStrength {
		score = MaxStrength
	}
	return score
}

// ValidateEmail checks that email is present and well formed.
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "error.email.required"
	}
	if !emailPattern.MatchString(email) {
		return "error.email.invalid"
	}
	return ""
}

// ValidatePhone checks an Indian mobile number in +91XXXXXXXXXX form.
func ValidatePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "error.phone.required"
	}
	if !phonePattern.MatchString(phone) {
		return "error.phone.invalid"
	}
	return ""
}

// Login is the sign-in form.
type Login struct {
	Username string
	Password string
}

// ValidateLogin requires both login fields.
func ValidateLogin(in Login) Fields {
	fields := Fields{}
	if strings.TrimSpace(in.Username) == "" {
		fields.add("username", "error.username.required")
	}
	if strings.TrimSpace(in.Password) == "" {
		fields.add("password", "error.password.required")
	}
	return fields
}

// Registration is the account creation form.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	PhoneNumber     string
	Password        string
	ConfirmPassword string
}

// ValidateRegistration checks every registration field.
func ValidateRegistration(in Registration) Fields {
	fields := Fields{}
	if strings.TrimSpace(in.FirstName) == "" {
		fields.add("firstName", "error.first_name.required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields.add("lastName", "error.last_name.required")
	}
	fields.add("email", ValidateEmail(in.Email))
	fields.add("phoneNumber", ValidatePhone(in.PhoneNumber))
	fields.add("password", ValidatePassword(in.Password))
	if in.Password != in.ConfirmPassword {
		fields.add("confirmPassword", "error.password.mismatch")
	}
	return fields
}

// ValidateIdentifier checks the forgot-password identifier, which may be an
// email address or a phone number.
func ValidateIdentifier(identifier string) Fields {
	fields := Fields{}
	if strings.TrimSpace(identifier) == "" {
		fields.add("identifier", "error.identifier.required")
	}
	return fields
}

// PasswordReset is the set-new-password form of the reset flow.
type PasswordReset struct {
	NewPassword     string
	ConfirmPassword string
}

// ValidatePasswordReset checks the policy and the confirmation match.
func ValidatePasswordReset(in PasswordReset) Fields {
	fields := Fields{}
	fields.add("newPassword", ValidatePassword(in.NewPassword))
	if in.NewPassword != in.ConfirmPassword {
		fields.add("confirmPassword", "error.password.mismatch")
	}
	return fields
}

// PasswordChange is the signed-in change-password form.
type PasswordChange struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ValidatePasswordChange checks the change-password form. A new password
// equal to the current one is rejected.
func ValidatePasswordChange(in PasswordChange) Fields {
	fields := Fields{}
	if in.CurrentPassword == "" {
		fields.add("currentPassword", "error.password.current_required")
	}
	fields.add("newPassword", ValidatePassword(in.NewPassword))
	if in.NewPassword != in.ConfirmPassword {
		fields.add("confirmPassword", "error.password.mismatch")
	}
	if in.CurrentPassword != "" && in.NewPassword == in.CurrentPassword {
		fields.add("newPassword", "error.password.same_as_current")
	}
	return fields
}

// ValidateEmailChange checks that newEmail is well formed and differs from
// current, ignoring case and surrounding space.
func ValidateEmailChange(current string, newEmail string) Fields {
	fields := Fields{}
	if key := ValidateEmail(newEmail); key != "" {
		fields.add("newEmail", key)
		return fields
	}
	if strings.EqualFold(strings.TrimSpace(current), strings.TrimSpace(newEmail)) {
		fields.add("newEmail", "error.email.unchanged")
	}
	return fields
}

// Profile is the editable part of the customer profile.
type Profile struct {
	FirstName     string
	LastName      string
	PhoneNumber   string
	PreferredSize string
	Gender        string
	DateOfBirth   string
}

// PreferredSizes lists the size options offered on the profile form.
var PreferredSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}

// Genders lists the gender options offered on the profile form.
var Genders = []string{"FEMALE", "MALE", "UNISEX", "OTHER"}

var dateOfBirthPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateProfile checks profile edits. Size, gender and birth date are
// optional but must come from the offered options.
func ValidateProfile(in Profile) Fields {
	fields := Fields{}
	if strings.TrimSpace(in.FirstName) == "" {
		fields.add("firstName", "error.first_name.required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields.add("lastName", "error.last_name.required")
	}
	fields.add("phoneNumber", ValidatePhone(in.PhoneNumber))
	if size := strings.TrimSpace(in.PreferredSize); size != "" && !slices.Contains(PreferredSizes, size) {
		fields.add("preferredSize", "error.profile.size_invalid")
	}
	if gender := strings.TrimSpace(in.Gender); gender != "" && !slices.Contains(Genders, gender) {
		fields.add("gender", "error.profile.gender_invalid")
	}
	if dob := strings.TrimSpace(in.DateOfBirth); dob != "" && !dateOfBirthPattern.MatchString(dob) {
		fields.add("dateOfBirth", "error.profile.date_invalid")
	}
	return fields
}

package services

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() RegistrationForm {
	return RegistrationForm{
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		Mobile:        "9876543210",
		Age:           "34",
		Aadhaar:       "123412341234",
		VoterIDNumber: "KA/01/123/456789",
		Country:       "India",
		State:         "Karnataka",
		Constituency:  "Bangalore South",
		Captcha:       "AB12C",
	}
}

func TestValidationHelper_RegistrationForm(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid form", func(t *testing.T) {
		form := validForm()
		assert.NoError(t, vh.ValidateStruct(&form))
	})

	tests := []struct {
		name    string
		mutate  func(f *RegistrationForm)
		message string
	}{
		{"blank name", func(f *RegistrationForm) { f.Name = "" }, "All fields are required."},
		{"blank constituency", func(f *RegistrationForm) { f.Constituency = "" }, "All fields are required."},
		{"blank wins over bad mobile", func(f *RegistrationForm) { f.Mobile = "12"; f.State = "" }, "All fields are required."},
		{"short mobile", func(f *RegistrationForm) { f.Mobile = "987654321" }, "Enter valid 10-digit mobile number"},
		{"mobile with letters", func(f *RegistrationForm) { f.Mobile = "98765abcde" }, "Enter valid 10-digit mobile number"},
		{"mobile with prefix", func(f *RegistrationForm) { f.Mobile = "+919876543" }, "Enter valid 10-digit mobile number"},
		{"minor", func(f *RegistrationForm) { f.Age = "17" }, "You must be 18 or older"},
		{"age not a number", func(f *RegistrationForm) { f.Age = "eighteen" }, "You must be 18 or older"},
		{"signed age", func(f *RegistrationForm) { f.Age = "+20" }, "You must be 18 or older"},
		{"short aadhaar", func(f *RegistrationForm) { f.Aadhaar = "12341234" }, "Aadhaar must be 12 digits"},
		{"mobile reported before age", func(f *RegistrationForm) { f.Mobile = "1"; f.Age = "3" }, "Enter valid 10-digit mobile number"},
		{"age reported before aadhaar", func(f *RegistrationForm) { f.Age = "3"; f.Aadhaar = "1" }, "You must be 18 or older"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := vh.ValidateStruct(&form)
			require.Error(t, err)
			assert.Equal(t, tt.message, registrationMessage(err))
		})
	}

	t.Run("age beyond int range", func(t *testing.T) {
		form := validForm()
		form.Age = "99999999999999999999999"
		assert.NoError(t, vh.ValidateStruct(&form))
	})

	t.Run("leading zeros", func(t *testing.T) {
		form := validForm()
		form.Age = "0000000000000000000000017"
		err := vh.ValidateStruct(&form)
		require.Error(t, err)
		assert.Equal(t, "You must be 18 or older", registrationMessage(err))
	})

	t.Run("exactly eighteen", func(t *testing.T) {
		form := validForm()
		form.Age = "18"
		assert.NoError(t, vh.ValidateStruct(&form))
	})

	t.Run("captcha is not validated here", func(t *testing.T) {
		form := validForm()
		form.Captcha = ""
		assert.NoError(t, vh.ValidateStruct(&form))
	})
}

func TestRegistrationForm_Normalize(t *testing.T) {
	form := validForm()
	form.Name = "  Asha Rao "
	form.Mobile = "9876543210\n"
	form.Captcha = " ab12c "

	form.Normalize()

	assert.Equal(t, "Asha Rao", form.Name)
	assert.Equal(t, "9876543210", form.Mobile)
	assert.Equal(t, "ab12c", form.Captcha)
}

func TestNewValidationHelper(t *testing.T) {
	vh := NewValidationHelper()
	assert.NotNil(t, vh)
	assert.NotNil(t, vh.validator)

	var verrs validator.ValidationErrors
	assert.Equal(t, "Invalid registration", registrationMessage(verrs))
}

func TestIsAadhaar(t *testing.T) {
	assert.True(t, IsAadhaar("123412341234"))
	assert.False(t, IsAadhaar("12341234123"))
	assert.False(t, IsAadhaar("1234123412345"))
	assert.False(t, IsAadhaar("12341234123a"))
	assert.False(t, IsAadhaar(""))
}

package validation_test

import (
	"testing"

	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/validation"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	valid := []string{"goodpass1", "Abcdefg1", "p@ssw0rd!", "12345678a"}
	invalid := []string{"", "short1", "abcdefgh", "12345678", "has space1", "unicodé12"}

	for _, p := range valid {
		require.NoError(t, validation.Password(p), p)
	}
	for _, p := range invalid {
		err := validation.Password(p)
		require.Error(t, err, p)
		require.Equal(t, validation.MsgWeakPassword, err.(*validation.Error).Message)
	}
}

func TestEmail(t *testing.T) {
	require.NoError(t, validation.Email("a@b.com"))
	require.NoError(t, validation.Email(" student@campus.edu "))
	for _, e := range []string{"", "a@b", "a b@c.com", "@b.com", "a@@b.com"} {
		require.Error(t, validation.Email(e), e)
	}
}

func TestPhone(t *testing.T) {
	require.NoError(t, validation.Phone(""))
	require.NoError(t, validation.Phone("+447911123456"))
	require.NoError(t, validation.Phone("15551234"))
	require.Error(t, validation.Phone("0123456"))
	require.Error(t, validation.Phone("+1"))
	require.Error(t, validation.Phone("555-1234"))
}

func TestLogin(t *testing.T) {
	err := validation.Login("", "x")
	require.ErrorIs(t, err, campuserrors.ErrValidation)
	require.Equal(t, validation.MsgEmailRequired, err.(*validation.Error).Message)

	err = validation.Login("a@b.com", "")
	require.Equal(t, validation.MsgPasswordRequired, err.(*validation.Error).Message)

	require.NoError(t, validation.Login("a@b.com", "anything"))
}

func TestRegistration(t *testing.T) {
	base := validation.Registration{
		Name:            "Ada",
		Email:           "ada@campus.edu",
		Password:        "analytic1",
		ConfirmPassword: "analytic1",
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		modify func(r *validation.Registration)
		msg    string
	}{
		{"missing name", func(r *validation.Registration) { r.Name = " " }, validation.MsgAllFieldsRequired},
		{"bad email", func(r *validation.Registration) { r.Email = "ada" }, validation.MsgInvalidEmail},
		{"bad phone", func(r *validation.Registration) { r.Phone = "abc" }, validation.MsgInvalidPhone},
		{"short password", func(r *validation.Registration) { r.Password, r.ConfirmPassword = "short", "short" }, validation.MsgWeakPassword},
		{"mismatch", func(r *validation.Registration) { r.ConfirmPassword = "analytic2" }, validation.MsgPasswordsMismatch},
		{"mismatch reported before bad email and weak password", func(r *validation.Registration) {
			r.Email, r.Password, r.ConfirmPassword = "bad", "short", "other"
		}, validation.MsgPasswordsMismatch},
		{"weak password reported before bad email", func(r *validation.Registration) {
			r.Email, r.Password, r.ConfirmPassword = "bad", "short", "short"
		}, validation.MsgWeakPassword},
		{"bad email reported before bad phone", func(r *validation.Registration) {
			r.Email, r.Phone = "bad", "abc"
		}, validation.MsgInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.modify(&r)
			err := r.Validate()
			require.ErrorIs(t, err, campuserrors.ErrValidation)
			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.msg, verr.Message)
		})
	}
}

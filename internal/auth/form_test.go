package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"", " A100 ", "a100", "\tMiXeD Case\n", "ÄBC", "  "} {
		once := Normalize(in)
		require.Equal(t, once, Normalize(once), "input %q", in)
	}
	require.Equal(t, "a100", Normalize(" A100 "))
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"jane@x.edu", "a@b.c", "first.last@uni.ac.id"} {
		require.True(t, ValidEmail(ok), ok)
	}
	for _, bad := range []string{"", "not-an-email", "a@b", "@b.c", "a@.c", "a b@c.d", "a@b."} {
		require.False(t, ValidEmail(bad), bad)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		form  Form
		field string
	}{
		{"blank identifier", Form{Identifier: "  ", Credential: "pw", Mode: ModeLogin}, "identifier"},
		{"missing credential", Form{Identifier: "A100", Mode: ModeLogin}, "credential"},
		{"login ignores name and email", Form{Identifier: "A100", Credential: "pw", Mode: ModeLogin}, ""},
		{"register needs name", Form{Identifier: "A100", Credential: "pw", Email: "a@b.c", Mode: ModeRegister}, "name"},
		{"register needs email", Form{Identifier: "A100", Credential: "pw", Name: "Jane", Mode: ModeRegister}, "email"},
		{"register rejects bad email", Form{Identifier: "A100", Credential: "pw", Name: "Jane", Email: "not-an-email", Mode: ModeRegister}, "email"},
		{"register ok", Form{Identifier: "A100", Credential: "pw", Name: "Jane", Email: "jane@x.edu", Mode: ModeRegister}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.form)
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			require.Equal(t, tc.field, ve.Field)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestFormResetAndSetMode(t *testing.T) {
	f := Form{Identifier: "A100", Name: "Jane", Email: "j@x.edu", Credential: "pw", Mode: ModeRegister}
	f.Reset()
	require.True(t, f.Empty())
	require.Equal(t, ModeRegister, f.Mode)

	f.Identifier = "x"
	f.SetMode(ModeLogin)
	require.True(t, f.Empty())
	require.Equal(t, ModeLogin, f.Mode)
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode(" Register ")
	require.True(t, ok)
	require.Equal(t, ModeRegister, m)
	_, ok = ParseMode("signup")
	require.False(t, ok)
}

func TestMessageAndOutcome(t *testing.T) {
	require.Equal(t, "identifier required", Message(&ValidationError{Field: "identifier", Message: "identifier required"}))
	require.Equal(t, "ok", Outcome(nil))
	require.Equal(t, "invalid_credential", Outcome(ErrInvalidCredential))
	require.Equal(t, "unexpected", Outcome(errors.New("boom")))
	require.NotEmpty(t, Message(ErrConnectivityRequired))
	require.NotEqual(t, Message(ErrNotFound), Message(ErrInvalidCredential))
}

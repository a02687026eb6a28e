package auth

import (
	"errors"
	"testing"
)

func TestAuthenticate_ValidKey(t *testing.T) {
	t.Parallel()

	svc := NewService("test-secret-key")
	principal, err := svc.Authenticate("test-secret-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if principal.APIKey != "test-secret-key" {
		t.Errorf("APIKey: got %q, want %q", principal.APIKey, "test-secret-key")
	}
	if len(principal.Roles) != 0 {
		t.Errorf("Roles: got %v, want empty", principal.Roles)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		presented string
	}{
		{name: "wrong key", presented: "wrong-key"},
		{name: "empty key", presented: ""},
		{name: "prefix of secret", presented: "test-secret"},
		{name: "secret plus suffix", presented: "test-secret-key-extra"},
		{name: "same length different content", presented: "test-secret-kex"},
	}

	svc := NewService("test-secret-key")
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			principal, err := svc.Authenticate(tt.presented)
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("error: got %v, want ErrInvalidKey", err)
			}
			if principal != nil {
				t.Errorf("principal: got %+v, want nil", principal)
			}
		})
	}
}

func TestAuthenticate_ErrorMessageUniform(t *testing.T) {
	t.Parallel()

	// Absent and wrong keys must be indistinguishable to the caller.
	svc := NewService("test-secret-key")
	_, errAbsent := svc.Authenticate("")
	_, errWrong := svc.Authenticate("nope")

	if errAbsent.Error() != errWrong.Error() {
		t.Errorf("messages differ: %q vs %q", errAbsent.Error(), errWrong.Error())
	}
}

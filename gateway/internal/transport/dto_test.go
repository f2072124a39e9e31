package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	t.Parallel()

	v := NewValidator()

	tests := []struct {
		name  string
		in    any
		valid bool
	}{
		{name: "register ok", in: RegisterRequest{Email: "a@b.co", Password: "secret", FirstName: "A", LastName: "B", RoleID: 3}, valid: true},
		{name: "register bad email", in: RegisterRequest{Email: "nope", Password: "secret", FirstName: "A", LastName: "B", RoleID: 3}},
		{name: "register short password", in: RegisterRequest{Email: "a@b.co", Password: "123", FirstName: "A", LastName: "B", RoleID: 3}},
		{name: "register missing role", in: RegisterRequest{Email: "a@b.co", Password: "secret", FirstName: "A", LastName: "B"}},
		{name: "login ok", in: LoginRequest{Email: "a@b.co", Password: "x"}, valid: true},
		{name: "login missing password", in: LoginRequest{Email: "a@b.co"}},
		{name: "ingestion ok", in: IngestionRequest{DocumentID: 1}, valid: true},
		{name: "ingestion missing document", in: IngestionRequest{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

package core

import (
	"testing"

	"github.com/pkg/errors"
)

func TestValidationErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "underlying error",
			err:  NewValidationError(errors.New("bad input")),
			want: "bad input",
		},
		{
			name: "single field",
			err:  NewValidationError(nil, FieldError{Field: "email", Error: "already enrolled"}),
			want: "email: already enrolled",
		},
		{
			name: "multiple fields",
			err: NewValidationError(nil,
				FieldError{Field: "email", Error: "this field is required"},
				FieldError{Field: "name", Error: "this field is required"},
			),
			want: "email: this field is required; name: this field is required",
		},
		{
			name: "underlying error wins over fields",
			err:  NewValidationError(errors.New("bad input"), FieldError{Field: "email", Error: "this field is required"}),
			want: "bad input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanString(t *testing.T) {
	tests := []struct {
		in    string
		lower bool
		want  string
	}{
		{in: "  Ada Lovelace ", want: "Ada Lovelace"},
		{in: "  ADA@X.edu ", lower: true, want: "ada@x.edu"},
		{in: "\t\n", want: ""},
	}
	for _, tt := range tests {
		if got := CleanString(tt.in, tt.lower); got != tt.want {
			t.Errorf("CleanString(%q, %v) = %q, want %q", tt.in, tt.lower, got, tt.want)
		}
	}
}

package user

import "testing"

func TestMakeResetToken(t *testing.T) {
	token, err := makeResetToken()
	if err != nil {
		t.Fatalf("makeResetToken() error = %v", err)
	}
	if len(token) != 2*resetTokenBytes {
		t.Errorf("makeResetToken() len = %d, want %d", len(token), 2*resetTokenBytes)
	}

	other, err := makeResetToken()
	if err != nil {
		t.Fatalf("makeResetToken() error = %v", err)
	}
	if token == other {
		t.Error("makeResetToken() generated the same token twice")
	}
}

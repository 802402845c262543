package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/eduspace/backend/apps/api/echo"
	"github.com/eduspace/backend/core/user"
)

func TestAccountAPI_register(t *testing.T) {
	app := setup(t)

	body := marchallObj(t, user.NewUser{Name: "Ada Lovelace", Email: "ada@x.edu", Password: "s3cretPass!", Role: user.RoleStudent})
	req, rec := newRequest(http.MethodPost, "/api/auth/register", body)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp TokenResponse
	unmarchallObj(t, rec.Body.Bytes(), &resp)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)

	tests := []httpTest{
		{
			name:     "admin role is rejected",
			body:     marchallObj(t, user.NewUser{Name: "Evil", Email: "evil@x.edu", Password: "s3cretPass!", Role: user.RoleAdmin}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown role is rejected",
			body:     marchallObj(t, user.NewUser{Name: "Odd", Email: "odd@x.edu", Password: "s3cretPass!", Role: "superuser"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "duplicate email is rejected",
			body:     marchallObj(t, user.NewUser{Name: "Other Ada", Email: "ada@x.edu", Password: "s3cretPass!", Role: user.RoleStudent}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing fields are rejected",
			body:     marchallObj(t, user.NewUser{Email: "ada@x.edu"}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/register", tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestAccountAPI_login(t *testing.T) {
	app := setup(t)
	createUser(t, "Ada Lovelace", "ada@x.edu", "s3cretPass!", user.RoleStudent)

	badCreds := marchallObj(t, errResponse{Message: user.ErrInvalidCredentials.Error()})
	tests := []httpTest{
		{
			name:     "ok",
			body:     marchallObj(t, LoginRequest{Email: "ada@x.edu", Password: "s3cretPass!"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "email is case-insensitive",
			body:     marchallObj(t, LoginRequest{Email: "ADA@X.edu", Password: "s3cretPass!"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Email: "ada@x.edu", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: badCreds,
		},
		{
			name:     "unknown email is not found",
			body:     marchallObj(t, LoginRequest{Email: "ghost@x.edu", Password: "s3cretPass!"}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, errResponse{Message: user.ErrNotFound.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			var resp TokenResponse
			unmarchallObj(t, rec.Body.Bytes(), &resp)
			assert.NotEmpty(t, resp.Token)
		})
	}
}

func TestAccountAPI_passwordReset(t *testing.T) {
	app := setup(t)
	ctx := context.Background()
	usr := createUser(t, "Ada Lovelace", "ada@x.edu", "s3cretPass!", user.RoleStudent)

	req, rec := newRequest(http.MethodPost, "/api/auth/forgot-password", marchallObj(t, map[string]string{"email": "ghost@x.edu"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, errResponse{Message: user.ErrNotFound.Error()}),
	}, rec)

	req, rec = newRequest(http.MethodPost, "/api/auth/forgot-password", marchallObj(t, map[string]string{"email": "ada@x.edu"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot-password code = %v; body %s", rec.Code, rec.Body.String())
	}

	stored, err := usrRepo.GetUserByID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if stored.ResetToken == "" {
		t.Fatal("reset token was not stored")
	}

	req, rec = newRequest(http.MethodPost, "/api/auth/reset-password/bogus-token", marchallObj(t, map[string]string{"password": "newPassword9"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, errResponse{Message: user.ErrInvalidResetToken.Error()}),
	}, rec)

	req, rec = newRequest(http.MethodPost, "/api/auth/reset-password/"+stored.ResetToken, marchallObj(t, map[string]string{"password": "newPassword9"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset-password code = %v; body %s", rec.Code, rec.Body.String())
	}

	// new password works
	req, rec = newRequest(http.MethodPost, "/api/auth/login", marchallObj(t, LoginRequest{Email: "ada@x.edu", Password: "newPassword9"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login after reset code = %v; body %s", rec.Code, rec.Body.String())
	}
}

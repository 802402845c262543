package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eduspace/backend/core"
)

// Role determines which endpoints an identity may call.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleFaculty Role = "faculty"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleFaculty, RoleStudent}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	Name             string    `json:"name" bson:"name"`
	Email            string    `json:"email" bson:"email"`
	PasswordHash     []byte    `json:"-" bson:"password_hash"`
	Role             Role      `json:"role" bson:"role"`
	ResetToken       string    `json:"-" bson:"reset_token,omitempty"`
	ResetTokenExpiry time.Time `json:"-" bson:"reset_token_expiry,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsFaculty() bool { return u.Role == RoleFaculty }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// Faculty is the institutional profile linked to a User with RoleFaculty.
type Faculty struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	FacultyID  string `json:"faculty_id" bson:"faculty_id"`
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	Department string `json:"department" bson:"department"`
}

// Student is the institutional profile linked to a User with RoleStudent.
type Student struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	StudentID  string `json:"student_id" bson:"student_id"`
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	Department string `json:"department" bson:"department"`
	BatchID    string `json:"batch_id,omitempty" bson:"batch_id,omitempty"`
}

// Batch is a named cohort of students imported together.
type Batch struct {
	ID        string       `json:"id" bson:"_id,omitempty"`
	BatchName string       `json:"batchName" bson:"batch_name"`
	Students  []BatchEntry `json:"students" bson:"students"`
}

type BatchEntry struct {
	StudentID  string `json:"id" bson:"student_id"`
	Name       string `json:"name" bson:"name"`
	Email      string `json:"email" bson:"email"`
	Department string `json:"department" bson:"department"`
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,role"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(nu.Email)
}

// NewFaculty contains information needed for an admin to provision a faculty
// account together with its institutional profile.
type NewFaculty struct {
	FacultyID  string `json:"faculty_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Department string `json:"department" validate:"required"`
}

func (nf *NewFaculty) Validate(svc *Service) error {
	nf.FacultyID = core.CleanString(nf.FacultyID)
	nf.Name = core.CleanString(nf.Name)
	nf.Email = core.CleanString(nf.Email, true /* lower */)
	nf.Department = core.CleanString(nf.Department)

	if err := core.Validate.Struct(nf); err != nil {
		return err
	}
	if err := svc.checkEmailUniqueness(nf.Email); err != nil {
		return err
	}
	return svc.checkFacultyUniqueness(nf.FacultyID, nf.Email)
}

type ResetUserPassword struct {
	Token    string `json:"token,omitempty" validate:"required"`
	Password string `json:"password,omitempty" validate:"required"`
}

func (rp ResetUserPassword) Validate() error { return core.Validate.Struct(rp) }

package course

import (
	"time"

	"github.com/eduspace/backend/core"
)

type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "Pending"
	SubmissionGraded  SubmissionStatus = "Graded"
)

type (
	// Course owns its enrollment list and assignments; every child mutation is
	// a single write on the parent document.
	Course struct {
		ID          string       `json:"id" bson:"_id,omitempty"`
		Title       string       `json:"title" bson:"title"`
		Description string       `json:"description" bson:"description"`
		Department  string       `json:"department" bson:"department"`
		FacultyID   string       `json:"faculty_id" bson:"faculty_id"`
		StudentIDs  []string     `json:"student_ids" bson:"student_ids"`
		Assignments []Assignment `json:"assignments" bson:"assignments"`
		CreatedAt   time.Time    `json:"created_at" bson:"created_at"` // UTC
		UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"` // UTC
	}

	// Assignment lives embedded in its Course and is addressed by a stable
	// generated id.
	Assignment struct {
		ID          string       `json:"id" bson:"id"`
		CO          string       `json:"co" bson:"co"`
		Title       string       `json:"title" bson:"title"`
		Description string       `json:"description,omitempty" bson:"description,omitempty"`
		DueDate     time.Time    `json:"due_date" bson:"due_date"`
		Submissions []Submission `json:"submissions" bson:"submissions"`
	}

	Submission struct {
		StudentID   string           `json:"student_id" bson:"student_id"`
		SubmittedAt time.Time        `json:"submitted_at" bson:"submitted_at"`
		FileURL     string           `json:"file_url" bson:"file_url"`
		Status      SubmissionStatus `json:"status" bson:"status"`
		Grade       *int             `json:"grade,omitempty" bson:"grade,omitempty"`
		Feedback    string           `json:"feedback,omitempty" bson:"feedback,omitempty"`
	}

	// Material holds one course's material entries, keyed by the course.
	Material struct {
		ID        string          `json:"id" bson:"_id,omitempty"`
		CourseID  string          `json:"course_id" bson:"course_id"`
		Materials []MaterialEntry `json:"materials" bson:"materials"`
	}

	MaterialEntry struct {
		ID          string    `json:"id" bson:"id"`
		CO          string    `json:"co" bson:"co"`
		Title       string    `json:"title" bson:"title"`
		Description string    `json:"description,omitempty" bson:"description,omitempty"`
		FileURL     string    `json:"file_url" bson:"file_url"`
		CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	}
)

// IsEnrolled reports whether the student is in the course roster.
func (c *Course) IsEnrolled(studentID string) bool {
	for _, id := range c.StudentIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// IsMember reports whether the user owns or is enrolled in the course.
func (c *Course) IsMember(userID string) bool {
	return c.FacultyID == userID || c.IsEnrolled(userID)
}

func (c *Course) assignmentIndex(assignmentID string) int {
	for i := range c.Assignments {
		if c.Assignments[i].ID == assignmentID {
			return i
		}
	}
	return -1
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Department  string `json:"department" validate:"required"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	nc.Department = core.CleanString(nc.Department)
	return core.Validate.Struct(nc)
}

type NewAssignment struct {
	CO          string    `json:"co" validate:"required,cotag"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

func (na *NewAssignment) Validate() error {
	na.CO = core.CleanString(na.CO)
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return core.Validate.Struct(na)
}

type NewMaterial struct {
	CO          string `json:"co" validate:"required,cotag"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (nm *NewMaterial) Validate() error {
	nm.CO = core.CleanString(nm.CO)
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	return core.Validate.Struct(nm)
}

type Grading struct {
	Grade    int    `json:"grade" validate:"min=0,max=100"`
	Feedback string `json:"feedback"`
}

func (g *Grading) Validate() error {
	g.Feedback = core.CleanString(g.Feedback)
	return core.Validate.Struct(g)
}

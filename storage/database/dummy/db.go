package dummydb

import (
	"sync"

	"github.com/eduspace/backend/core/chat"
	"github.com/eduspace/backend/core/course"
	"github.com/eduspace/backend/core/user"
)

type (
	DB struct {
		user     *userTable
		faculty  *facultyTable
		student  *studentTable
		batch    *batchTable
		course   *courseTable
		material *materialTable
		room     *roomTable
		message  *messageTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	facultyTable struct {
		sync.RWMutex
		table map[string]*user.Faculty
	}
	studentTable struct {
		sync.RWMutex
		table map[string]*user.Student
	}
	batchTable struct {
		sync.RWMutex
		table map[string]*user.Batch
	}
	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}
	materialTable struct {
		sync.RWMutex
		table map[string]*course.Material
	}
	roomTable struct {
		sync.RWMutex
		table map[string]*chat.Room
	}
	messageTable struct {
		sync.RWMutex
		table map[string]*chat.Message
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		faculty:  &facultyTable{table: make(map[string]*user.Faculty)},
		student:  &studentTable{table: make(map[string]*user.Student)},
		batch:    &batchTable{table: make(map[string]*user.Batch)},
		course:   &courseTable{table: make(map[string]*course.Course)},
		material: &materialTable{table: make(map[string]*course.Material)},
		room:     &roomTable{table: make(map[string]*chat.Room)},
		message:  &messageTable{table: make(map[string]*chat.Message)},
	}
	return db, nil
}

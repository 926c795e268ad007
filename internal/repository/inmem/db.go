// Package inmem holds map-backed repositories with the same method sets as
// the gorm repositories. Misses return gorm.ErrRecordNotFound so services
// behave exactly as they do against MySQL.
package inmem

import (
	"english_edu_backend/internal/model"
	"sync"
	"time"
)

type DB struct {
	mutex  sync.RWMutex
	lastID uint

	users       map[uint]*model.User
	courses     map[uint]*model.Course
	sections    map[uint]*model.Section
	lessons     map[uint]*model.Lesson
	exams       map[uint]*model.Exam
	questions   map[uint]*model.Question
	rubrics     map[uint]*model.Rubric
	submissions map[uint]*model.Submission
	orders      map[uint]*model.Order
	enrollments map[uint]*model.Enrollment
}

func NewDB() *DB {
	return &DB{
		users:       map[uint]*model.User{},
		courses:     map[uint]*model.Course{},
		sections:    map[uint]*model.Section{},
		lessons:     map[uint]*model.Lesson{},
		exams:       map[uint]*model.Exam{},
		questions:   map[uint]*model.Question{},
		rubrics:     map[uint]*model.Rubric{},
		submissions: map[uint]*model.Submission{},
		orders:      map[uint]*model.Order{},
		enrollments: map[uint]*model.Enrollment{},
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() uint {
	db.lastID++
	return db.lastID
}

// touch fills the bookkeeping columns gorm would set.
func (db *DB) touch(b *model.BaseModel) {
	now := time.Now()
	if b.ID == 0 {
		b.ID = db.nextID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// paginate returns the 1-based page of items.
func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return []T{}
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

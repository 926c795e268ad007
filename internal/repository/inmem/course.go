package inmem

import (
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"sort"
	"strings"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.touch(&course.BaseModel)
	c := *course
	c.Sections, c.Lessons = nil, nil
	r.db.courses[c.ID] = &c
	return nil
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if c, ok := r.db.courses[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *CourseRepository) FindDetail(id uint) (*model.Course, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	c, ok := r.db.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	for _, s := range r.db.sections {
		if s.CourseID == id {
			cp.Sections = append(cp.Sections, *s)
		}
	}
	for _, l := range r.db.lessons {
		if l.CourseID == id {
			cp.Lessons = append(cp.Lessons, *l)
		}
	}
	sort.Slice(cp.Sections, func(i, j int) bool {
		a, b := cp.Sections[i], cp.Sections[j]
		return a.Order < b.Order || (a.Order == b.Order && a.ID < b.ID)
	})
	sort.Slice(cp.Lessons, func(i, j int) bool {
		a, b := cp.Lessons[i], cp.Lessons[j]
		return a.Order < b.Order || (a.Order == b.Order && a.ID < b.ID)
	})
	return &cp, nil
}

func (r *CourseRepository) List(filter repository.CourseFilter, page, limit int) ([]model.Course, int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var cs []model.Course
	for _, c := range r.db.courses {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if filter.TeacherID > 0 && c.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(c.Title, filter.Keyword) {
			continue
		}
		cs = append(cs, *c)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID > cs[j].ID })
	return paginate(cs, page, limit), int64(len(cs)), nil
}

func (r *CourseRepository) Update(course *model.Course) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.touch(&course.BaseModel)
	c := *course
	c.Sections, c.Lessons = nil, nil
	r.db.courses[c.ID] = &c
	return nil
}

func (r *CourseRepository) Delete(id uint) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for lid, l := range r.db.lessons {
		if l.CourseID == id {
			delete(r.db.lessons, lid)
		}
	}
	for sid, s := range r.db.sections {
		if s.CourseID == id {
			delete(r.db.sections, sid)
		}
	}
	delete(r.db.courses, id)
	return nil
}

func (r *CourseRepository) CreateSection(s *model.Section) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.touch(&s.BaseModel)
	cp := *s
	r.db.sections[cp.ID] = &cp
	return nil
}

func (r *CourseRepository) FindSectionByID(id uint) (*model.Section, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if s, ok := r.db.sections[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *CourseRepository) UpdateSection(s *model.Section) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.sections[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.touch(&s.BaseModel)
	cp := *s
	r.db.sections[cp.ID] = &cp
	return nil
}

func (r *CourseRepository) DeleteSection(id uint) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, l := range r.db.lessons {
		if l.SectionID != nil && *l.SectionID == id {
			l.SectionID = nil
		}
	}
	delete(r.db.sections, id)
	return nil
}

func (r *CourseRepository) CreateLesson(l *model.Lesson) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.touch(&l.BaseModel)
	cp := *l
	r.db.lessons[cp.ID] = &cp
	return nil
}

func (r *CourseRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if l, ok := r.db.lessons[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *CourseRepository) UpdateLesson(l *model.Lesson) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.lessons[l.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.touch(&l.BaseModel)
	cp := *l
	r.db.lessons[cp.ID] = &cp
	return nil
}

func (r *CourseRepository) DeleteLesson(id uint) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	delete(r.db.lessons, id)
	return nil
}

func (r *CourseRepository) UpdateLessonAsset(id uint, key, url string, durationSeconds int) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	l, ok := r.db.lessons[id]
	if !ok {
		return nil
	}
	l.AssetKey = key
	l.AssetURL = url
	l.DurationSeconds = durationSeconds
	return nil
}

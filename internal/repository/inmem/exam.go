package inmem

import (
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"sort"

	"gorm.io/gorm"
)

type ExamRepository struct {
	db *DB
}

func NewExamRepository(db *DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func copyExam(e *model.Exam) *model.Exam {
	cp := *e
	cp.QuestionIDs = append([]uint(nil), e.QuestionIDs...)
	return &cp
}

func (r *ExamRepository) CreateExam(e *model.Exam) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.touch(&e.BaseModel)
	r.db.exams[e.ID] = copyExam(e)
	return nil
}

func (r *ExamRepository) FindExamByID(id uint) (*model.Exam, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if e, ok := r.db.exams[id]; ok {
		return copyExam(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ExamRepository) UpdateExam(e *model.Exam) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.exams[e.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.touch(&e.BaseModel)
	r.db.exams[e.ID] = copyExam(e)
	return nil
}

func (r *ExamRepository) DeleteExam(id uint) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	delete(r.db.exams, id)
	return nil
}

func (r *ExamRepository) ListExams(filter repository.ExamFilter, page, limit int) ([]model.Exam, int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var es []model.Exam
	for _, e := range r.db.exams {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.CreatorID > 0 && e.CreatorID != filter.CreatorID {
			continue
		}
		es = append(es, *copyExam(e))
	}
	sort.Slice(es, func(i, j int) bool { return es[i].ID > es[j].ID })
	return paginate(es, page, limit), int64(len(es)), nil
}

func (r *ExamRepository) FindQuestionsByIDs(ids []uint) ([]model.Question, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var qs []model.Question
	for _, id := range ids {
		if q, ok := r.db.questions[id]; ok {
			qs = append(qs, *q)
		}
	}
	return qs, nil
}

func (r *ExamRepository) CreateQuestion(q *model.Question) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.touch(&q.BaseModel)
	cp := *q
	r.db.questions[cp.ID] = &cp
	return nil
}

func (r *ExamRepository) FindQuestionByID(id uint) (*model.Question, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if q, ok := r.db.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ExamRepository) UpdateQuestion(q *model.Question) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.questions[q.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.touch(&q.BaseModel)
	cp := *q
	r.db.questions[cp.ID] = &cp
	return nil
}

func (r *ExamRepository) DeleteQuestion(id uint) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	delete(r.db.questions, id)
	return nil
}

func (r *ExamRepository) ListQuestions(filter repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var qs []model.Question
	for _, q := range r.db.questions {
		if filter.Skill != "" && q.Skill != filter.Skill {
			continue
		}
		if filter.Type != "" && q.Type != filter.Type {
			continue
		}
		if filter.Level != "" && q.Level != filter.Level {
			continue
		}
		qs = append(qs, *q)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return paginate(qs, page, limit), int64(len(qs)), nil
}

func (r *ExamRepository) CreateRubric(rb *model.Rubric) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.touch(&rb.BaseModel)
	cp := *rb
	r.db.rubrics[cp.ID] = &cp
	return nil
}

func (r *ExamRepository) FindRubricByID(id uint) (*model.Rubric, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if rb, ok := r.db.rubrics[id]; ok {
		cp := *rb
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *ExamRepository) UpdateRubric(rb *model.Rubric) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.rubrics[rb.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.touch(&rb.BaseModel)
	cp := *rb
	r.db.rubrics[cp.ID] = &cp
	return nil
}

func (r *ExamRepository) DeleteRubric(id uint) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	delete(r.db.rubrics, id)
	return nil
}

func (r *ExamRepository) ListRubrics(page, limit int) ([]model.Rubric, int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	rbs := make([]model.Rubric, 0, len(r.db.rubrics))
	for _, rb := range r.db.rubrics {
		rbs = append(rbs, *rb)
	}
	sort.Slice(rbs, func(i, j int) bool { return rbs[i].ID < rbs[j].ID })
	return paginate(rbs, page, limit), int64(len(rbs)), nil
}

func (r *ExamRepository) CountQuestionsUsingRubric(rubricID uint) (int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var n int64
	for _, q := range r.db.questions {
		if q.RubricID != nil && *q.RubricID == rubricID {
			n++
		}
	}
	return n, nil
}

func (r *ExamRepository) CountExamsUsingQuestion(questionID uint) (int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var n int64
	for _, e := range r.db.exams {
		for _, id := range e.QuestionIDs {
			if id == questionID {
				n++
				break
			}
		}
	}
	return n, nil
}

package inmem

import (
	"english_edu_backend/internal/model"
	"sort"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	db *DB
}

func NewSubmissionRepository(db *DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(s *model.Submission) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.touch(&s.BaseModel)
	cp := *s
	cp.Answers = append([]model.AnswerResult(nil), s.Answers...)
	r.db.submissions[cp.ID] = &cp
	return nil
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if s, ok := r.db.submissions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *SubmissionRepository) CountAttempts(examID, learnerID uint) (int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var n int64
	for _, s := range r.db.submissions {
		if s.ExamID == examID && s.LearnerID == learnerID {
			n++
		}
	}
	return n, nil
}

func (r *SubmissionRepository) ListByLearner(learnerID uint, page, limit int) ([]model.Submission, int64, error) {
	return r.list(func(s *model.Submission) bool { return s.LearnerID == learnerID }, page, limit)
}

func (r *SubmissionRepository) ListByExam(examID uint, page, limit int) ([]model.Submission, int64, error) {
	return r.list(func(s *model.Submission) bool { return s.ExamID == examID }, page, limit)
}

func (r *SubmissionRepository) list(match func(*model.Submission) bool, page, limit int) ([]model.Submission, int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var ss []model.Submission
	for _, s := range r.db.submissions {
		if match(s) {
			ss = append(ss, *s)
		}
	}
	sort.Slice(ss, func(i, j int) bool {
		if !ss[i].SubmittedAt.Equal(ss[j].SubmittedAt) {
			return ss[i].SubmittedAt.After(ss[j].SubmittedAt)
		}
		return ss[i].ID > ss[j].ID
	})
	return paginate(ss, page, limit), int64(len(ss)), nil
}

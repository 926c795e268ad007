package inmem

import (
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	r.db.touch(&user.BaseModel)
	u := *user
	r.db.users[u.ID] = &u
	return nil
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if u, ok := r.db.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *UserRepository) Update(user *model.User) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.db.touch(&user.BaseModel)
	u := *user
	r.db.users[u.ID] = &u
	return nil
}

func (r *UserRepository) TouchLastLogin(userID uint, at time.Time) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if u, ok := r.db.users[userID]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (r *UserRepository) List(filter repository.UserFilter, page, limit int) ([]model.User, int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var users []model.User
	for _, u := range r.db.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Disabled != nil && u.Disabled != *filter.Disabled {
			continue
		}
		if filter.Search != "" && !strings.Contains(u.Name, filter.Search) && !strings.Contains(u.Email, filter.Search) {
			continue
		}
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	return paginate(users, page, limit), int64(len(users)), nil
}

func (r *UserRepository) SetDisabled(userID uint, disabled bool) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if u, ok := r.db.users[userID]; ok {
		u.Disabled = disabled
	}
	return nil
}

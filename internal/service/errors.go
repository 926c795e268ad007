package service

import (
	"english_edu_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// lookupErr 将查询错误转换为 NotFound 或 Upstream
func lookupErr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NotFoundf("%s %d not found", what, id)
	}
	return util.Upstream("database", err)
}

func storeErr(err error) error {
	return util.Upstream("database", err)
}

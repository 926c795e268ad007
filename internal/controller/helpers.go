package controller

import (
	"english_edu_backend/internal/util"
	"errors"
)

func isForbidden(err error) bool {
	return errors.Is(err, util.ErrForbidden)
}

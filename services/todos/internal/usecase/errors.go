package usecase

import (
	"errors"
	"fmt"
	"strings"

	"todos/services/todos/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("invalid input")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func requireOrganization(s entity.Session) error {
	if s.OrganizationID == "" {
		return fmt.Errorf("%w: no active organization", ErrForbidden)
	}
	return nil
}

// slugify keeps ASCII letters and digits of name, joins the runs with '-'
// and appends a short random suffix so slugs stay unique.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	if len(base) > 40 {
		base = strings.TrimSuffix(base[:40], "-")
	}
	suffix := uuid.New().String()[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

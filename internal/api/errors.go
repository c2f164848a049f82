package api

import (
	"errors"

	"github.com/NathanielJL/polsim-sub000/internal/reputation"
)

func isNotFound(err error) bool {
	return errors.Is(err, reputation.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, reputation.ErrDuplicateEvent)
}

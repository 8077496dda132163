package logic

import (
	"errors"
	"fmt"

	"github.com/blues/takeover/internal/calc"
)

var (
	ErrTakeoverNotFound     = errors.New("takeover not found")
	ErrContributionNotFound = errors.New("contribution not found")
	ErrUnauthorized         = errors.New("caller is not allowed to perform this action")

	ErrTakeoverExists     = fmt.Errorf("%w: takeover already exists", calc.ErrStateConflict)
	ErrDuplicateSignature = fmt.Errorf("%w: transaction signature already recorded", calc.ErrStateConflict)
)

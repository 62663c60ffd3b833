package domain

import "errors"

// Validation errors: malformed input rejected before any mutation.
var (
	ErrInvalidUserContext   = errors.New("user context is missing a user id")
	ErrInvalidSourceType    = errors.New("invalid xp source type (must be habit, task, goal, milestone or checkin)")
	ErrInvalidXPReward      = errors.New("xp reward must be between 0 and 1000000")
	ErrAmountOutOfRange     = errors.New("amount exceeds the supported range")
	ErrInvalidTierTable     = errors.New("invalid level tier table")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidInstallments  = errors.New("installments count must be between 1 and 360")
	ErrInvalidInstallment   = errors.New("edited installment amount leaves no room for the final installment")
	ErrInvalidFrequency     = errors.New("unsupported recurring frequency (must be monthly)")
	ErrInvalidHorizon       = errors.New("recurring horizon must be between 1 and 60")
	ErrInvalidDate          = errors.New("date is required")
	ErrInvalidGoalType      = errors.New("invalid goal type (must be accumulative or checklist)")
	ErrInvalidGoalTarget    = errors.New("goal target must be greater than zero")
	ErrInvalidProgressDelta = errors.New("progress delta must be non-zero and keep the goal value in range")
	ErrInvalidGoalOperation = errors.New("operation not supported for this goal type")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrTitleTooLong         = errors.New("title is too long (max 100 chars)")
)

// Conflict errors: the current state forbids the transition; nothing changes.
var (
	ErrAlreadyCompleted       = errors.New("already completed")
	ErrNotCompleted           = errors.New("not completed")
	ErrIrreversibleCompletion = errors.New("completion cannot be reverted")
	ErrGoalAlreadyComplete    = errors.New("goal is already complete")
	ErrGoalArchived           = errors.New("goal is archived")
	ErrGoalNotArchived        = errors.New("goal is not archived")
	ErrInstallmentAlreadyPaid = errors.New("installment is already paid")
	ErrAlreadySettled         = errors.New("recurring expense is already settled")
	ErrVersionConflict        = errors.New("record version conflict")
)

// Lookup errors.
var (
	ErrUnauthorized        = errors.New("record belongs to another user")
	ErrHabitNotFound       = errors.New("habit not found")
	ErrCompletionNotFound  = errors.New("completion record not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrMilestoneNotFound   = errors.New("milestone not found")
	ErrPurchaseNotFound    = errors.New("card purchase not found")
	ErrInstallmentNotFound = errors.New("card installment not found")
	ErrRecurringNotFound   = errors.New("recurring expense not found")
)

var validationErrors = []error{
	ErrInvalidUserContext, ErrInvalidSourceType, ErrInvalidXPReward, ErrInvalidTierTable,
	ErrInvalidAmount, ErrAmountOutOfRange, ErrInvalidInstallments, ErrInvalidInstallment, ErrInvalidFrequency,
	ErrInvalidHorizon, ErrInvalidDate, ErrInvalidGoalType, ErrInvalidGoalTarget,
	ErrInvalidProgressDelta, ErrInvalidGoalOperation, ErrTitleEmpty, ErrTitleTooLong,
	ErrHabitTitleTooLong, ErrHabitDescTooLong, ErrInvalidColor, ErrInvalidEmail, ErrPasswordTooShort,
	ErrInvalidTimezone,
}

var conflictErrors = []error{
	ErrAlreadyCompleted, ErrNotCompleted, ErrIrreversibleCompletion, ErrGoalAlreadyComplete,
	ErrGoalArchived, ErrGoalNotArchived, ErrInstallmentAlreadyPaid, ErrAlreadySettled,
	ErrVersionConflict, ErrHabitArchived, ErrEmailAlreadyExists,
}

var notFoundErrors = []error{
	ErrHabitNotFound, ErrCompletionNotFound, ErrTaskNotFound, ErrGoalNotFound, ErrMilestoneNotFound,
	ErrPurchaseNotFound, ErrInstallmentNotFound, ErrRecurringNotFound, ErrUserNotFound,
}

func IsValidation(err error) bool { return isAny(err, validationErrors) }

func IsConflict(err error) bool { return isAny(err, conflictErrors) }

func IsNotFound(err error) bool { return isAny(err, notFoundErrors) }

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

package services

import "fintrack/internal/apperr"

var (
	ErrInvalidKind          = apperr.New(apperr.InvalidInput, "kind must be income or expense")
	ErrInvalidAmount        = apperr.New(apperr.InvalidInput, "amount must be positive")
	ErrAmountPrecision      = apperr.New(apperr.InvalidInput, "amount has more decimals than the currency allows")
	ErrConvertedToZero      = apperr.New(apperr.InvalidInput, "converted amount rounds to zero")
	ErrCategoryRequired     = apperr.New(apperr.InvalidInput, "category is required")
	ErrDateRequired         = apperr.New(apperr.InvalidInput, "date is required")
	ErrInvalidRate          = apperr.New(apperr.InvalidInput, "exchange rate must be positive")
	ErrInvalidPaging        = apperr.New(apperr.InvalidInput, "limit and offset must not be negative")
	ErrInvalidDateRange     = apperr.New(apperr.InvalidInput, "date from must not be after date to")
	ErrAccountConflict      = apperr.New(apperr.InvalidInput, "cannot set and clear the account at once")
	ErrAmountRequired       = apperr.New(apperr.InvalidInput, "amount required for variable-price template")
	ErrBudgetTarget         = apperr.New(apperr.InvalidInput, "budget needs exactly one of category or tag")
	ErrIdentityPair         = apperr.New(apperr.InvalidInput, "rate needs two different currencies")
	ErrForbidden            = apperr.New(apperr.Forbidden, "record belongs to another owner")
	ErrForeignReference     = apperr.New(apperr.Forbidden, "referenced record belongs to another owner")
	ErrEntryNotFound        = apperr.New(apperr.NotFound, "entry not found")
	ErrAccountNotFound      = apperr.New(apperr.NotFound, "account not found")
	ErrCategoryNotFound     = apperr.New(apperr.NotFound, "category not found")
	ErrTagNotFound          = apperr.New(apperr.NotFound, "tag not found")
	ErrTemplateNotFound     = apperr.New(apperr.NotFound, "template not found")
	ErrBudgetNotFound       = apperr.New(apperr.NotFound, "budget not found")
	ErrTransferNotFound     = apperr.New(apperr.NotFound, "transfer not found")
	ErrRateNotFound         = apperr.New(apperr.NotFound, "exchange rate not found")
	ErrAccountArchived      = apperr.New(apperr.PreconditionFailed, "account is archived")
	ErrAccountHasEntries    = apperr.New(apperr.PreconditionFailed, "account still has entries")
	ErrCurrencyImmutable    = apperr.New(apperr.PreconditionFailed, "account currency cannot change")
	ErrDefaultArchived      = apperr.New(apperr.PreconditionFailed, "archived account cannot be default")
	ErrSameAccountTransfer  = apperr.New(apperr.PreconditionFailed, "cannot transfer to same account")
	ErrTransferLegReadOnly  = apperr.New(apperr.PreconditionFailed, "transfer legs cannot be edited; delete and recreate the transfer")
	ErrNotTransfer          = apperr.New(apperr.PreconditionFailed, "entry is not a transfer leg")
	ErrTemplateNoCategory   = apperr.New(apperr.PreconditionFailed, "template has no category; set one before using it")
	ErrUnbalancedTransfer   = apperr.New(apperr.Internal, "transfer legs are not balanced")
	ErrIncompleteTransfer   = apperr.New(apperr.Internal, "transfer pair is incomplete")
)

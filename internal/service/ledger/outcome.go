package ledger

import (
	"errors"

	"github.com/icingerpower/AmzBooks-sub000/internal/domain"
)

// Outcome is what a record operation did to the ledger.
type Outcome int

const (
	// OutcomeCreated: a new lineage was started with a Draft row.
	OutcomeCreated Outcome = iota + 1
	// OutcomeDraftUpdated: the Draft head was overwritten in place.
	OutcomeDraftUpdated
	// OutcomeUnchanged: the Published head already holds the same facts.
	OutcomeUnchanged
	// OutcomeCorrected: a reversal and a new version were appended.
	OutcomeCorrected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeDraftUpdated:
		return "draft_updated"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeCorrected:
		return "corrected"
	}
	return "unknown"
}

// Category is the user-facing classification of a record call.
type Category int

const (
	CategoryRecorded Category = iota + 1
	CategoryNothingChanged
	CategoryCorrected
	CategoryRejected
	CategoryStorageFailure
)

func (c Category) String() string {
	switch c {
	case CategoryRecorded:
		return "recorded"
	case CategoryNothingChanged:
		return "nothing changed"
	case CategoryCorrected:
		return "a correction was recorded"
	case CategoryRejected:
		return "rejected: malformed input"
	case CategoryStorageFailure:
		return "internal storage failure"
	}
	return "unknown"
}

// Classify maps the result of a record call to its user-facing category.
// Input errors (validation, empty posting, unknown lineage on a strict
// update) are rejections. Any other error is a storage failure, rows missing
// underneath a transaction included.
func Classify(outcome Outcome, err error) Category {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation),
			errors.Is(err, domain.ErrEmptyPosting),
			errors.Is(err, domain.ErrUnknownLineage):
			return CategoryRejected
		}
		return CategoryStorageFailure
	}
	switch outcome {
	case OutcomeUnchanged:
		return CategoryNothingChanged
	case OutcomeCorrected:
		return CategoryCorrected
	}
	return CategoryRecorded
}

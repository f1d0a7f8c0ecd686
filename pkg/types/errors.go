package domain

import "fmt"

// ErrorKind is the machine-readable classification of a run failure.
type ErrorKind string

// Error kind constants.
const (
	KindUnknownItem     ErrorKind = "unknown_item"
	KindSearchNoResults ErrorKind = "search_no_results"
	KindAddFailed       ErrorKind = "add_failed"
	KindAuthRequired    ErrorKind = "authentication_required"
	KindSetupRequired   ErrorKind = "setup_required"
)

// Exit codes surfaced at the CLI boundary.
const (
	ExitOK            = 0
	ExitUnknownItem   = 1
	ExitUsage         = 2
	ExitStoreFailure  = 10
	ExitAddFailed     = 11
	ExitInternalError = 99
)

// Error is a structured, user-actionable run failure: a machine-readable
// kind plus human context and a suggested next step. It is never used for
// ordinary "not found" results, only for conditions that abort a run.
type Error struct {
	Kind     ErrorKind
	Code     int
	Short    string
	Context  string
	NextStep string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Short, e.Context)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Format renders the error in the fixed three-line operator format.
func (e *Error) Format() string {
	return fmt.Sprintf(
		"ERROR [%d]: %s\n  Context: %s\n  Next step: %s\n",
		e.Code, e.Short, e.Context, e.NextStep,
	)
}

// UnknownItemError reports an item with no catalog mapping. searchURL is a
// manual-search fallback link into the store.
func UnknownItemError(item, searchURL, listName, moveToList string) *Error {
	return &Error{
		Kind:    KindUnknownItem,
		Code:    ExitUnknownItem,
		Short:   "Unknown/unmapped item",
		Context: fmt.Sprintf("Item %q has no mapping in the product catalog", item),
		NextStep: fmt.Sprintf(
			"Search and add manually: %s then re-run. "+
				"If this is non-grocery, move it to another list with: "+
				"grocer move --list %q --item %q --to %q",
			searchURL, listName, item, moveToList,
		),
	}
}

// SearchNoResultsError reports that the store search returned nothing
// usable for a resolved product.
func SearchNoResultsError(item, searchURL string) *Error {
	return &Error{
		Kind:     KindSearchNoResults,
		Code:     ExitStoreFailure,
		Short:    "Store search returned no results",
		Context:  fmt.Sprintf("Item %q did not return any add-to-cart results", item),
		NextStep: fmt.Sprintf("Search and add manually: %s then re-run", searchURL),
	}
}

// AddFailedError reports that the add-then-verify cycle did not converge.
func AddFailedError(item string, attempts int, url string) *Error {
	return &Error{
		Kind:     KindAddFailed,
		Code:     ExitAddFailed,
		Short:    "Failed to add item to cart",
		Context:  fmt.Sprintf("Item %q, attempted %d times", item, attempts),
		NextStep: fmt.Sprintf("Add manually: %s then re-run", url),
	}
}

// AuthRequiredError reports that the store session could not be established.
func AuthRequiredError(detail string) *Error {
	return &Error{
		Kind:     KindAuthRequired,
		Code:     ExitStoreFailure,
		Short:    "Store login required",
		Context:  detail,
		NextStep: "Check HYVEE_EMAIL/HYVEE_PASSWORD and re-run",
	}
}

// TasksAuthError reports that the task-list API refused or lacked
// credentials; the one-time consent flow must be (re)run.
func TasksAuthError(tokenPath string, err error) *Error {
	return &Error{
		Kind:     KindAuthRequired,
		Code:     ExitStoreFailure,
		Short:    "Task list authentication required",
		Context:  fmt.Sprintf("Could not obtain an access token from %s", tokenPath),
		NextStep: "Re-run the one-time OAuth consent flow to regenerate the token file",
		Err:      err,
	}
}

// SetupRequiredError reports that the browser automation itself could not
// start; remediation is external to the run.
func SetupRequiredError(detail string) *Error {
	return &Error{
		Kind:     KindSetupRequired,
		Code:     ExitStoreFailure,
		Short:    "Browser automation setup required",
		Context:  detail,
		NextStep: "Install Chrome/Chromium (or set browser.bin) and re-run",
	}
}

// Package cart defines the shopping-cart capability interface and the
// reconciler that brings the live cart in line with a resolved target
// list. Business logic depends only on the Capability interface, never on
// the browser driver, which keeps the reconciler testable with in-memory
// fakes.
package cart

import "context"

// Snapshot is one observation of the live cart: the set of product
// identifiers that could be read plus every display text seen. Either
// side may be incomplete; page inspection is best effort.
type Snapshot struct {
	IDs          map[string]struct{}
	DisplayTexts []string
}

// HasID reports whether the snapshot observed the given product identifier.
func (s *Snapshot) HasID(id string) bool {
	if s == nil || id == "" {
		return false
	}
	_, ok := s.IDs[id]
	return ok
}

// Candidate is one purchasable result located in the store.
type Candidate struct {
	Name      string
	Price     string
	URL       string
	ProductID string
	AddLabel  string
}

// Credentials holds the store login.
type Credentials struct {
	Email    string
	Password string
}

// Capability is the narrow interface the reconciler needs from a store
// driver. Implementations: the Hy-Vee browser driver and test fakes.
type Capability interface {
	// Snapshot observes the live cart contents.
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Locate finds a purchasable candidate for a display name or a
	// product URL. It returns (nil, nil) when the store has nothing.
	Locate(ctx context.Context, query string) (*Candidate, error)

	// Add invokes the store's add-to-cart action for a located
	// candidate. A false return means the action did not take; the
	// caller re-verifies against a fresh snapshot either way.
	Add(ctx context.Context, c *Candidate) (bool, error)

	// IsAuthenticated reports whether the store session is valid.
	IsAuthenticated(ctx context.Context) (bool, error)

	// Login establishes a store session.
	Login(ctx context.Context, creds Credentials) error
}

package models

import (
	"strings"

	dErrors "github.com/agaskrobot/fenix-university-registry/pkg/domain-errors"
)

// MaxNameLength bounds display names; anything longer is almost certainly
// caller error rather than a real institution name.
const MaxNameLength = 256

// University is the registry's single record type.
//
// Invariants:
//   - Name is non-empty (many universities may share a name)
//   - AccountID is the registry-wide primary key, unique and immutable
//     once the record is created
//
// Records are never updated or deleted; the registry is append-only.
type University struct {
	Name      string `json:"name"`
	AccountID string `json:"account_id"`
}

// NewUniversity validates inputs and constructs a record. Whitespace-only
// names and account IDs are rejected up front so the store layers never see
// degenerate keys.
func NewUniversity(name, accountID string) (*University, error) {
	name = strings.TrimSpace(name)
	accountID = strings.TrimSpace(accountID)

	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "university name is required")
	}
	if len(name) > MaxNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "university name is too long")
	}
	if accountID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "account id is required")
	}

	return &University{Name: name, AccountID: accountID}, nil
}

// Entry pairs a record with its primary key, mirroring the shape of the
// primary index for full listings.
type Entry struct {
	AccountID  string     `json:"account_id"`
	University University `json:"university"`
}

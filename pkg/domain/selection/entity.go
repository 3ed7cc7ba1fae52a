// Package selection models the permission selection set: the reusable
// aggregate of chosen modules, scoped resource picks and global permission
// values, anchored to one company and optionally one branch.
package selection

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// SelectionSet is the central aggregate. Child rows live in link tables and
// are only mutated through the synchronizer, the cloner, the bootstrapper and
// the save-globals batch operation.
type SelectionSet struct {
	id        shared.ID
	companyID shared.ID
	branchID  *shared.ID
	notes     string
	createdAt time.Time
}

// NewSelectionSet creates an empty selection set anchored at a company and
// optionally a branch. Whether the branch belongs to the company is checked
// by the caller against catalog data; the aggregate only enforces presence.
func NewSelectionSet(companyID shared.ID, branchID *shared.ID, notes string) (*SelectionSet, error) {
	if companyID.IsZero() {
		return nil, fmt.Errorf("%w: companyID is required", shared.ErrValidation)
	}
	if branchID != nil && branchID.IsZero() {
		return nil, fmt.Errorf("%w: branchID must not be zero when present", shared.ErrValidation)
	}
	return &SelectionSet{
		id:        shared.NewID(),
		companyID: companyID,
		branchID:  branchID,
		notes:     strings.TrimSpace(notes),
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstitute recreates a SelectionSet from persistence.
func Reconstitute(id, companyID shared.ID, branchID *shared.ID, notes string, createdAt time.Time) *SelectionSet {
	return &SelectionSet{id: id, companyID: companyID, branchID: branchID, notes: notes, createdAt: createdAt}
}

func (s *SelectionSet) ID() shared.ID        { return s.id }
func (s *SelectionSet) CompanyID() shared.ID { return s.companyID }
func (s *SelectionSet) BranchID() *shared.ID { return s.branchID }
func (s *SelectionSet) Notes() string        { return s.notes }
func (s *SelectionSet) CreatedAt() time.Time { return s.createdAt }

// HasBranch reports whether the set is anchored to a branch.
func (s *SelectionSet) HasBranch() bool {
	return s.branchID != nil && !s.branchID.IsZero()
}

// UpdateNotes replaces the free-text notes.
func (s *SelectionSet) UpdateNotes(notes string) {
	s.notes = strings.TrimSpace(notes)
}

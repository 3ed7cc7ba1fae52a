// Package template models reusable access templates ("model user" profiles):
// named preselections that are cloned into new requests instead of being
// referenced by them.
package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/erpacceso/api/pkg/domain/shared"
)

// AccessTemplate owns an ordered list of selection set items. Templates never
// carry person data; they only capture the selection shape.
type AccessTemplate struct {
	id         shared.ID
	name       string
	department string
	roleName   string
	isActive   bool
	notes      string
	createdAt  time.Time
	updatedAt  time.Time
}

// NewAccessTemplate creates a template. Names are unique across templates.
func NewAccessTemplate(name, department, roleName, notes string) (*AccessTemplate, error) {
	name = shared.NormalizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name is required", shared.ErrValidation)
	}
	now := time.Now().UTC()
	return &AccessTemplate{
		id:         shared.NewID(),
		name:       name,
		department: shared.NormalizeName(department),
		roleName:   shared.NormalizeName(roleName),
		isActive:   true,
		notes:      strings.TrimSpace(notes),
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstitute recreates an AccessTemplate from persistence.
func Reconstitute(id shared.ID, name, department, roleName string, isActive bool, notes string, createdAt, updatedAt time.Time) *AccessTemplate {
	return &AccessTemplate{
		id: id, name: name, department: department, roleName: roleName,
		isActive: isActive, notes: notes, createdAt: createdAt, updatedAt: updatedAt,
	}
}

func (t *AccessTemplate) ID() shared.ID        { return t.id }
func (t *AccessTemplate) Name() string         { return t.name }
func (t *AccessTemplate) Department() string   { return t.department }
func (t *AccessTemplate) RoleName() string     { return t.roleName }
func (t *AccessTemplate) IsActive() bool       { return t.isActive }
func (t *AccessTemplate) Notes() string        { return t.notes }
func (t *AccessTemplate) CreatedAt() time.Time { return t.createdAt }
func (t *AccessTemplate) UpdatedAt() time.Time { return t.updatedAt }

// Deactivate retires the template without breaking requests built from it.
func (t *AccessTemplate) Deactivate() {
	t.isActive = false
	t.updatedAt = time.Now().UTC()
}

// Activate re-enables the template.
func (t *AccessTemplate) Activate() {
	t.isActive = true
	t.updatedAt = time.Now().UTC()
}

// Item wraps one selection set inside a template.
type Item struct {
	id             shared.ID
	templateID     shared.ID
	selectionSetID shared.ID
	order          int
	notes          string
	createdAt      time.Time
}

// NewItem creates a template item.
func NewItem(templateID, selectionSetID shared.ID, order int, notes string) (*Item, error) {
	if templateID.IsZero() || selectionSetID.IsZero() {
		return nil, fmt.Errorf("%w: templateID and selectionSetID are required", shared.ErrValidation)
	}
	if order < 0 {
		return nil, fmt.Errorf("%w: order must not be negative", shared.ErrValidation)
	}
	return &Item{
		id:             shared.NewID(),
		templateID:     templateID,
		selectionSetID: selectionSetID,
		order:          order,
		notes:          strings.TrimSpace(notes),
		createdAt:      time.Now().UTC(),
	}, nil
}

// ReconstituteItem recreates an Item from persistence.
func ReconstituteItem(id, templateID, selectionSetID shared.ID, order int, notes string, createdAt time.Time) *Item {
	return &Item{id: id, templateID: templateID, selectionSetID: selectionSetID, order: order, notes: notes, createdAt: createdAt}
}

func (i *Item) ID() shared.ID             { return i.id }
func (i *Item) TemplateID() shared.ID     { return i.templateID }
func (i *Item) SelectionSetID() shared.ID { return i.selectionSetID }
func (i *Item) Order() int                { return i.order }
func (i *Item) Notes() string             { return i.notes }
func (i *Item) CreatedAt() time.Time      { return i.createdAt }

package app

import (
	"context"
	"fmt"

	"github.com/erpacceso/api/pkg/domain/globalcat"
	"github.com/erpacceso/api/pkg/domain/request"
	"github.com/erpacceso/api/pkg/domain/scopecat"
	"github.com/erpacceso/api/pkg/domain/selection"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/domain/template"
	"github.com/erpacceso/api/pkg/domain/visibility"
)

// In-memory fakes for the domain repositories. State lives in plain maps and
// slices so tests can seed and inspect it directly.

type fakeSelectionRepo struct {
	sets      map[shared.ID]*selection.SelectionSet
	snapshots map[shared.ID]*selection.Snapshot

	createdWithSnapshot map[shared.ID]*selection.Snapshot

	replacedActions  []*selection.ActionValue
	replacedMatrix   []*selection.MatrixGrant
	replacedPayments []*selection.PaymentGrant
	replaceCalls     int

	insertedActions  []*selection.ActionValue
	insertedMatrix   []*selection.MatrixGrant
	insertedPayments []*selection.PaymentGrant
	insertCalls      int

	deleted []shared.ID
}

func newFakeSelectionRepo() *fakeSelectionRepo {
	return &fakeSelectionRepo{
		sets:                make(map[shared.ID]*selection.SelectionSet),
		snapshots:           make(map[shared.ID]*selection.Snapshot),
		createdWithSnapshot: make(map[shared.ID]*selection.Snapshot),
	}
}

func (f *fakeSelectionRepo) add(set *selection.SelectionSet) {
	f.sets[set.ID()] = set
}

func (f *fakeSelectionRepo) Create(_ context.Context, s *selection.SelectionSet) error {
	f.sets[s.ID()] = s
	return nil
}

func (f *fakeSelectionRepo) GetByID(_ context.Context, id shared.ID) (*selection.SelectionSet, error) {
	set, ok := f.sets[id]
	if !ok {
		return nil, selection.ErrSelectionSetNotFound
	}
	return set, nil
}

func (f *fakeSelectionRepo) UpdateNotes(_ context.Context, s *selection.SelectionSet) error {
	if _, ok := f.sets[s.ID()]; !ok {
		return selection.ErrSelectionSetNotFound
	}
	f.sets[s.ID()] = s
	return nil
}

func (f *fakeSelectionRepo) Delete(_ context.Context, id shared.ID) error {
	if _, ok := f.sets[id]; !ok {
		return selection.ErrSelectionSetNotFound
	}
	delete(f.sets, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSelectionRepo) GetSnapshot(_ context.Context, id shared.ID) (*selection.Snapshot, error) {
	if _, ok := f.sets[id]; !ok {
		return nil, selection.ErrSelectionSetNotFound
	}
	if snap, ok := f.snapshots[id]; ok {
		return snap, nil
	}
	return &selection.Snapshot{}, nil
}

func (f *fakeSelectionRepo) CreateWithSnapshot(_ context.Context, s *selection.SelectionSet, snap *selection.Snapshot) error {
	f.sets[s.ID()] = s
	f.createdWithSnapshot[s.ID()] = snap
	f.snapshots[s.ID()] = snap
	return nil
}

func (f *fakeSelectionRepo) ReplaceGlobals(_ context.Context, id shared.ID, actions []*selection.ActionValue, matrix []*selection.MatrixGrant, payments []*selection.PaymentGrant) error {
	if _, ok := f.sets[id]; !ok {
		return selection.ErrSelectionSetNotFound
	}
	f.replacedActions = actions
	f.replacedMatrix = matrix
	f.replacedPayments = payments
	f.replaceCalls++
	return nil
}

func (f *fakeSelectionRepo) InsertMissingGlobals(_ context.Context, id shared.ID, actions []*selection.ActionValue, matrix []*selection.MatrixGrant, payments []*selection.PaymentGrant) error {
	if _, ok := f.sets[id]; !ok {
		return selection.ErrSelectionSetNotFound
	}
	existingActions := make(map[shared.ID]struct{})
	for _, av := range f.insertedActions {
		existingActions[av.PermissionID()] = struct{}{}
	}
	for _, av := range actions {
		if _, ok := existingActions[av.PermissionID()]; !ok {
			f.insertedActions = append(f.insertedActions, av)
		}
	}
	existingMatrix := make(map[shared.ID]struct{})
	for _, mg := range f.insertedMatrix {
		existingMatrix[mg.PermissionID()] = struct{}{}
	}
	for _, mg := range matrix {
		if _, ok := existingMatrix[mg.PermissionID()]; !ok {
			f.insertedMatrix = append(f.insertedMatrix, mg)
		}
	}
	existingPayments := make(map[shared.ID]struct{})
	for _, pg := range f.insertedPayments {
		existingPayments[pg.PaymentMethodID()] = struct{}{}
	}
	for _, pg := range payments {
		if _, ok := existingPayments[pg.PaymentMethodID()]; !ok {
			f.insertedPayments = append(f.insertedPayments, pg)
		}
	}
	f.insertCalls++
	return nil
}

func (f *fakeSelectionRepo) ListActionValues(_ context.Context, _ shared.ID) ([]*selection.ActionValue, error) {
	return f.insertedActions, nil
}

func (f *fakeSelectionRepo) ListMatrixGrants(_ context.Context, _ shared.ID) ([]*selection.MatrixGrant, error) {
	return f.insertedMatrix, nil
}

func (f *fakeSelectionRepo) ListPaymentGrants(_ context.Context, _ shared.ID) ([]*selection.PaymentGrant, error) {
	return f.insertedPayments, nil
}

type fakeLinkRepo struct {
	rows []shared.ID

	deleteCalls int
	insertCalls int

	deleteErr error
	insertErr error
}

func (f *fakeLinkRepo) ListCatalogIDs(_ context.Context, _ shared.ID) ([]shared.ID, error) {
	return append([]shared.ID(nil), f.rows...), nil
}

func (f *fakeLinkRepo) DeleteExcept(_ context.Context, _ shared.ID, keep []shared.ID) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	keepSet := make(map[shared.ID]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	kept := f.rows[:0]
	for _, id := range f.rows {
		if _, ok := keepSet[id]; ok {
			kept = append(kept, id)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeLinkRepo) InsertMissing(_ context.Context, _ shared.ID, ids []shared.ID) error {
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	existing := make(map[shared.ID]struct{}, len(f.rows))
	for _, id := range f.rows {
		existing[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			continue
		}
		existing[id] = struct{}{}
		f.rows = append(f.rows, id)
	}
	return nil
}

type fakeRefCounter struct {
	count int64
}

func (f *fakeRefCounter) CountReferences(_ context.Context, _ shared.ID) (int64, error) {
	return f.count, nil
}

type fakeCompanyRepo struct {
	companies map[shared.ID]*scopecat.Company
}

func newFakeCompanyRepo(companies ...*scopecat.Company) *fakeCompanyRepo {
	f := &fakeCompanyRepo{companies: make(map[shared.ID]*scopecat.Company)}
	for _, c := range companies {
		f.companies[c.ID()] = c
	}
	return f
}

func (f *fakeCompanyRepo) Create(_ context.Context, c *scopecat.Company) error {
	f.companies[c.ID()] = c
	return nil
}

func (f *fakeCompanyRepo) GetByID(_ context.Context, id shared.ID) (*scopecat.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return nil, scopecat.ErrCompanyNotFound
	}
	return c, nil
}

func (f *fakeCompanyRepo) GetByName(_ context.Context, name string) (*scopecat.Company, error) {
	for _, c := range f.companies {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, scopecat.ErrCompanyNotFound
}

func (f *fakeCompanyRepo) ListActive(_ context.Context) ([]*scopecat.Company, error) {
	out := make([]*scopecat.Company, 0, len(f.companies))
	for _, c := range f.companies {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeBranchRepo struct {
	branches map[shared.ID]*scopecat.Branch
}

func newFakeBranchRepo(branches ...*scopecat.Branch) *fakeBranchRepo {
	f := &fakeBranchRepo{branches: make(map[shared.ID]*scopecat.Branch)}
	for _, b := range branches {
		f.branches[b.ID()] = b
	}
	return f
}

func (f *fakeBranchRepo) Create(_ context.Context, b *scopecat.Branch) error {
	f.branches[b.ID()] = b
	return nil
}

func (f *fakeBranchRepo) GetByID(_ context.Context, id shared.ID) (*scopecat.Branch, error) {
	b, ok := f.branches[id]
	if !ok {
		return nil, scopecat.ErrBranchNotFound
	}
	return b, nil
}

func (f *fakeBranchRepo) GetByName(_ context.Context, companyID shared.ID, name string) (*scopecat.Branch, error) {
	for _, b := range f.branches {
		if b.BelongsTo(companyID) && b.Name() == name {
			return b, nil
		}
	}
	return nil, scopecat.ErrBranchNotFound
}

func (f *fakeBranchRepo) ListActiveByCompany(_ context.Context, companyID shared.ID) ([]*scopecat.Branch, error) {
	var out []*scopecat.Branch
	for _, b := range f.branches {
		if b.BelongsTo(companyID) && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeBranchResourceRepo struct {
	resources []*scopecat.BranchResource
}

func (f *fakeBranchResourceRepo) Create(_ context.Context, r *scopecat.BranchResource) error {
	f.resources = append(f.resources, r)
	return nil
}

func (f *fakeBranchResourceRepo) ListByIDs(_ context.Context, kind scopecat.BranchResourceKind, ids []shared.ID) ([]*scopecat.BranchResource, error) {
	wanted := make(map[shared.ID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []*scopecat.BranchResource
	for _, r := range f.resources {
		if r.Kind() != kind {
			continue
		}
		if _, ok := wanted[r.ID()]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBranchResourceRepo) ListActiveByBranch(_ context.Context, kind scopecat.BranchResourceKind, branchID shared.ID) ([]*scopecat.BranchResource, error) {
	var out []*scopecat.BranchResource
	for _, r := range f.resources {
		if r.Kind() == kind && r.BelongsTo(branchID) && r.IsActive() {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCompanyResourceRepo struct {
	resources []*scopecat.CompanyResource
}

func (f *fakeCompanyResourceRepo) Create(_ context.Context, r *scopecat.CompanyResource) error {
	f.resources = append(f.resources, r)
	return nil
}

func (f *fakeCompanyResourceRepo) ListByIDs(_ context.Context, kind scopecat.CompanyResourceKind, ids []shared.ID) ([]*scopecat.CompanyResource, error) {
	wanted := make(map[shared.ID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []*scopecat.CompanyResource
	for _, r := range f.resources {
		if r.Kind() != kind {
			continue
		}
		if _, ok := wanted[r.ID()]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCompanyResourceRepo) ListActiveByCompany(_ context.Context, kind scopecat.CompanyResourceKind, companyID shared.ID) ([]*scopecat.CompanyResource, error) {
	var out []*scopecat.CompanyResource
	for _, r := range f.resources {
		if r.Kind() == kind && r.BelongsTo(companyID) && r.IsActive() {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCatalogRepo struct {
	actions  []*globalcat.ActionPermission
	matrix   []*globalcat.MatrixPermission
	payments []*globalcat.PaymentMethod
}

func (f *fakeCatalogRepo) CreateActionPermission(_ context.Context, p *globalcat.ActionPermission) error {
	f.actions = append(f.actions, p)
	return nil
}

func (f *fakeCatalogRepo) CreateMatrixPermission(_ context.Context, p *globalcat.MatrixPermission) error {
	f.matrix = append(f.matrix, p)
	return nil
}

func (f *fakeCatalogRepo) CreatePaymentMethod(_ context.Context, p *globalcat.PaymentMethod) error {
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeCatalogRepo) ListActiveActionPermissions(_ context.Context) ([]*globalcat.ActionPermission, error) {
	var out []*globalcat.ActionPermission
	for _, p := range f.actions {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListActiveMatrixPermissions(_ context.Context) ([]*globalcat.MatrixPermission, error) {
	var out []*globalcat.MatrixPermission
	for _, p := range f.matrix {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListActivePaymentMethods(_ context.Context) ([]*globalcat.PaymentMethod, error) {
	var out []*globalcat.PaymentMethod
	for _, p := range f.payments {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListActionPermissionsByIDs(_ context.Context, ids []shared.ID) ([]*globalcat.ActionPermission, error) {
	wanted := make(map[shared.ID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []*globalcat.ActionPermission
	for _, p := range f.actions {
		if _, ok := wanted[p.ID()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListMatrixPermissionsByIDs(_ context.Context, ids []shared.ID) ([]*globalcat.MatrixPermission, error) {
	wanted := make(map[shared.ID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []*globalcat.MatrixPermission
	for _, p := range f.matrix {
		if _, ok := wanted[p.ID()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) ListPaymentMethodsByIDs(_ context.Context, ids []shared.ID) ([]*globalcat.PaymentMethod, error) {
	wanted := make(map[shared.ID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []*globalcat.PaymentMethod
	for _, p := range f.payments {
		if _, ok := wanted[p.ID()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeVisibilityRepo struct {
	blocks []*visibility.Block
	rules  []*visibility.RuleWithLinks

	createdRules   []*visibility.Rule
	createdBlocks  []*visibility.Block
	removedRBlocks int
}

func (f *fakeVisibilityRepo) CreateBlock(_ context.Context, b *visibility.Block) error {
	f.blocks = append(f.blocks, b)
	f.createdBlocks = append(f.createdBlocks, b)
	return nil
}

func (f *fakeVisibilityRepo) GetBlockByCode(_ context.Context, code string) (*visibility.Block, error) {
	for _, b := range f.blocks {
		if b.Code() == code {
			return b, nil
		}
	}
	return nil, visibility.ErrBlockNotFound
}

func (f *fakeVisibilityRepo) ListActiveBlocks(_ context.Context) ([]*visibility.Block, error) {
	var out []*visibility.Block
	for _, b := range f.blocks {
		if b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeVisibilityRepo) UpdateBlock(_ context.Context, _ *visibility.Block) error { return nil }

func (f *fakeVisibilityRepo) CreateRule(_ context.Context, r *visibility.Rule) error {
	f.createdRules = append(f.createdRules, r)
	return nil
}

func (f *fakeVisibilityRepo) GetRuleByID(_ context.Context, id shared.ID) (*visibility.Rule, error) {
	for _, r := range f.rules {
		if r.Rule.ID().Equals(id) {
			return r.Rule, nil
		}
	}
	return nil, visibility.ErrRuleNotFound
}

func (f *fakeVisibilityRepo) UpdateRule(_ context.Context, _ *visibility.Rule) error { return nil }

func (f *fakeVisibilityRepo) AddTrigger(_ context.Context, _ *visibility.Trigger) error { return nil }

func (f *fakeVisibilityRepo) RemoveTrigger(_ context.Context, _ shared.ID) error { return nil }

func (f *fakeVisibilityRepo) AddRuleBlock(_ context.Context, _ *visibility.RuleBlock) error {
	return nil
}

func (f *fakeVisibilityRepo) RemoveRuleBlock(_ context.Context, _, _ shared.ID) error {
	f.removedRBlocks++
	return nil
}

func (f *fakeVisibilityRepo) ListActiveRulesWithLinks(_ context.Context) ([]*visibility.RuleWithLinks, error) {
	return f.rules, nil
}

type fakeRequestRepo struct {
	requests map[shared.ID]*request.AccessRequest
	items    map[shared.ID][]*request.Item

	updated []*request.AccessRequest
	deleted []shared.ID
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		requests: make(map[shared.ID]*request.AccessRequest),
		items:    make(map[shared.ID][]*request.Item),
	}
}

func (f *fakeRequestRepo) CreateWithItems(_ context.Context, r *request.AccessRequest, items []*request.Item) error {
	if len(items) == 0 {
		return request.ErrNoItems
	}
	f.requests[r.ID()] = r
	f.items[r.ID()] = items
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id shared.ID) (*request.AccessRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) Update(_ context.Context, r *request.AccessRequest) error {
	if _, ok := f.requests[r.ID()]; !ok {
		return request.ErrRequestNotFound
	}
	f.requests[r.ID()] = r
	f.updated = append(f.updated, r)
	return nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id shared.ID) error {
	if _, ok := f.requests[id]; !ok {
		return request.ErrRequestNotFound
	}
	delete(f.requests, id)
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRequestRepo) ListItems(_ context.Context, requestID shared.ID) ([]*request.Item, error) {
	return f.items[requestID], nil
}

func (f *fakeRequestRepo) AddItem(_ context.Context, item *request.Item) error {
	for _, existing := range f.items[item.RequestID()] {
		if existing.SelectionSetID().Equals(item.SelectionSetID()) {
			return request.ErrDuplicateSelectionSet
		}
	}
	f.items[item.RequestID()] = append(f.items[item.RequestID()], item)
	return nil
}

func (f *fakeRequestRepo) RemoveItem(_ context.Context, id shared.ID) error {
	for reqID, items := range f.items {
		for i, item := range items {
			if item.ID().Equals(id) {
				f.items[reqID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("request item %w", shared.ErrNotFound)
}

func (f *fakeRequestRepo) CountItemsBySelectionSet(_ context.Context, selectionSetID shared.ID) (int64, error) {
	var count int64
	for _, items := range f.items {
		for _, item := range items {
			if item.SelectionSetID().Equals(selectionSetID) {
				count++
			}
		}
	}
	return count, nil
}

type fakeTemplateRepo struct {
	templates map[shared.ID]*template.AccessTemplate
	items     map[shared.ID][]*template.Item
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{
		templates: make(map[shared.ID]*template.AccessTemplate),
		items:     make(map[shared.ID][]*template.Item),
	}
}

func (f *fakeTemplateRepo) CreateWithItems(_ context.Context, t *template.AccessTemplate, items []*template.Item) error {
	if len(items) == 0 {
		return template.ErrNoItems
	}
	for _, existing := range f.templates {
		if existing.Name() == t.Name() {
			return template.ErrTemplateNameExists
		}
	}
	f.templates[t.ID()] = t
	f.items[t.ID()] = items
	return nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id shared.ID) (*template.AccessTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, template.ErrTemplateNotFound
	}
	return t, nil
}

func (f *fakeTemplateRepo) GetByName(_ context.Context, name string) (*template.AccessTemplate, error) {
	for _, t := range f.templates {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, template.ErrTemplateNotFound
}

func (f *fakeTemplateRepo) ListActive(_ context.Context) ([]*template.AccessTemplate, error) {
	var out []*template.AccessTemplate
	for _, t := range f.templates {
		if t.IsActive() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Update(_ context.Context, t *template.AccessTemplate) error {
	if _, ok := f.templates[t.ID()]; !ok {
		return template.ErrTemplateNotFound
	}
	f.templates[t.ID()] = t
	return nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, id shared.ID) error {
	if _, ok := f.templates[id]; !ok {
		return template.ErrTemplateNotFound
	}
	delete(f.templates, id)
	delete(f.items, id)
	return nil
}

func (f *fakeTemplateRepo) ListItems(_ context.Context, templateID shared.ID) ([]*template.Item, error) {
	return f.items[templateID], nil
}

func (f *fakeTemplateRepo) CountItemsBySelectionSet(_ context.Context, selectionSetID shared.ID) (int64, error) {
	var count int64
	for _, items := range f.items {
		for _, item := range items {
			if item.SelectionSetID().Equals(selectionSetID) {
				count++
			}
		}
	}
	return count, nil
}

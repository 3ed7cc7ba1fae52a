package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/erpacceso/api/pkg/domain/request"
	"github.com/erpacceso/api/pkg/domain/shared"
	"github.com/erpacceso/api/pkg/domain/template"
	"github.com/erpacceso/api/pkg/logger"
)

// TemplateService manages access templates and the traffic between templates
// and requests. Selection sets always cross that boundary as clones, so a
// template and the requests built from it never share rows.
type TemplateService struct {
	templateRepo template.Repository
	requestRepo  request.Repository
	requestSvc   *RequestService
	cloneSvc     *CloneService
	logger       *logger.Logger
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(
	templateRepo template.Repository,
	requestRepo request.Repository,
	requestSvc *RequestService,
	cloneSvc *CloneService,
	log *logger.Logger,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		requestRepo:  requestRepo,
		requestSvc:   requestSvc,
		cloneSvc:     cloneSvc,
		logger:       log.With("service", "template"),
	}
}

// TemplateWithItems pairs a template with its ordered items.
type TemplateWithItems struct {
	Template *template.AccessTemplate
	Items    []*template.Item
}

// CreateTemplateFromRequest captures a submitted or approved request as a
// reusable template. Each wrapped selection set is cloned under its own
// anchor so later edits to the request leave the template intact.
func (s *TemplateService) CreateTemplateFromRequest(ctx context.Context, requestID shared.ID, name, department, roleName, notes string) (*TemplateWithItems, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.CanSeedTemplate() {
		return nil, fmt.Errorf("%w: only submitted or approved requests can seed a template", shared.ErrConflict)
	}

	if _, err := s.templateRepo.GetByName(ctx, name); err == nil {
		return nil, template.ErrTemplateNameExists
	} else if !errors.Is(err, template.ErrTemplateNotFound) {
		return nil, err
	}

	reqItems, err := s.requestRepo.ListItems(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if len(reqItems) == 0 {
		return nil, template.ErrNoItems
	}

	tmpl, err := template.NewAccessTemplate(name, department, roleName, notes)
	if err != nil {
		return nil, err
	}

	var cloneIDs []shared.ID
	tmplItems := make([]*template.Item, 0, len(reqItems))
	for _, reqItem := range reqItems {
		set, err := s.cloneSvc.selectionRepo.GetByID(ctx, reqItem.SelectionSetID())
		if err != nil {
			s.discardClones(ctx, cloneIDs)
			return nil, err
		}

		clone, err := s.cloneSvc.Clone(ctx, set.ID(), CloneInput{
			TargetCompanyID: set.CompanyID(),
			TargetBranchID:  set.BranchID(),
		})
		if err != nil {
			s.discardClones(ctx, cloneIDs)
			return nil, err
		}
		cloneIDs = append(cloneIDs, clone.ID())

		item, err := template.NewItem(tmpl.ID(), clone.ID(), reqItem.Order(), reqItem.Notes())
		if err != nil {
			s.discardClones(ctx, cloneIDs)
			return nil, err
		}
		tmplItems = append(tmplItems, item)
	}

	if err := s.templateRepo.CreateWithItems(ctx, tmpl, tmplItems); err != nil {
		s.discardClones(ctx, cloneIDs)
		return nil, err
	}

	s.logger.Info("template created from request",
		"template_id", tmpl.ID().String(),
		"request_id", requestID.String(),
		"items", len(tmplItems),
	)
	return &TemplateWithItems{Template: tmpl, Items: tmplItems}, nil
}

// MaterializeInput shapes the draft request built from a template. A nil
// TargetCompanyID keeps every cloned set under its source anchor; setting it
// re-scopes the clones to the target company and branch, dropping picks the
// target cannot own.
type MaterializeInput struct {
	Kind            request.Kind
	Applicant       string
	Notes           string
	TargetCompanyID *shared.ID
	TargetBranchID  *shared.ID
}

// MaterializeRequest builds a new draft request from a template, cloning
// every wrapped selection set so the request starts with its own editable
// copies.
func (s *TemplateService) MaterializeRequest(ctx context.Context, templateID shared.ID, input MaterializeInput) (*RequestWithItems, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !tmpl.IsActive() {
		return nil, fmt.Errorf("%w: template %q is retired", shared.ErrConflict, tmpl.Name())
	}

	tmplItems, err := s.templateRepo.ListItems(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(tmplItems) == 0 {
		return nil, template.ErrNoItems
	}

	var cloneIDs []shared.ID
	inputs := make([]RequestItemInput, 0, len(tmplItems))
	for _, tmplItem := range tmplItems {
		set, err := s.cloneSvc.selectionRepo.GetByID(ctx, tmplItem.SelectionSetID())
		if err != nil {
			s.discardClones(ctx, cloneIDs)
			return nil, err
		}

		target := CloneInput{
			TargetCompanyID: set.CompanyID(),
			TargetBranchID:  set.BranchID(),
		}
		if input.TargetCompanyID != nil {
			target.TargetCompanyID = *input.TargetCompanyID
			target.TargetBranchID = input.TargetBranchID
		}

		clone, err := s.cloneSvc.Clone(ctx, set.ID(), target)
		if err != nil {
			s.discardClones(ctx, cloneIDs)
			return nil, err
		}
		cloneIDs = append(cloneIDs, clone.ID())

		inputs = append(inputs, RequestItemInput{
			SelectionSetID: clone.ID(),
			Notes:          tmplItem.Notes(),
		})
	}

	result, err := s.requestSvc.CreateRequest(ctx, input.Kind, input.Applicant, input.Notes, inputs)
	if err != nil {
		s.discardClones(ctx, cloneIDs)
		return nil, err
	}

	s.logger.Info("request materialized from template",
		"template_id", templateID.String(),
		"request_id", result.Request.ID().String(),
	)
	return result, nil
}

// discardClones deletes selection sets cloned during a flow that failed
// before its aggregate was written. Best effort: nothing references the
// clones yet, and an undeleted leftover is reported rather than hidden.
func (s *TemplateService) discardClones(ctx context.Context, ids []shared.ID) {
	for _, id := range ids {
		if err := s.cloneSvc.selectionRepo.Delete(ctx, id); err != nil {
			s.logger.Error("failed to discard cloned selection set",
				"selection_set_id", id.String(), "error", err)
		}
	}
}

// GetTemplate retrieves a template with its items.
func (s *TemplateService) GetTemplate(ctx context.Context, id shared.ID) (*TemplateWithItems, error) {
	tmpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.templateRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return &TemplateWithItems{Template: tmpl, Items: items}, nil
}

// ListTemplates lists active templates.
func (s *TemplateService) ListTemplates(ctx context.Context) ([]*template.AccessTemplate, error) {
	return s.templateRepo.ListActive(ctx)
}

// DeactivateTemplate retires a template without touching requests built from
// it.
func (s *TemplateService) DeactivateTemplate(ctx context.Context, id shared.ID) error {
	tmpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	tmpl.Deactivate()
	return s.templateRepo.Update(ctx, tmpl)
}

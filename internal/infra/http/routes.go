package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erpacceso/api/internal/infra/http/handler"
)

// registerRoutes mounts every API route on the router.
func registerRoutes(r chi.Router, h *handler.Handlers) {
	r.Get("/healthz", h.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Scoped catalogs
		r.Get("/companies", h.Catalog.ListCompanies)
		r.Get("/companies/{id}/branches", h.Catalog.ListBranches)
		r.Get("/companies/{id}/control-panels", h.Catalog.ListControlPanels)
		r.Get("/companies/{id}/sellers", h.Catalog.ListSellers)
		r.Get("/branches/{id}/warehouses", h.Catalog.ListWarehouses)
		r.Get("/branches/{id}/cash-registers", h.Catalog.ListCashRegisters)

		// Module tree
		r.Get("/modules", h.Catalog.ListModules)
		r.Get("/modules/{id}/levels", h.Catalog.ListLevels)
		r.Get("/levels/{id}/sublevels", h.Catalog.ListSublevels)

		// Global catalogs
		r.Get("/action-permissions", h.Catalog.ListActionPermissions)
		r.Get("/matrix-permissions", h.Catalog.ListMatrixPermissions)
		r.Get("/payment-methods", h.Catalog.ListPaymentMethods)

		// Selection sets
		r.Route("/selection-sets", func(r chi.Router) {
			r.Post("/", h.Selection.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Selection.Get)
				r.Delete("/", h.Selection.Delete)
				r.Put("/notes", h.Selection.UpdateNotes)
				r.Get("/snapshot", h.Selection.GetSnapshot)
				r.Post("/clone", h.Selection.Clone)

				r.Put("/modules", h.Selection.SyncModules)
				r.Put("/levels", h.Selection.SyncLevels)
				r.Put("/sublevels", h.Selection.SyncSublevels)
				r.Put("/warehouses", h.Selection.SyncWarehouses)
				r.Put("/cash-registers", h.Selection.SyncCashRegisters)
				r.Put("/control-panels", h.Selection.SyncControlPanels)
				r.Put("/sellers", h.Selection.SyncSellers)

				r.Post("/globals/bootstrap", h.Globals.Bootstrap)
				r.Put("/globals", h.Globals.Save)

				r.Get("/visible-blocks", h.Visibility.ResolveForSet)
				r.Get("/allowed-action-groups", h.Visibility.AllowedActionGroups)
			})
		})

		// Visibility administration
		r.Route("/visibility", func(r chi.Router) {
			r.Post("/resolve", h.Visibility.ResolvePreview)

			r.Post("/blocks", h.Visibility.CreateBlock)
			r.Get("/blocks", h.Visibility.ListBlocks)
			r.Put("/blocks/{code}/status", h.Visibility.UpdateBlockStatus)

			r.Post("/rules", h.Visibility.CreateRule)
			r.Get("/rules/{id}", h.Visibility.GetRule)
			r.Put("/rules/{id}/status", h.Visibility.UpdateRuleStatus)
			r.Post("/rules/{id}/triggers", h.Visibility.AddTrigger)
			r.Delete("/triggers/{id}", h.Visibility.RemoveTrigger)
			r.Post("/rules/{id}/blocks", h.Visibility.AddRuleBlock)
			r.Delete("/rules/{id}/blocks/{blockID}", h.Visibility.RemoveRuleBlock)
		})

		// Access requests
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", h.Request.Create)
			r.Post("/from-template/{id}", h.Template.Materialize)
			r.Get("/{id}", h.Request.Get)
			r.Delete("/{id}", h.Request.Delete)
			r.Post("/{id}/submit", h.Request.Submit)
			r.Post("/{id}/approve", h.Request.Approve)
			r.Post("/{id}/reject", h.Request.Reject)
		})

		// Access templates
		r.Route("/templates", func(r chi.Router) {
			r.Post("/from-request/{id}", h.Template.CreateFromRequest)
			r.Get("/", h.Template.List)
			r.Get("/{id}", h.Template.Get)
			r.Post("/{id}/deactivate", h.Template.Deactivate)
		})
	})
}

package handler

// Handlers aggregates every HTTP handler for route registration.
type Handlers struct {
	Health     *HealthHandler
	Catalog    *CatalogHandler
	Selection  *SelectionHandler
	Globals    *GlobalsHandler
	Visibility *VisibilityHandler
	Request    *RequestHandler
	Template   *TemplateHandler
}

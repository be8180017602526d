package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all short URL routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler, healthHandler *HealthHandler) {
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/short-urls",
		Summary:       "Create short URL",
		Description:   "Creates a short URL, deriving the code from the stored identity or a custom slug.",
		Tags:          []string{"Short URLs"},
		DefaultStatus: http.StatusCreated,
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/short-urls/{code}",
		Summary:     "Resolve short code",
		Description: "Returns the full record behind a short code.",
		Tags:        []string{"Short URLs"},
	}, urlHandler.ResolveShortURL)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/short-urls/{code}/visits",
		Summary:     "List visits",
		Description: "Returns the visits recorded for a short code, optionally bounded by a date range.",
		Tags:        []string{"Visits"},
	}, urlHandler.ListVisits)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, healthHandler.Check)

	// Registered last so documented paths win over the catch-all code path.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"Short URLs"},
	}, urlHandler.RedirectToURL)
}

package swagger

import (
	"net/http"

	"github.com/frahmantamala/hospital-admin/api"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Handler() http.Handler {
	// The UI fetches the document from SpecHandler, mounted at the root.
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"),
	)
}

// SpecHandler serves the embedded OpenAPI document.
func SpecHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec())
	}
}

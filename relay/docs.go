package relay

import (
	_ "embed"
	"errors"
	"net/http"

	"github.com/n-chekan/ialla-api/fault"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// handleDocs serves the embedded API description.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	if len(openAPIDocument) == 0 {
		s.logError(r, errors.New("api documentation is empty"))
		s.writeError(w, fault.Internal(errors.New("api documentation unavailable")))
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

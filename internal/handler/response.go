package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// decodeJSON parses a request body, mapping malformed input to a 400
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ValidationError("Invalid JSON body")
	}
	return nil
}

package middleware

import (
	"net/http"

	apperrors "github.com/medvault/share-server-go/internal/errors"
	"github.com/medvault/share-server-go/internal/httputil"
)

func writeAppError(w http.ResponseWriter, err *apperrors.AppError) {
	httputil.WriteError(w, err)
}

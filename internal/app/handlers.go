// internal/app/handlers.go

package app

import (
	"fmt"
	"net/http"

	"SecretEndpoint-Go/internal/secrets"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// HandleSecret answers GET / with the latest value of the configured secret.
// Every request goes to the backend; nothing is cached.
func (a *App) HandleSecret(w http.ResponseWriter, r *http.Request) {
	logger := a.Logger.With(zap.String("request_id", requestIDFrom(r.Context())))

	if a.configErr != nil {
		logger.Error("Refusing request, configuration is incomplete", zap.Error(a.configErr))
		writeError(w, http.StatusInternalServerError)
		return
	}

	payload, err := a.Secrets.AccessLatest(r.Context(), a.Config.SecretName)
	if err != nil {
		logger.Error("Error accessing secret", zap.String("secret_name", a.Config.SecretName), zap.Error(err))
		writeError(w, statusFor(err))
		return
	}

	value, err := payload.Text()
	if err != nil {
		logger.Error("Error decoding secret", zap.String("secret", payload.Name), zap.Error(err))
		writeError(w, statusFor(err))
		return
	}

	logger.Debug("Secret served", zap.String("secret", payload.Name))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Secret value: %s\n", value)
}

// statusFor maps a backend error to the response status. Only the status
// text reaches the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, secrets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, secrets.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, secrets.ErrInvalidPayload):
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func writeError(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}

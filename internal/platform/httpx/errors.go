package httpx

import (
	"log/slog"
	"net/http"

	"github.com/shelfwise/shelfwise/internal/shared"
)

// Error codes exposed on the wire. The set is closed; see statusOf/codeOf.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeGeneral      = "GENERAL_ERROR"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

func statusOf(kind shared.Kind) int {
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindUnauthorized:
		return http.StatusUnauthorized
	case shared.KindGeneral:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func codeOf(kind shared.Kind) string {
	switch kind {
	case shared.KindValidation:
		return CodeValidation
	case shared.KindNotFound:
		return CodeNotFound
	case shared.KindUnauthorized:
		return CodeUnauthorized
	case shared.KindGeneral:
		return CodeGeneral
	default:
		return CodeInternal
	}
}

// Error writes exactly one failure envelope for err. The original cause is
// logged before the outcome is written; the body carries only the safe
// message and the machine code, never internal detail.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := shared.KindOf(err)
	if logger != nil {
		logger.Error("request failed",
			slog.String("code", codeOf(kind)),
			slog.Any("error", err),
		)
	}
	write(w, statusOf(kind), Envelope{
		Success: false,
		Message: shared.UserSafeMessage(err),
		Errors:  ErrorDetail{ErrorType: codeOf(kind)},
	})
}

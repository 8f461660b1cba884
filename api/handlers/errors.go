package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/civicsafe/civic-case-api/core"
)

// coreErrorStatus maps a core error kind to an HTTP status and writes the
// stable (kind, message) pair. Internal errors stay opaque.
func coreErrorStatus(w http.ResponseWriter, err error) {
	kind := core.KindOf(err)

	var status int
	switch kind {
	case core.KindNotFound:
		status = http.StatusNotFound
	case core.KindValidation:
		status = http.StatusBadRequest
	case core.KindInvalidTransition, core.KindInvalidOperation, core.KindConflict:
		status = http.StatusConflict
	case core.KindUnauthorized:
		status = http.StatusForbidden
	default:
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if kind == core.KindInternal {
		zap.S().With(err).Error("internal error")
		message = "internal error"
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"kind":  string(kind),
		"error": message,
	})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"blog/pkg/errcodes"
	"blog/pkg/validation"
)

var ErrBadPayload = fmt.Errorf("request body must be a JSON object")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("[writeJSON] failed to encode response data: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}

func writeCode(w http.ResponseWriter, status int, code errcodes.Code) {
	writeJSON(w, status, ErrorResponse{Message: code.Message(), Code: code})
}

func writeValidation(w http.ResponseWriter, errs validation.Errors) {
	writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: errs})
}

// decodePayload reads the body as a JSON object. An empty body is an empty
// object so that every field is reported as missing.
func decodePayload(r *http.Request) (validation.Payload, error) {
	defer r.Body.Close()

	var payload validation.Payload
	err := json.NewDecoder(r.Body).Decode(&payload)
	if errors.Is(err, io.EOF) {
		return validation.Payload{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if payload == nil {
		return validation.Payload{}, nil
	}

	return payload, nil
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"blog/pkg/errcodes"
	"blog/pkg/service"
	"blog/pkg/storage"
	"blog/pkg/validation"
)

func (api *API) registerHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	payload, err := decodePayload(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		log.Debugf("[registerHandler][%s] failed to decode request body: %v", sID, err)
		return
	}

	errs, err := validation.Run(r.Context(), payload, validation.RegisterRules(api.db)...)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[registerHandler][%s] validation could not run: %v", sID, err)
		return
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		log.Debugf("[registerHandler][%s] %v", sID, errs)
		return
	}

	email, _ := payload.Lookup("email")
	password, _ := payload.Lookup("password")
	user, err := api.svc.Users.Register(r.Context(), email.(string), password.(string))
	if errors.Is(err, storage.ErrEmailInUse) {
		// Lost a race with another registration of the same email.
		writeValidation(w, validation.Errors{{
			Value:    email,
			Msg:      errcodes.EmailAlreadyInUse.Message(),
			Param:    "email",
			Location: validation.Body,
			Code:     errcodes.EmailAlreadyInUse,
		}})
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[registerHandler][%s] Register() returned error: %v", sID, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{ID: user.ID.Hex(), Email: user.Email})
	log.Infof("[registerHandler][%s] user %s registered", sID, user.ID.Hex())
}

func (api *API) loginHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	defer r.Body.Close()

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		log.Debugf("[loginHandler][%s] failed to decode request body: %v", sID, err)
		return
	}

	token, err := api.svc.Users.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeCode(w, http.StatusUnauthorized, errcodes.InvalidCredentials)
		log.Debugf("[loginHandler][%s] invalid credentials from %v", sID, r.RemoteAddr)
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[loginHandler][%s] Login() returned error: %v", sID, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

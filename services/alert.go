package services

import (
	"errors"

	"checklistapp/optimistic"
	"checklistapp/repository"
	"checklistapp/store"
	"checklistapp/views"

	"github.com/golang/glog"
)

type AlertKind string

const (
	AlertConnectivity AlertKind = "connectivity"
	AlertValidation   AlertKind = "validation"
	AlertCredentials  AlertKind = "credentials"
	AlertNotFound     AlertKind = "not_found"
	AlertGeneric      AlertKind = "generic"
)

// Alert is what a user is told about a failed operation.
type Alert struct {
	Kind    AlertKind         `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Describe maps an error to the message shown for it. Unexpected errors are
// logged and shown generically.
func Describe(err error) Alert {
	var verr *repository.ValidationError
	switch {
	case errors.Is(err, store.ErrConnectivity):
		return Alert{Kind: AlertConnectivity, Message: "Could not reach the server. Check your connection and try again."}
	case errors.As(err, &verr):
		return Alert{Kind: AlertValidation, Message: "Some fields are missing or invalid.", Fields: verr.Fields}
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidToken):
		return Alert{Kind: AlertCredentials, Message: "Email or password is incorrect."}
	case errors.Is(err, ErrEmailTaken):
		return Alert{Kind: AlertValidation, Message: "That email is already registered."}
	case errors.Is(err, ErrCaptchaRejected):
		return Alert{Kind: AlertValidation, Message: "Captcha verification failed."}
	case errors.Is(err, store.ErrNotFound), errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, optimistic.ErrUnknownEntity), errors.Is(err, views.ErrUnknownView):
		return Alert{Kind: AlertNotFound, Message: "The item no longer exists."}
	}
	glog.Errorf("[alert]unexpected error: %s\n", err)
	return Alert{Kind: AlertGeneric, Message: "Something went wrong. Please try again."}
}

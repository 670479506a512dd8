package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/kiranakart/storefront/api/middleware"
	"github.com/kiranakart/storefront/api/responses"
	"github.com/kiranakart/storefront/internal/navigation"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/kiranakart/storefront/pkg/logger"
)

type pushPathPayload struct {
	Path string `json:"path"`
}

// NavigationPush records a visited path on the session's back stack.
func NavigationPush(stack *navigation.Stack, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if stack == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "navigation unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		var payload pushPathPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload"))
			return
		}

		if err := stack.Push(sessionID, payload.Path); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string][]string{"history": stack.History(sessionID)})
	}
}

// NavigationBack pops the stack and returns the path to go back to.
func NavigationBack(stack *navigation.Stack, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if stack == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "navigation unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		path, ok := stack.Pop(sessionID)
		responses.WriteSuccess(w, map[string]any{"path": path, "at_root": !ok})
	}
}

// NavigationHistory returns the session's visited paths, oldest first.
func NavigationHistory(stack *navigation.Stack, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if stack == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "navigation unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		responses.WriteSuccess(w, map[string][]string{"history": stack.History(sessionID)})
	}
}

// NavigationReset clears the session's back stack.
func NavigationReset(stack *navigation.Stack, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if stack == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "navigation unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(ctx)
		if sessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		stack.Reset(sessionID)
		responses.WriteSuccess(w, map[string]bool{"reset": true})
	}
}

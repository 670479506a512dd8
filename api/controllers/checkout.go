package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kiranakart/storefront/api/middleware"
	"github.com/kiranakart/storefront/api/responses"
	"github.com/kiranakart/storefront/internal/checkout"
	pkgerrors "github.com/kiranakart/storefront/pkg/errors"
	"github.com/kiranakart/storefront/pkg/logger"
)

func checkoutActor(ctx context.Context) checkout.Actor {
	return checkout.Actor{
		SessionID: middleware.SessionIDFromContext(ctx),
		Token:     middleware.TokenFromContext(ctx),
		ProfileID: middleware.ProfileIDFromContext(ctx),
	}
}

// CheckoutSummary returns the review screen: cart lines, totals, delivery
// options, and the minimum-order shortfall if any.
func CheckoutSummary(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actor := checkoutActor(ctx)
		if actor.SessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		dto, err := svc.Summary(ctx, actor)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// CheckoutSubmit places the order and clears the cart on success.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		actor := checkoutActor(ctx)
		if actor.SessionID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		var payload checkout.SubmitInput
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload"))
			return
		}

		confirmation, err := svc.Submit(ctx, actor, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, confirmation)
	}
}

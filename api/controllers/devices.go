package controllers

import (
	"net/http"

	"github.com/spot2go/spot2go-backend/api/responses"
	"github.com/spot2go/spot2go-backend/api/validators"
	"github.com/spot2go/spot2go-backend/internal/devices"
	pkgerrors "github.com/spot2go/spot2go-backend/pkg/errors"
	"github.com/spot2go/spot2go-backend/pkg/logger"
)

func DeviceRegister(svc devices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "device service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body devices.RegisterDeviceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

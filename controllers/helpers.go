package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/visitor-app/services"
	"github.com/yeremiapane/visitor-app/utils"
)

var ErrNoPermission = errors.New("you don't have permission to access this resource")

// identity is the authenticated caller, extracted from the context values
// set by the auth middleware.
type identity struct {
	UserID         uint
	OrganizationID uint
	IsAdmin        bool
}

func requestIdentity(c *gin.Context) (identity, bool) {
	userID, ok1 := c.Get("user_id")
	orgID, ok2 := c.Get("organization_id")
	isAdmin, _ := c.Get("is_admin")
	if !ok1 || !ok2 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("missing request identity"))
		return identity{}, false
	}

	id := identity{}
	if v, ok := userID.(uint); ok {
		id.UserID = v
	}
	if v, ok := orgID.(uint); ok {
		id.OrganizationID = v
	}
	if v, ok := isAdmin.(bool); ok {
		id.IsAdmin = v
	}
	if id.UserID == 0 || id.OrganizationID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("missing request identity"))
		return identity{}, false
	}
	return id, true
}

// requireAdmin is the explicit authorization gate called at the top of
// admin-only handlers.
func requireAdmin(c *gin.Context, id identity) bool {
	if !id.IsAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return false
	}
	return true
}

// respondServiceError maps the service error taxonomy to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrAlreadyClosed):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrValidation):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrPlanLimit):
		utils.RespondError(c, http.StatusPaymentRequired, err)
	case errors.Is(err, services.ErrExternalService):
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

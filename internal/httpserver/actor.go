package httpserver

import (
	"errors"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	middleware "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var errUnauthorized = errors.New("unauthorized")

// actorFrom builds the caller from what the JWT middleware put on the context.
func actorFrom(c echo.Context) (service.Actor, error) {
	s, _ := c.Get(middleware.CtxUserID).(string)
	userID, err := uuid.Parse(s)
	if err != nil || userID == uuid.Nil {
		return service.Actor{}, errUnauthorized
	}

	role := models.Role(stringValue(c, middleware.CtxRole))
	if !role.Valid() {
		return service.Actor{}, errUnauthorized
	}

	a := service.Actor{
		UserID: userID,
		Role:   role,
		Email:  stringValue(c, middleware.CtxEmail),
	}
	if v := stringValue(c, middleware.CtxVendorID); v != "" {
		vendorID, err := uuid.Parse(v)
		if err != nil {
			return service.Actor{}, errUnauthorized
		}
		a.VendorID = &vendorID
	}
	return a, nil
}

func stringValue(c echo.Context, key string) string {
	s, _ := c.Get(key).(string)
	return s
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

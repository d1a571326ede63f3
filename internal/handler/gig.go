// Package handler exposes the gig operations over HTTP: a single typed
// operation endpoint plus REST routes that mirror each operation. Both
// validate every required argument before calling the service.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-board/internal/service"
)

const maxBodyBytes = 1 << 20

// GigHandler serves gig operations.
type GigHandler struct {
	Service *service.GigService
	// OnWrite runs after a successful createGig, e.g. to invalidate cached listings.
	OnWrite func(ctx context.Context)
}

// NewGigHandler constructs a GigHandler and panics if svc is nil.
func NewGigHandler(svc *service.GigService, onWrite func(ctx context.Context)) *GigHandler {
	if svc == nil {
		panic("nil service passed to NewGigHandler")
	}
	return &GigHandler{Service: svc, OnWrite: onWrite}
}

// readBody reads at most maxBodyBytes of the request body. Larger bodies
// are rejected rather than truncated.
func readBody(c echo.Context) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return nil, &service.ValidationError{Field: "body", Reason: "unreadable"}
	}
	if len(raw) > maxBodyBytes {
		return nil, &service.ValidationError{Field: "body", Reason: "too large"}
	}
	return raw, nil
}

// CreateGig handles POST /v1/gigs. The body is a JSON object with the
// createGig arguments.
func (h *GigHandler) CreateGig(c echo.Context) error {
	raw, err := readBody(c)
	if err != nil {
		return h.fail(c, err)
	}
	args, err := jsonArguments("body", raw)
	if err != nil {
		return h.fail(c, err)
	}
	payload, err := h.create(c.Request().Context(), args)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, payload)
}

// GetAllGigs handles GET /v1/gigs?limit=&offset=.
func (h *GigHandler) GetAllGigs(c echo.Context) error {
	out, err := h.getAll(c.Request().Context(), queryArguments(c.QueryParams()))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetGigsByLocation handles GET /v1/gigs/location?limit=&offset=&location=.
func (h *GigHandler) GetGigsByLocation(c echo.Context) error {
	out, err := h.byLocation(c.Request().Context(), queryArguments(c.QueryParams()))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetGigsByCategory handles GET /v1/gigs/category?limit=&offset=&category=.
func (h *GigHandler) GetGigsByCategory(c echo.Context) error {
	out, err := h.byCategory(c.Request().Context(), queryArguments(c.QueryParams()))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *GigHandler) create(ctx context.Context, args arguments) (*service.CreateGigPayload, error) {
	in, err := args.newGig()
	if err != nil {
		return nil, err
	}
	payload, err := h.Service.CreateGig(ctx, in)
	if err != nil {
		return nil, err
	}
	if h.OnWrite != nil {
		h.OnWrite(ctx)
	}
	return payload, nil
}

func (h *GigHandler) getAll(ctx context.Context, args arguments) (*service.GigsList, error) {
	page, err := args.page()
	if err != nil {
		return nil, err
	}
	return h.Service.GetAllGigs(ctx, page)
}

func (h *GigHandler) byLocation(ctx context.Context, args arguments) (*service.GigsList, error) {
	page, err := args.page()
	if err != nil {
		return nil, err
	}
	location, err := args.optionalString("location")
	if err != nil {
		return nil, err
	}
	return h.Service.GetGigsByLocation(ctx, page, location)
}

func (h *GigHandler) byCategory(ctx context.Context, args arguments) (*service.GigsList, error) {
	page, err := args.page()
	if err != nil {
		return nil, err
	}
	category, err := args.optionalString("category")
	if err != nil {
		return nil, err
	}
	return h.Service.GetGigsByCategory(ctx, page, category)
}

// errorStatus maps an error kind to an HTTP status and a client message.
// Store failures are reported generically; details stay in the logs.
func errorStatus(err error) (int, string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, service.ErrTimeout):
		return http.StatusGatewayTimeout, "store timeout"
	case errors.Is(err, service.ErrActionFailed):
		return http.StatusInternalServerError, service.ErrActionFailed.Error()
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "request canceled"
	default:
		return http.StatusBadGateway, "store error"
	}
}

func (h *GigHandler) fail(c echo.Context, err error) error {
	status, msg := errorStatus(err)
	return c.JSON(status, echo.Map{"error": service.Kind(err), "message": msg})
}

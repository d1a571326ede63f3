package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gig-board/internal/service"
)

// operationRequest is the body of POST /v1/operations.
type operationRequest struct {
	Operation string          `json:"operation"`
	Variables json.RawMessage `json:"variables"`
}

// operationError is one entry of the errors array.
type operationError struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

// Execute handles POST /v1/operations: the single typed endpoint through
// which all four gig operations can be invoked by name. On success the
// result is returned under data.<operation>; on failure under errors.
func (h *GigHandler) Execute(c echo.Context) error {
	raw, err := readBody(c)
	if err != nil {
		return h.operationFail(c, err)
	}
	var req operationRequest
	if err := decodeObject(raw, &req); err != nil {
		return h.operationFail(c, &service.ValidationError{Field: "body", Reason: "must be a JSON object"})
	}
	args, err := jsonArguments("variables", req.Variables)
	if err != nil {
		return h.operationFail(c, err)
	}
	result, err := h.dispatch(c.Request().Context(), req.Operation, args)
	if err != nil {
		return h.operationFail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{req.Operation: result}})
}

func (h *GigHandler) dispatch(ctx context.Context, op string, args arguments) (any, error) {
	switch op {
	case service.OpCreateGig:
		return h.create(ctx, args)
	case service.OpGetAllGigs:
		return h.getAll(ctx, args)
	case service.OpGetGigsByLocation:
		return h.byLocation(ctx, args)
	case service.OpGetGigsByCategory:
		return h.byCategory(ctx, args)
	case "":
		return nil, &service.ValidationError{Field: "operation", Reason: "is required"}
	default:
		return nil, &service.ValidationError{Field: "operation", Reason: "unknown operation " + op}
	}
}

func (h *GigHandler) operationFail(c echo.Context, err error) error {
	status, msg := errorStatus(err)
	return c.JSON(status, echo.Map{"errors": []operationError{{Message: msg, Kind: service.Kind(err)}}})
}

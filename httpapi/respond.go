package httpapi

import (
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/events"

	"github.com/curioworks/curio/catalog"
)

type apiError struct {
	Error     string `json:"error"`
	ItemCount int    `json:"item_count,omitempty"`
	Committed int    `json:"committed_rows,omitempty"`
}

// errorResponse maps catalog errors onto HTTP statuses: validation 400,
// not-found 404, conflicts 409 with the referencing item count, partial
// writes 502 exposing the committed row count, everything else 500.
func (h *Handler) errorResponse(err error) events.APIGatewayProxyResponse {
	var (
		verr *catalog.ValidationError
		cerr *catalog.ConflictError
		perr *catalog.PartialWriteError
	)
	switch {
	case errors.As(err, &verr):
		return errorBody(400, verr.Error())
	case errors.Is(err, catalog.ErrNotFound):
		return errorBody(404, err.Error())
	case errors.As(err, &cerr):
		return jsonResponse(409, apiError{Error: cerr.Error(), ItemCount: cerr.ItemCount})
	case errors.As(err, &perr):
		h.log.Error("partial write", "item", perr.ItemID, "committed", perr.Committed, "attempted", perr.Attempted, "error", perr.Err)
		return jsonResponse(502, apiError{Error: perr.Error(), Committed: perr.Committed})
	default:
		h.log.Error("request failed", "error", err)
		return errorBody(500, "internal error")
	}
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return errorBody(500, "internal error")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func errorBody(status int, msg string) events.APIGatewayProxyResponse {
	return jsonResponse(status, apiError{Error: msg})
}

func notFoundResponse() events.APIGatewayProxyResponse {
	return errorBody(404, "not found")
}

func noContentResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: 204}
}

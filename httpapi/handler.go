// Package httpapi exposes the catalog over API Gateway proxy events.
// It is a thin I/O wrapper: routing, JSON codec, request validation,
// and error-to-status mapping. All state lives in the catalog and
// search packages.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"

	"github.com/curioworks/curio/catalog"
	"github.com/curioworks/curio/search"
)

// collections maps URL path segments to facet kinds.
var collections = map[string]catalog.FacetKind{
	"types":      catalog.FacetType,
	"subjects":   catalog.FacetSubject,
	"techniques": catalog.FacetTechnique,
	"periods":    catalog.FacetPeriod,
	"mediums":    catalog.FacetMedium,
}

// Handler routes API Gateway proxy requests to the catalog components.
type Handler struct {
	entities *catalog.Entities
	writer   *catalog.Writer
	planner  *search.Planner
	validate *validator.Validate
	log      *slog.Logger
}

// NewHandler creates the transport handler.
func NewHandler(entities *catalog.Entities, writer *catalog.Writer, planner *search.Planner, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		entities: entities,
		writer:   writer,
		planner:  planner,
		validate: validator.New(),
		log:      logger,
	}
}

type facetRequest struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

type facetUpdateRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
}

type contributorRequest struct {
	DisplayName  string                `json:"display_name" validate:"required"`
	Biography    string                `json:"biography"`
	Individual   *catalog.Individual   `json:"individual"`
	Organization *catalog.Organization `json:"organization"`
}

type contributorUpdateRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Biography   string `json:"biography"`
}

type contributorUpdateResponse struct {
	Contributor   *catalog.Contributor `json:"contributor"`
	AffectedItems int                  `json:"affected_items"`
}

// Handle dispatches one request. Designed as an AWS Lambda handler.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	segments := splitPath(req.Path)
	if len(segments) == 0 {
		return notFoundResponse(), nil
	}

	switch segments[0] {
	case "items":
		return h.routeItems(ctx, req, segments[1:]), nil
	case "search":
		return h.handleSearch(ctx, req), nil
	case "contributors":
		return h.routeContributors(ctx, req, segments[1:]), nil
	default:
		if kind, ok := collections[segments[0]]; ok {
			return h.routeFacets(ctx, req, kind, segments[1:]), nil
		}
	}
	return notFoundResponse(), nil
}

func (h *Handler) routeItems(ctx context.Context, req events.APIGatewayProxyRequest, rest []string) events.APIGatewayProxyResponse {
	switch {
	case len(rest) == 0 && req.HTTPMethod == "POST":
		return h.createItem(ctx, req)
	case len(rest) == 1 && req.HTTPMethod == "GET":
		return h.getItem(ctx, rest[0])
	case len(rest) == 1 && req.HTTPMethod == "PUT":
		return h.updateItem(ctx, req, rest[0])
	case len(rest) == 1 && req.HTTPMethod == "DELETE":
		return h.deleteItem(ctx, rest[0])
	}
	return notFoundResponse()
}

func (h *Handler) createItem(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var item catalog.Item
	if resp, ok := h.decode(req.Body, &item); !ok {
		return resp
	}
	created, err := h.writer.CreateItem(ctx, &item)
	if err != nil {
		return h.errorResponse(err)
	}
	return jsonResponse(201, created)
}

func (h *Handler) getItem(ctx context.Context, id string) events.APIGatewayProxyResponse {
	item, err := h.entities.GetItem(ctx, id)
	if err != nil {
		return h.errorResponse(err)
	}
	return jsonResponse(200, item)
}

func (h *Handler) updateItem(ctx context.Context, req events.APIGatewayProxyRequest, id string) events.APIGatewayProxyResponse {
	var item catalog.Item
	if resp, ok := h.decode(req.Body, &item); !ok {
		return resp
	}
	updated, err := h.writer.UpdateItem(ctx, id, &item)
	if err != nil {
		return h.errorResponse(err)
	}
	return jsonResponse(200, updated)
}

func (h *Handler) deleteItem(ctx context.Context, id string) events.APIGatewayProxyResponse {
	if err := h.writer.DeleteItem(ctx, id); err != nil {
		return h.errorResponse(err)
	}
	return noContentResponse()
}

func (h *Handler) routeFacets(ctx context.Context, req events.APIGatewayProxyRequest, kind catalog.FacetKind, rest []string) events.APIGatewayProxyResponse {
	switch {
	case len(rest) == 0 && req.HTTPMethod == "GET":
		facets, err := h.entities.ListFacets(ctx, kind)
		if err != nil {
			return h.errorResponse(err)
		}
		return jsonResponse(200, facets)
	case len(rest) == 0 && req.HTTPMethod == "POST":
		var body facetRequest
		if resp, ok := h.decode(req.Body, &body); !ok {
			return resp
		}
		facet, err := h.entities.CreateFacet(ctx, kind, body.Name, body.DisplayName)
		if err != nil {
			return h.errorResponse(err)
		}
		return jsonResponse(201, facet)
	case len(rest) == 1 && req.HTTPMethod == "GET":
		facet, err := h.entities.GetFacet(ctx, kind, rest[0])
		if err != nil {
			return h.errorResponse(err)
		}
		return jsonResponse(200, facet)
	case len(rest) == 1 && req.HTTPMethod == "PUT":
		var body facetUpdateRequest
		if resp, ok := h.decode(req.Body, &body); !ok {
			return resp
		}
		facet, err := h.entities.UpdateFacet(ctx, kind, rest[0], body.DisplayName)
		if err != nil {
			return h.errorResponse(err)
		}
		return jsonResponse(200, facet)
	case len(rest) == 1 && req.HTTPMethod == "DELETE":
		if err := h.entities.DeleteFacet(ctx, kind, rest[0]); err != nil {
			return h.errorResponse(err)
		}
		return noContentResponse()
	}
	return notFoundResponse()
}

func (h *Handler) routeContributors(ctx context.Context, req events.APIGatewayProxyRequest, rest []string) events.APIGatewayProxyResponse {
	switch {
	case len(rest) == 0 && req.HTTPMethod == "GET":
		contributors, err := h.entities.ListContributors(ctx)
		if err != nil {
			return h.errorResponse(err)
		}
		return jsonResponse(200, contributors)
	case len(rest) == 0 && req.HTTPMethod == "POST":
		var body contributorRequest
		if resp, ok := h.decode(req.Body, &body); !ok {
			return resp
		}
		created, err := h.entities.CreateContributor(ctx, &catalog.Contributor{
			DisplayName:  body.DisplayName,
			Biography:    body.Biography,
			Individual:   body.Individual,
			Organization: body.Organization,
		})
		if err != nil {
			return h.errorResponse(err)
		}
		return jsonResponse(201, created)
	case len(rest) == 1 && req.HTTPMethod == "GET":
		c, err := h.entities.GetContributor(ctx, rest[0])
		if err != nil {
			return h.errorResponse(err)
		}
		return jsonResponse(200, c)
	case len(rest) == 1 && req.HTTPMethod == "PUT":
		var body contributorUpdateRequest
		if resp, ok := h.decode(req.Body, &body); !ok {
			return resp
		}
		updated, affected, err := h.entities.UpdateContributor(ctx, rest[0], body.DisplayName, body.Biography)
		if err != nil {
			return h.errorResponse(err)
		}
		return jsonResponse(200, contributorUpdateResponse{Contributor: updated, AffectedItems: affected})
	case len(rest) == 1 && req.HTTPMethod == "DELETE":
		if err := h.entities.DeleteContributor(ctx, rest[0]); err != nil {
			return h.errorResponse(err)
		}
		return noContentResponse()
	}
	return notFoundResponse()
}

func (h *Handler) handleSearch(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if req.HTTPMethod != "GET" {
		return notFoundResponse()
	}
	result, err := h.planner.Search(ctx, searchRequest(req))
	if err != nil {
		return h.errorResponse(err)
	}
	return jsonResponse(200, result)
}

// searchRequest maps query-string parameters onto the planner request.
// Multi-value params carry the per-dimension selections.
func searchRequest(req events.APIGatewayProxyRequest) search.Request {
	single := req.QueryStringParameters
	multi := req.MultiValueQueryStringParameters

	values := func(name string) []string {
		if vs, ok := multi[name]; ok {
			return vs
		}
		if v, ok := single[name]; ok && v != "" {
			return []string{v}
		}
		return nil
	}
	intValue := func(name string) int {
		n, _ := strconv.Atoi(single[name])
		return n
	}
	priceValue := func(name string) *int64 {
		v, ok := single[name]
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		return &n
	}

	return search.Request{
		Query:        single["q"],
		Types:        values("types"),
		Subjects:     values("subjects"),
		Techniques:   values("techniques"),
		Periods:      values("periods"),
		Mediums:      values("mediums"),
		Contributors: values("contributors"),
		PriceMin:     priceValue("price_min"),
		PriceMax:     priceValue("price_max"),
		Sort:         search.Sort(single["sort"]),
		Page:         intValue("page"),
		Limit:        intValue("limit"),
	}
}

// decode unmarshals and validates a request body; on failure it returns
// the ready 400 response and ok=false.
func (h *Handler) decode(body string, v any) (events.APIGatewayProxyResponse, bool) {
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return errorBody(400, "invalid json body"), false
	}
	if err := h.validate.Struct(v); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) && len(verr) > 0 {
			return errorBody(400, "missing or invalid field: "+strings.ToLower(verr[0].Field())), false
		}
		return errorBody(400, "invalid request body"), false
	}
	return events.APIGatewayProxyResponse{}, true
}

func splitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

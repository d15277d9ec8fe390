package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*limit well inside int64.
	MaxPage = 1_000_000
)

// ListParams are the paging, search and sort options every list route accepts.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Desc   bool
}

func (p ListParams) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// SortDoc builds the sort document with _id as a stable tiebreaker.
func (p ListParams) SortDoc() bson.D {
	dir := 1
	if p.Desc {
		dir = -1
	}
	if p.Sort == "" || p.Sort == "_id" {
		return bson.D{{Key: "_id", Value: dir}}
	}
	return bson.D{{Key: p.Sort, Value: dir}, {Key: "_id", Value: dir}}
}

// ParseListParams reads page, limit, search, sort and order. Sort keys are
// mapped through allowed (query name -> document field); unknown keys fall
// back to defaultSort.
func ParseListParams(c echo.Context, defaultSort string, allowed map[string]string) ListParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	sort := defaultSort
	if field, ok := allowed[c.QueryParam("sort")]; ok {
		sort = field
	}

	desc := true
	switch strings.ToLower(c.QueryParam("order")) {
	case "asc":
		desc = false
	case "desc":
		desc = true
	default:
		// Names and prices read naturally ascending.
		if sort == "name" || sort == "price" {
			desc = false
		}
	}

	return ListParams{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.QueryParam("search")),
		Sort:   sort,
		Desc:   desc,
	}
}

// SearchFilter matches term case-insensitively against any of fields.
// The term is escaped so user input is never interpreted as a pattern.
func SearchFilter(term string, fields ...string) bson.M {
	if term == "" || len(fields) == 0 {
		return nil
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

// ParseObjectID parses a path or query id, returning a 400 on bad input.
func ParseObjectID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, BadRequest("Invalid " + what + " ID")
	}
	return id, nil
}

// OptionalObjectID returns nil for an empty string.
func OptionalObjectID(raw, what string) (*primitive.ObjectID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := ParseObjectID(raw, what)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func QueryFloat(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, BadRequest("Invalid value for " + name)
	}
	return &f, nil
}

func QueryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, BadRequest("Invalid value for " + name)
	}
	return n, nil
}

func QueryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, BadRequest("Invalid value for " + name)
	}
	return &b, nil
}

// QueryDate accepts RFC3339 or a plain YYYY-MM-DD date.
func QueryDate(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, BadRequest("Invalid date for " + name)
	}
	return &t, nil
}

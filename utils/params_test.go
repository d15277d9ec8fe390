package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func contextFor(target string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

var productSorts = map[string]string{"price": "price", "newest": "createdAt", "name": "name"}

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   ListParams
	}{
		{
			name:   "defaults",
			target: "/products",
			want:   ListParams{Page: 1, Limit: DefaultPageSize, Sort: "createdAt", Desc: true},
		},
		{
			name:   "explicit values",
			target: "/products?page=3&limit=5&search=%20drill%20&sort=price&order=desc",
			want:   ListParams{Page: 3, Limit: 5, Search: "drill", Sort: "price", Desc: true},
		},
		{
			name:   "price defaults ascending",
			target: "/products?sort=price",
			want:   ListParams{Page: 1, Limit: DefaultPageSize, Sort: "price", Desc: false},
		},
		{
			name:   "limit capped and bad page reset",
			target: "/products?page=-2&limit=5000",
			want:   ListParams{Page: 1, Limit: MaxPageSize, Sort: "createdAt", Desc: true},
		},
		{
			name:   "huge page clamped",
			target: "/products?page=922337203685477581&limit=12",
			want:   ListParams{Page: MaxPage, Limit: 12, Sort: "createdAt", Desc: true},
		},
		{
			name:   "unknown sort falls back",
			target: "/products?sort=password&order=asc",
			want:   ListParams{Page: 1, Limit: DefaultPageSize, Sort: "createdAt", Desc: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseListParams(contextFor(tt.target), "createdAt", productSorts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListParamsSkipAndSort(t *testing.T) {
	p := ListParams{Page: 3, Limit: 20, Sort: "price"}
	assert.Equal(t, int64(40), p.Skip())
	assert.Equal(t, int64(MaxPage-1)*MaxPageSize, ListParams{Page: MaxPage, Limit: MaxPageSize}.Skip())
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, p.SortDoc())
}

func TestSearchFilterEscapesInput(t *testing.T) {
	f := SearchFilter("1/2\" (bolt)", "name", "brand")
	require.NotNil(t, f)

	or := f["$or"].(bson.A)
	require.Len(t, or, 2)
	re := or[0].(bson.M)["name"].(primitive.Regex)
	assert.Equal(t, `1/2" \(bolt\)`, re.Pattern)
	assert.Equal(t, "i", re.Options)

	assert.Nil(t, SearchFilter("", "name"))
}

func TestParseObjectID(t *testing.T) {
	_, err := ParseObjectID("not-an-id", "product")
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Invalid product ID", appErr.Message)

	id := primitive.NewObjectID()
	got, err := ParseObjectID(id.Hex(), "product")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestQueryHelpers(t *testing.T) {
	c := contextFor("/x?minPrice=9.5&inStock=true&days=bad&from=2025-01-02")

	f, err := QueryFloat(c, "minPrice")
	require.NoError(t, err)
	assert.Equal(t, 9.5, *f)

	b, err := QueryBool(c, "inStock")
	require.NoError(t, err)
	assert.True(t, *b)

	_, err = QueryInt(c, "days", 30)
	assert.Error(t, err)

	n, err := QueryInt(c, "limit", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	d, err := QueryDate(c, "from")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
}

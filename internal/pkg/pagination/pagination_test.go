package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paramsFor(t *testing.T, query string) *Params {
	t.Helper()

	app := fiber.New()
	var params *Params
	app.Get("/", func(c *fiber.Ctx) error {
		params = FromRequest(c)
		return nil
	})

	req := httptest.NewRequest("GET", "/?"+query, nil)
	_, err := app.Test(req)
	require.NoError(t, err)
	return params
}

func TestFromRequestDefaults(t *testing.T) {
	params := paramsFor(t, "")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, DefaultLimit, params.Limit)
	assert.Equal(t, 0, params.Offset)
}

func TestFromRequestComputesOffset(t *testing.T) {
	params := paramsFor(t, "page=3&limit=10")
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Offset)
}

func TestFromRequestClampsBadValues(t *testing.T) {
	params := paramsFor(t, "page=-1&limit=0")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, DefaultLimit, params.Limit)

	params = paramsFor(t, "limit=5000")
	assert.Equal(t, MaxLimit, params.Limit)
}

func TestMetaTotalPages(t *testing.T) {
	params := &Params{Page: 1, Limit: 20}

	assert.Equal(t, 0, params.Meta(0).TotalPages)
	assert.Equal(t, 1, params.Meta(20).TotalPages)
	assert.Equal(t, 2, params.Meta(21).TotalPages)
}

package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationParamsDefaults(t *testing.T) {
	limit, offset, page := ParsePaginationParams(url.Values{})

	assert.Equal(t, uint64(DefaultLimit), limit)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(1), page)
}

func TestParsePaginationParams(t *testing.T) {
	values := url.Values{}
	values.Set("page", "4")
	values.Set("limit", "20")

	limit, offset, page := ParsePaginationParams(values)

	assert.Equal(t, uint64(20), limit)
	assert.Equal(t, uint64(60), offset)
	assert.Equal(t, uint64(4), page)
}

func TestParsePaginationParamsCapsLimit(t *testing.T) {
	values := url.Values{}
	values.Set("limit", "100000")

	limit, _, _ := ParsePaginationParams(values)
	assert.Equal(t, uint64(MaxLimit), limit)
}

func TestParsePaginationParamsIgnoresGarbage(t *testing.T) {
	values := url.Values{}
	values.Set("page", "-1")
	values.Set("limit", "abc")

	limit, offset, page := ParsePaginationParams(values)
	assert.Equal(t, uint64(DefaultLimit), limit)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(1), page)
}

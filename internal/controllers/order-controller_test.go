package controllers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renovation-system/internal/dto"
)

func TestParseOrderFilterDefaults(t *testing.T) {
	filter, err := parseOrderFilter(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), filter.Page)
	assert.Equal(t, uint64(10), filter.Limit)
	assert.Equal(t, dto.ScopePool, filter.Scope)
	assert.Nil(t, filter.Status)
	assert.Empty(t, filter.Search)
}

func TestParseOrderFilterFull(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("limit", "25")
	values.Set("search", "Ali")
	values.Set("scope", "mine")
	values.Set("status", "ZAVOD")
	values.Set("regionId", "7b6a3cc1-9f70-4f5e-8b86-9b9cf743a11b")
	values.Set("startDate", "2026-01-01")
	values.Set("endDate", "2026-02-01T00:00:00Z")

	filter, err := parseOrderFilter(values)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), filter.Page)
	assert.Equal(t, uint64(25), filter.Limit)
	assert.Equal(t, "Ali", filter.Search)
	assert.Equal(t, dto.ScopeMine, filter.Scope)
	require.NotNil(t, filter.Status)
	assert.Equal(t, "ZAVOD", *filter.Status)
	require.NotNil(t, filter.RegionID)
	assert.Equal(t, "7b6a3cc1-9f70-4f5e-8b86-9b9cf743a11b", filter.RegionID.String())
	require.NotNil(t, filter.StartDate)
	require.NotNil(t, filter.EndDate)
}

func TestParseOrderFilterBadUUID(t *testing.T) {
	values := url.Values{}
	values.Set("regionId", "42")

	_, err := parseOrderFilter(values)
	assert.Error(t, err)
}

func TestParseOrderFilterBadDate(t *testing.T) {
	values := url.Values{}
	values.Set("startDate", "вчера")

	_, err := parseOrderFilter(values)
	assert.Error(t, err)
}

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryInsertionOrder(t *testing.T) {
	q := NewQuery().
		Set("businessId", "b1").
		SetInt("page", 2).
		SetInt("limit", 10).
		Set("startDate", "2024-01-01")

	assert.Equal(t, "businessId=b1&page=2&limit=10&startDate=2024-01-01", q.Encode())
}

func TestQueryOmitsEmpty(t *testing.T) {
	q := NewQuery().SetInt("page", 0).Set("status", "").SetInt("limit", 1)
	assert.Equal(t, "limit=1", q.Encode())
	assert.Equal(t, 1, q.Len())
}

func TestQueryReplaceKeepsPosition(t *testing.T) {
	q := NewQuery().Set("a", "1").Set("b", "2").Set("a", "3")
	assert.Equal(t, "a=3&b=2", q.Encode())
}

func TestQueryEscapes(t *testing.T) {
	q := NewQuery().Set("name", "Joe & Sons").Set("start", "2024-01-01T09:00:00+02:00")
	assert.Equal(t, "name=Joe+%26+Sons&start=2024-01-01T09%3A00%3A00%2B02%3A00", q.Encode())
}

func TestQueryNilAndEmpty(t *testing.T) {
	var q *Query
	assert.Equal(t, "", q.Encode())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, "", NewQuery().Encode())
}

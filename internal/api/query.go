package api

import (
	"net/url"
	"strconv"
	"strings"
)

// Query is an ordered set of query parameters. Unlike url.Values it encodes
// keys in insertion order, and it drops empty values so only present filters
// reach the wire.
type Query struct {
	keys   []string
	values map[string]string
}

// NewQuery creates an empty Query.
func NewQuery() *Query {
	return &Query{values: make(map[string]string)}
}

// Set stores value under key. Empty values are ignored. Setting an existing
// key replaces its value and keeps its position.
func (q *Query) Set(key, value string) *Query {
	if value == "" {
		return q
	}
	if _, exists := q.values[key]; !exists {
		q.keys = append(q.keys, key)
	}
	q.values[key] = value
	return q
}

// SetInt stores v under key. Zero is treated as "not set".
func (q *Query) SetInt(key string, v int) *Query {
	if v == 0 {
		return q
	}
	return q.Set(key, strconv.Itoa(v))
}

// Len returns the number of parameters.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.keys)
}

// Encode renders the query in insertion order without a leading "?".
func (q *Query) Encode() string {
	if q.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range q.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.values[k]))
	}
	return b.String()
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name       string
		kind       string
		configured string
		want       string
	}{
		{name: "postgres default", kind: "postgres", want: defaultPostgresURL},
		{name: "sqlite default", kind: "sqlite", want: ""},
		{name: "sqlite file", kind: "sqlite", configured: "file:users.db", want: "file:users.db"},
		{name: "postgres configured", kind: "postgres", configured: "postgres://db/x", want: "postgres://db/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, databaseURL(tt.kind, tt.configured))
		})
	}
}

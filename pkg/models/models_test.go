package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRefUnmarshal(t *testing.T) {
	t.Run("Object", func(t *testing.T) {
		var th Thread
		err := json.Unmarshal([]byte(`{"title":"A","node":{"id":3,"name":"go","title":"Go"}}`), &th)

		require.NoError(t, err)
		assert.Equal(t, NodeRef{ID: 3, Name: "go", Title: "Go"}, th.Node)
	})

	t.Run("String", func(t *testing.T) {
		var th Thread
		err := json.Unmarshal([]byte(`{"title":"A","node":"42"}`), &th)

		require.NoError(t, err)
		assert.Equal(t, "A", th.Title)
		assert.Equal(t, NodeRef{Name: "42"}, th.Node)
	})

	t.Run("Number", func(t *testing.T) {
		var th Thread
		err := json.Unmarshal([]byte(`{"title":"A","node":42}`), &th)

		require.NoError(t, err)
		assert.Equal(t, NodeRef{ID: 42}, th.Node)
	})

	t.Run("Null", func(t *testing.T) {
		var th Thread
		err := json.Unmarshal([]byte(`{"title":"A","node":null}`), &th)

		require.NoError(t, err)
		assert.Equal(t, NodeRef{}, th.Node)
	})

	invalid := []struct {
		name    string
		node    string
		message string
	}{
		{"Boolean", `true`, "must be an object, a string or an integer"},
		{"Array", `[1,2]`, "must be an object, a string or an integer"},
		{"Fraction", `4.5`, "must be an integer"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			var th Thread
			err := json.Unmarshal([]byte(`{"title":"A","node":`+tt.node+`}`), &th)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

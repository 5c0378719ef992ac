package symdiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symdiff"
)

func TestJSON_RoundTrip(t *testing.T) {
	for _, in := range []string{"2x+3", "sin(x^2)/ln(y)", "-x", "π*e^x", "(x-1)^0.5"} {
		e := symdiff.MustParse(in)
		j, err := symdiff.ToJSON(e)
		require.NoError(t, err, in)

		back, err := symdiff.FromJSON([]byte(j))
		require.NoError(t, err, in)
		assert.True(t, symdiff.Equal(e, back), "%s: got %s from %s", in, back, j)
	}
}

func TestToMap_Shape(t *testing.T) {
	m := symdiff.ToMap(symdiff.MustParse("sin(x)+2"))
	assert.Equal(t, "binop", m["type"])
	assert.Equal(t, "+", m["op"])

	left := m["left"].(map[string]interface{})
	assert.Equal(t, "func", left["type"])
	assert.Equal(t, "sin", left["name"])

	right := m["right"].(map[string]interface{})
	assert.Equal(t, 2.0, right["value"])
}

func TestFromMap_AcceptsNumericStrings(t *testing.T) {
	e, err := symdiff.FromMap(map[string]interface{}{"type": "num", "value": "2.5"})
	require.NoError(t, err)
	assert.Equal(t, "2.5", e.String())
}

func TestFromMap_AcceptsUnicodeOperators(t *testing.T) {
	e, err := symdiff.FromMap(map[string]interface{}{
		"type":  "binop",
		"op":    "×",
		"left":  map[string]interface{}{"type": "num", "value": 3.0},
		"right": map[string]interface{}{"type": "sym", "name": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "3*x", e.String())
}

func TestFromJSON_Errors(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`{}`,
		`{"type":"matrix"}`,
		`{"type":"num","value":true}`,
		`{"type":"num","value":"abc"}`,
		`{"type":"sym"}`,
		`{"type":"func","name":"gamma","arg":{"type":"sym","name":"x"}}`,
		`{"type":"binop","op":"%","left":{"type":"num","value":1},"right":{"type":"num","value":2}}`,
		`{"type":"binop","op":"+","left":{"type":"num","value":1}}`,
		`{"type":"binop","op":"+","left":1,"right":2}`,
	} {
		_, err := symdiff.FromJSON([]byte(in))
		assert.Error(t, err, in)
	}
}

package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/kelly-lin/highlight-assertions/parser"
	"github.com/kelly-lin/highlight-assertions/protocol"
	"github.com/stretchr/testify/assert"
)

func TestToProtocolAssertions(t *testing.T) {
	assert := assert.New(t)
	type TestCase struct {
		Desc       string
		Assertions []parser.Assertion
		Want       string
	}
	testCases := []TestCase{
		{
			Desc:       "nil",
			Assertions: nil,
			Want:       `[]`,
		},
		{
			Desc: "assertions",
			Assertions: []parser.Assertion{
				{Position: parser.Point{Row: 0, Column: 4}, ExpectedCaptureName: "keyword"},
				{Position: parser.Point{Row: 3, Column: 0}, ExpectedCaptureName: "variable.builtin"},
			},
			Want: `[{"position":{"row":0,"column":4},"expected_capture_name":"keyword"},{"position":{"row":3,"column":0},"expected_capture_name":"variable.builtin"}]`,
		},
	}
	for _, testCase := range testCases {
		got, err := json.Marshal(protocol.ToProtocolAssertions(testCase.Assertions))
		assert.NoError(err, testCase.Desc)
		assert.Equal(testCase.Want, string(got), testCase.Desc)
	}
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnswerValueEqualPrimitives(t *testing.T) {
	cases := []struct {
		name  string
		left  interface{}
		right interface{}
		equal bool
	}{
		{name: "equal strings", left: "A", right: "A", equal: true},
		{name: "different strings", left: "A", right: "B", equal: false},
		{name: "equal numbers", left: 5, right: 5.0, equal: true},
		{name: "string vs number", left: "5", right: 5, equal: false},
		{name: "bool vs string", left: true, right: "true", equal: false},
		{name: "equal bools", left: false, right: false, equal: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			left := NewAnswerValue(tc.left)
			right := NewAnswerValue(tc.right)
			require.Equal(t, tc.equal, left.Equal(right))
		})
	}
}

func TestAnswerValueEqualComposites(t *testing.T) {
	left := NewAnswerValue(map[string]interface{}{"truck": "road", "barge": "water"})
	same := NewAnswerValue(map[string]interface{}{"barge": "water", "truck": "road"})
	different := NewAnswerValue(map[string]interface{}{"truck": "rail"})

	require.True(t, left.Equal(same))
	require.False(t, left.Equal(different))

	list := NewAnswerValue([]string{"a", "b"})
	reordered := NewAnswerValue([]string{"b", "a"})
	require.False(t, list.Equal(reordered))
}

func TestAnswerValueNullNeverMatches(t *testing.T) {
	null := AnswerValue{}
	require.False(t, null.Equal(null))
	require.False(t, null.Equal(NewAnswerValue("A")))
	require.False(t, NewAnswerValue("A").Equal(null))
}

func TestAnswerValueRoundTrip(t *testing.T) {
	payload := []byte(`{"questionId":"q1","answer":{"nested":[1,2,3]}}`)

	var answer SubmittedAnswer
	require.NoError(t, json.Unmarshal(payload, &answer))

	encoded, err := json.Marshal(answer)
	require.NoError(t, err)
	require.JSONEq(t, string(payload), string(encoded))
}

func TestQuestionKeyFallsBackToIndex(t *testing.T) {
	withID := Question{ID: "q9"}
	require.Equal(t, "q9", withID.Key(3))

	withoutID := Question{}
	require.Equal(t, "3", withoutID.Key(3))
}

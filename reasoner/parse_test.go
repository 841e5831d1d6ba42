package reasoner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseModelJSONStrict(t *testing.T) {
	parsed := parseModelJSON(`{"answer":"42 units"}`)

	require.Equal(t, "42 units", parsed["answer"])
}

func TestParseModelJSONWrappedInProse(t *testing.T) {
	parsed := parseModelJSON("Sure! Here is the JSON you asked for:\n```json\n{\"answer\":\"42 units\"}\n```\nLet me know if you need anything else.")

	require.Equal(t, "42 units", parsed["answer"])
}

func TestParseModelJSONGarbage(t *testing.T) {
	require.Empty(t, parseModelJSON("the model refused to answer"))
	require.Empty(t, parseModelJSON("{not json at all]"))
	require.Empty(t, parseModelJSON(""))
	require.Empty(t, parseModelJSON("   "))
}

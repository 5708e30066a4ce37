package alert

import (
	"encoding/json"
	"testing"

	apperrors "github.com/darkkaiser/warn-bridge/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrapCustom(t *testing.T, inner string) []byte {
	t.Helper()

	b, err := json.Marshal(map[string]any{
		"data": map[string]any{"custom": inner},
		"from": "1234",
	})
	require.NoError(t, err)
	return b
}

func TestParsePushPayload(t *testing.T) {
	inner := `{"id":"mow.DE-BY-A-W083-20240601-000","data":{"msgType":"Alert","headline":"Hochwasser","provider":"MOWAS","severity":"Severe","transKeys":{"event":"BBK-EVC-040"}}}`

	t.Run("data.custom 이중 디코딩", func(t *testing.T) {
		a, err := ParsePushPayload(wrapCustom(t, inner))
		require.NoError(t, err)

		assert.Equal(t, "mow.DE-BY-A-W083-20240601-000", a.ID)
		assert.Equal(t, "Alert", *a.MsgType)
		assert.Equal(t, "Hochwasser", *a.Headline)
		assert.Equal(t, "MOWAS", *a.Provider)
		assert.Equal(t, "Severe", *a.Severity)
		assert.Equal(t, "BBK-EVC-040", *a.EventCode)
		assert.JSONEq(t, inner, string(a.Document()))
		assert.True(t, a.IsAccepted())
	})

	t.Run("풀어진 문서", func(t *testing.T) {
		a, err := ParsePushPayload([]byte(`{"id":"X","data":{"provider":"MOWAS","headline":"Flood warning"}}`))
		require.NoError(t, err)

		line, err := a.MarshalLine()
		require.NoError(t, err)
		assert.Equal(t, `{"id":"X","msgType":null,"headline":"Flood warning","provider":"MOWAS","severity":null,"event_code":null}`+"\n", string(line))
	})

	t.Run("같은 입력은 같은 결과", func(t *testing.T) {
		payload := wrapCustom(t, inner)
		a1, err1 := ParsePushPayload(payload)
		a2, err2 := ParsePushPayload(payload)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, a1, a2)
	})
}

func TestParsePushPayload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload func(t *testing.T) []byte
	}{
		{"Outer Malformed", func(t *testing.T) []byte { return []byte(`{"data":`) }},
		{"Inner Malformed", func(t *testing.T) []byte { return wrapCustom(t, `{"id":`) }},
		{"Inner Not Object", func(t *testing.T) []byte { return wrapCustom(t, `["x"]`) }},
		{"Custom Not String", func(t *testing.T) []byte { return []byte(`{"data":{"custom":{"id":"X"}}}`) }},
		{"Missing Id", func(t *testing.T) []byte { return wrapCustom(t, `{"data":{"provider":"DWD"}}`) }},
		{"Null Id", func(t *testing.T) []byte { return []byte(`{"id":null}`) }},
		{"Empty Id", func(t *testing.T) []byte { return []byte(`{"id":""}`) }},
		{"Numeric Id", func(t *testing.T) []byte { return wrapCustom(t, `{"id":12345}`) }},
		{"Object Id", func(t *testing.T) []byte { return wrapCustom(t, `{"id":{"v":"X"}}`) }},
		{"Numeric Severity", func(t *testing.T) []byte { return wrapCustom(t, `{"id":"X","data":{"severity":3}}`) }},
		{"Object Headline", func(t *testing.T) []byte { return wrapCustom(t, `{"id":"X","data":{"headline":{"de":"x"}}}`) }},
		{"Top Level Array", func(t *testing.T) []byte { return []byte(`[1,2]`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParsePushPayload(tt.payload(t))

			require.Error(t, err)
			assert.Nil(t, a)
			assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
		})
	}
}

func TestPushAlert_IsAccepted(t *testing.T) {
	for _, tc := range []struct {
		payload  string
		accepted bool
	}{
		{`{"id":"1","data":{"provider":"MOWAS"}}`, true},
		{`{"id":"1","data":{"provider":"DWD"}}`, true},
		{`{"id":"1","data":{"provider":"OTHER"}}`, false},
		{`{"id":"1","data":{"provider":"dwd"}}`, false},
		{`{"id":"1"}`, false},
	} {
		a, err := ParsePushPayload([]byte(tc.payload))
		require.NoError(t, err)
		assert.Equal(t, tc.accepted, a.IsAccepted(), tc.payload)
	}
}

func TestPushAlert_MarshalLineDoesNotEscapeHTML(t *testing.T) {
	a, err := ParsePushPayload([]byte(`{"id":"1","data":{"headline":"Sturm > 100 km/h & Hagel"}}`))
	require.NoError(t, err)

	line, err := a.MarshalLine()
	require.NoError(t, err)
	assert.Contains(t, string(line), "Sturm > 100 km/h & Hagel")
}

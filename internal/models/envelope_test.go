package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseRoundTrip(t *testing.T) {
	resp := &RiskTableSnapshotResponse{
		RequestID:  "RTR#1",
		Success:    true,
		IsLast:     true,
		Conditions: []RiskCondition{{ProjectionKey: "Exchange", Value: "NYSE"}},
		Limits:     []RiskLimit{{Name: "MaxNotional", Value: "1000000"}},
	}

	data, err := Encode(resp)
	require.NoError(t, err)

	msg, err := Decode(data)
	require.NoError(t, err)

	decoded, ok := msg.(*RiskTableSnapshotResponse)
	require.True(t, ok, "expected a snapshot response, got %T", msg)
	assert.Equal(t, resp, decoded)
}

func TestDecodeRequest(t *testing.T) {
	data := []byte(`{"type":"RiskTableSnapshotRequest","payload":{"request_id":"RTR#2","timestamp":42,"projection":"Exchange/Symbol","reply_to":"risk.table.response.c.RTR#2"}}`)

	msg, err := Decode(data)
	require.NoError(t, err)

	req, ok := msg.(*RiskTableSnapshotRequest)
	require.True(t, ok)
	assert.Equal(t, "RTR#2", req.RequestID)
	assert.Equal(t, int64(42), req.Timestamp)
	assert.Equal(t, "Exchange/Symbol", req.Projection)
	assert.Equal(t, "risk.table.response.c.RTR#2", req.ReplyTo)
}

func TestDecodeUnknownType(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"OrderNewEvent","payload":{"order_id":"1"}}`))
	require.NoError(t, err)

	unknown, ok := msg.(*UnknownMessage)
	require.True(t, ok)
	assert.Equal(t, "OrderNewEvent", unknown.MessageType())
	assert.JSONEq(t, `{"order_id":"1"}`, string(unknown.Data))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"payload":{}}`))
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = Decode([]byte(`{"type":"RiskTableSnapshotResponse","payload":{"success":"yes"}}`))
	assert.Error(t, err)
}

func TestFieldNamesAndValuesAlign(t *testing.T) {
	resp := &RiskTableSnapshotResponse{
		Conditions: []RiskCondition{{"Exchange", "NYSE"}, {"Symbol", "IBM"}},
		Limits:     []RiskLimit{{"MaxNotional", "1000000"}, {"MaxPosition", "500"}},
	}

	assert.Equal(t, []string{"Exchange", "Symbol", "MaxNotional", "MaxPosition"}, resp.FieldNames())
	assert.Equal(t, []string{"NYSE", "IBM", "1000000", "500"}, resp.FieldValues())

	empty := &RiskTableSnapshotResponse{}
	assert.Empty(t, empty.FieldNames())
	assert.Empty(t, empty.FieldValues())
}

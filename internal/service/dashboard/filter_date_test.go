package dashboard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterCommand_DecodesDates(t *testing.T) {
	uzt := time.FixedZone("UZT", 5*60*60)

	var cmd FilterCommand
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"range","start_date":"2026-10-01","end_date":"2026-10-05T10:30:00Z"}`), &cmd))

	require.NotNil(t, cmd.Start)
	assert.True(t, cmd.Start.DateOnly)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, uzt), cmd.Start.In(uzt))

	require.NotNil(t, cmd.End)
	assert.False(t, cmd.End.DateOnly)
	assert.True(t, cmd.End.In(uzt).Equal(time.Date(2026, 10, 5, 10, 30, 0, 0, time.UTC)))
}

func TestFilterCommand_DecodeErrors(t *testing.T) {
	for _, body := range []string{
		`{"mode":"start","start_date":"01.10.2026"}`,
		`{"mode":"start","start_date":20261001}`,
	} {
		var cmd FilterCommand
		assert.Error(t, json.Unmarshal([]byte(body), &cmd), body)
	}

	var cmd FilterCommand
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"end","start_date":null}`), &cmd))
	assert.Nil(t, cmd.Start)
}

func TestFilterDate_MarshalKeepsShape(t *testing.T) {
	data, err := json.Marshal(Day(2026, 10, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-10-01"`, string(data))

	data, err = json.Marshal(DateAt(time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-10-01T08:00:00Z"`, string(data))
}

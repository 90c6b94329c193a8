package wireserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobengine/internal/book"
)

func TestNewOrderRoundTrip(t *testing.T) {
	want := NewOrderCommand{ID: 42, AgentID: 7, Side: book.Sell, Price: 105, Volume: 9}
	cmd, err := parseCommand(EncodeNewOrder(want))
	require.NoError(t, err)
	assert.Equal(t, MsgNewOrder, cmd.Type)
	assert.Equal(t, want, cmd.Place)
}

func TestCancelOrderRoundTrip(t *testing.T) {
	want := CancelOrderCommand{ID: 99}
	cmd, err := parseCommand(EncodeCancelOrder(want))
	require.NoError(t, err)
	assert.Equal(t, MsgCancelOrder, cmd.Type)
	assert.Equal(t, want, cmd.Cancel)
}

func TestLogBookRoundTrip(t *testing.T) {
	cmd, err := parseCommand(EncodeLogBook())
	require.NoError(t, err)
	assert.Equal(t, MsgLogBook, cmd.Type)
}

func TestParseCommandTooShort(t *testing.T) {
	_, err := parseCommand([]byte{0})
	assert.ErrorIs(t, err, ErrMessageTooShort)
}

func TestParseCommandInvalidType(t *testing.T) {
	_, err := parseCommand([]byte{0xff, 0xff})
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestReportRoundTrip(t *testing.T) {
	r := tradeToReport(book.Trade{AggressorID: 1, MatchedID: 2, Price: 50, Volume: 3})
	got, err := ParseReport(r.Serialize())
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestErrorReportRoundTrip(t *testing.T) {
	r := errorReport(ErrMessageTooShort)
	got, err := ParseReport(r.Serialize())
	require.NoError(t, err)
	assert.Equal(t, ReportError, got.Type)
	assert.Equal(t, ErrMessageTooShort.Error(), got.ErrMsg)
}

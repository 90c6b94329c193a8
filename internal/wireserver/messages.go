package wireserver

import (
	"encoding/binary"
	"errors"
	"fmt"

	"lobengine/internal/book"
)

// MessageType tags an incoming wire command, mirroring the CSV
// command-stream's two operations plus a debug log-snapshot request.
type MessageType uint16

const (
	MsgNewOrder MessageType = iota
	MsgCancelOrder
	MsgLogBook
)

// ReportType tags an outgoing wire report.
type ReportType uint8

const (
	ReportExecution ReportType = iota
	ReportError
)

var (
	ErrMessageTooShort    = errors.New("wireserver: message too short")
	ErrInvalidMessageType = errors.New("wireserver: invalid message type")
)

const (
	headerLen          = 2                 // MessageType
	newOrderBodyLen    = 8 + 8 + 1 + 4 + 8  // id, agent_id, side, price, volume
	cancelOrderBodyLen = 8                  // id
	reportFixedLen     = 1 + 8 + 8 + 4 + 8 + 2 // type, aggressor, matched, price, volume, errlen
)

// NewOrderCommand is the wire shape of spec.md's PLACE row.
type NewOrderCommand struct {
	ID      uint64
	AgentID uint64
	Side    book.Side
	Price   uint32
	Volume  uint64
}

// CancelOrderCommand is the wire shape of spec.md's DELETE row.
type CancelOrderCommand struct {
	ID uint64
}

// Command is one parsed wire message, tagged by Type.
type Command struct {
	Type   MessageType
	Place  NewOrderCommand
	Cancel CancelOrderCommand
}

// parseCommand decodes one frame read off a connection.
func parseCommand(msg []byte) (Command, error) {
	if len(msg) < headerLen {
		return Command{}, ErrMessageTooShort
	}
	typ := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[headerLen:]

	switch typ {
	case MsgNewOrder:
		if len(body) < newOrderBodyLen {
			return Command{}, ErrMessageTooShort
		}
		side := book.Buy
		if body[16] != 0 {
			side = book.Sell
		}
		return Command{
			Type: MsgNewOrder,
			Place: NewOrderCommand{
				ID:      binary.BigEndian.Uint64(body[0:8]),
				AgentID: binary.BigEndian.Uint64(body[8:16]),
				Side:    side,
				Price:   binary.BigEndian.Uint32(body[17:21]),
				Volume:  binary.BigEndian.Uint64(body[21:29]),
			},
		}, nil
	case MsgCancelOrder:
		if len(body) < cancelOrderBodyLen {
			return Command{}, ErrMessageTooShort
		}
		return Command{
			Type:   MsgCancelOrder,
			Cancel: CancelOrderCommand{ID: binary.BigEndian.Uint64(body[0:8])},
		}, nil
	case MsgLogBook:
		return Command{Type: MsgLogBook}, nil
	default:
		return Command{}, ErrInvalidMessageType
	}
}

// EncodeNewOrder serializes a PLACE command for the wire; used by
// cmd/lobclient.
func EncodeNewOrder(c NewOrderCommand) []byte {
	buf := make([]byte, headerLen+newOrderBodyLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(MsgNewOrder))
	binary.BigEndian.PutUint64(buf[2:10], c.ID)
	binary.BigEndian.PutUint64(buf[10:18], c.AgentID)
	var side byte
	if c.Side == book.Sell {
		side = 1
	}
	buf[18] = side
	binary.BigEndian.PutUint32(buf[19:23], c.Price)
	binary.BigEndian.PutUint64(buf[23:31], c.Volume)
	return buf
}

// EncodeCancelOrder serializes a DELETE command for the wire.
func EncodeCancelOrder(c CancelOrderCommand) []byte {
	buf := make([]byte, headerLen+cancelOrderBodyLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(MsgCancelOrder))
	binary.BigEndian.PutUint64(buf[2:10], c.ID)
	return buf
}

// EncodeLogBook serializes a debug book-snapshot request.
func EncodeLogBook() []byte {
	buf := make([]byte, headerLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(MsgLogBook))
	return buf
}

// Report is a wire-serialized trade or error notification.
type Report struct {
	Type        ReportType
	AggressorID uint64
	MatchedID   uint64
	Price       uint32
	Volume      uint64
	ErrMsg      string
}

// Serialize packs r into its fixed-header, variable-trailer wire form.
func (r Report) Serialize() []byte {
	errBytes := []byte(r.ErrMsg)
	buf := make([]byte, reportFixedLen+len(errBytes))
	buf[0] = byte(r.Type)
	binary.BigEndian.PutUint64(buf[1:9], r.AggressorID)
	binary.BigEndian.PutUint64(buf[9:17], r.MatchedID)
	binary.BigEndian.PutUint32(buf[17:21], r.Price)
	binary.BigEndian.PutUint64(buf[21:29], r.Volume)
	binary.BigEndian.PutUint16(buf[29:31], uint16(len(errBytes)))
	copy(buf[31:], errBytes)
	return buf
}

// ParseReport decodes a Report off the wire; used by cmd/lobclient.
func ParseReport(buf []byte) (Report, error) {
	if len(buf) < reportFixedLen {
		return Report{}, ErrMessageTooShort
	}
	r := Report{
		Type:        ReportType(buf[0]),
		AggressorID: binary.BigEndian.Uint64(buf[1:9]),
		MatchedID:   binary.BigEndian.Uint64(buf[9:17]),
		Price:       binary.BigEndian.Uint32(buf[17:21]),
		Volume:      binary.BigEndian.Uint64(buf[21:29]),
	}
	errLen := int(binary.BigEndian.Uint16(buf[29:31]))
	if len(buf) < reportFixedLen+errLen {
		return Report{}, ErrMessageTooShort
	}
	r.ErrMsg = string(buf[reportFixedLen : reportFixedLen+errLen])
	return r, nil
}

func tradeToReport(t book.Trade) Report {
	return Report{
		Type:        ReportExecution,
		AggressorID: t.AggressorID,
		MatchedID:   t.MatchedID,
		Price:       t.Price,
		Volume:      t.Volume,
	}
}

func errorReport(err error) Report {
	return Report{Type: ReportError, ErrMsg: fmt.Sprintf("%v", err)}
}

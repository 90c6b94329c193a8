// Package ingest reads the CSV command-stream format described in
// spec.md section 6 and writes the final-state dump format, the two
// concrete responsibilities left to the "external collaborator" that
// spec.md scopes out of the core. Grounded on
// _examples/original_source/demo/demo.cpp, reimplemented with
// encoding/csv rather than the original's hand-rolled string_view
// splitter.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"

	"lobengine/internal/book"
)

// CommandKind distinguishes the two rows the command stream carries.
type CommandKind int

const (
	Place CommandKind = iota
	Delete
)

// Command is one parsed row of the CSV command stream.
type Command struct {
	Kind    CommandKind
	ID      uint64
	Side    book.Side
	Price   uint32
	Volume  uint64
}

// ReadCommands parses every data row (the header row is skipped) from
// r. A PLACE row has fields (id, side, price, volume); any other op
// value is treated as a DELETE of the given id, per spec.md's "anything
// else (treated as DELETE)" rule. A malformed row is skipped with a
// warning rather than aborting the whole stream.
func ReadCommands(r io.Reader) ([]Command, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // PLACE and DELETE rows differ in width

	if _, err := reader.Read(); err != nil { // header
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("ingest: reading header: %w", err)
	}

	var commands []Command
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: reading row: %w", err)
		}

		cmd, ok := parseRow(record)
		if !ok {
			continue
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

func parseRow(record []string) (Command, bool) {
	if len(record) < 2 {
		log.Warn().Strs("row", record).Msg("skipping short command row")
		return Command{}, false
	}

	id, err := strconv.ParseUint(record[1], 10, 64)
	if err != nil {
		log.Warn().Str("id", record[1]).Err(err).Msg("skipping row with unparseable id")
		return Command{}, false
	}

	if record[0] != "PLACE" {
		return Command{Kind: Delete, ID: id}, true
	}

	if len(record) < 5 {
		log.Warn().Strs("row", record).Msg("skipping short PLACE row")
		return Command{}, false
	}

	sideField, err := strconv.ParseUint(record[2], 10, 8)
	if err != nil {
		log.Warn().Str("side", record[2]).Err(err).Msg("skipping PLACE row with unparseable side")
		return Command{}, false
	}
	side := book.Buy
	if sideField != 0 {
		side = book.Sell
	}

	price, err := strconv.ParseUint(record[3], 10, 32)
	if err != nil {
		log.Warn().Str("price", record[3]).Err(err).Msg("skipping PLACE row with unparseable price")
		return Command{}, false
	}

	volume, err := strconv.ParseUint(record[4], 10, 64)
	if err != nil {
		log.Warn().Str("volume", record[4]).Err(err).Msg("skipping PLACE row with unparseable volume")
		return Command{}, false
	}

	return Command{
		Kind:   Place,
		ID:     id,
		Side:   side,
		Price:  uint32(price),
		Volume: volume,
	}, true
}

// DumpFinalState writes the final-state CSV described in spec.md
// section 6: header "Price Limit,Side,Volume", buy side ascending by
// price, then sell side ascending by price, one row per non-empty
// Limit.
func DumpFinalState(w io.Writer, b *book.Book) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Price Limit", "Side", "Volume"}); err != nil {
		return err
	}
	for _, lvl := range b.BuyLevels() {
		if err := writer.Write([]string{
			strconv.FormatUint(uint64(lvl.Price), 10), "BUY", strconv.FormatUint(lvl.TotalVolume, 10),
		}); err != nil {
			return err
		}
	}
	for _, lvl := range b.SellLevels() {
		if err := writer.Write([]string{
			strconv.FormatUint(uint64(lvl.Price), 10), "SELL", strconv.FormatUint(lvl.TotalVolume, 10),
		}); err != nil {
			return err
		}
	}
	return writer.Error()
}

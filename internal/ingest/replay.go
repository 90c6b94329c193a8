package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lobengine/internal/book"
)

// RunStats mirrors demo.cpp's operation counter: one operation per
// trade, plus one more if the incoming order rested afterwards, plus
// one for every DELETE processed (matching demo.cpp:102's nb_op++).
type RunStats struct {
	RunID   string
	Ops     uint64
	Elapsed time.Duration
}

// Replay feeds commands into b in order and returns throughput stats.
// Every call is tagged with a fresh run id so concurrent or repeated
// replays are distinguishable in the logs.
func Replay(b *book.Book, commands []Command) RunStats {
	runID := uuid.New().String()
	start := time.Now()

	var ops uint64
	for _, cmd := range commands {
		switch cmd.Kind {
		case Place:
			wasActive := b.OrderStatus(cmd.ID) == book.Active
			trades := b.PlaceOrder(cmd.ID, 0, cmd.Side, cmd.Price, cmd.Volume)
			ops += uint64(len(trades))
			if !wasActive && b.OrderStatus(cmd.ID) == book.Active {
				ops++
			}
		case Delete:
			b.DeleteOrder(cmd.ID)
			ops++
		}
	}

	stats := RunStats{RunID: runID, Ops: ops, Elapsed: time.Since(start)}
	log.Info().
		Str("runID", stats.RunID).
		Uint64("ops", stats.Ops).
		Dur("elapsed", stats.Elapsed).
		Float64("opsPerSec", float64(stats.Ops)/stats.Elapsed.Seconds()).
		Msg("replay complete")
	return stats
}

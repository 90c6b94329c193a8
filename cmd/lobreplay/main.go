// Command lobreplay drives a Book directly from a CSV command stream,
// with no network involved, and reports throughput the way
// original_source/demo/demo.cpp does: operation count and elapsed time,
// followed by a final-state dump.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"lobengine/internal/book"
	"lobengine/internal/ingest"
)

func main() {
	inputPath := flag.String("in", "", "path to the CSV command stream (required)")
	outputPath := flag.String("out", "", "path to write the final-state dump (defaults to stdout)")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal().Msg("missing required -in flag")
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *inputPath).Msg("failed to open command stream")
	}
	defer in.Close()

	commands, err := ingest.ReadCommands(in)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read command stream")
	}
	log.Info().Int("commands", len(commands)).Msg("command stream loaded")

	b := book.New()
	stats := ingest.Replay(b, commands)
	log.Info().
		Str("runID", stats.RunID).
		Uint64("ops", stats.Ops).
		Dur("elapsed", stats.Elapsed).
		Msg("replay finished")

	out := os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *outputPath).Msg("failed to create dump file")
		}
		defer f.Close()
		out = f
	}

	if err := ingest.DumpFinalState(out, b); err != nil {
		log.Fatal().Err(err).Msg("failed to write final-state dump")
	}
}

// Command lobclient sends PLACE/DELETE/LOG wire commands to a running
// lobserver and prints execution reports as they arrive. Adapted from
// the teacher's cmd/client/client.go: flag-driven CLI, hand-built wire
// frames, an async goroutine draining reports.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"lobengine/internal/book"
	"lobengine/internal/wireserver"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the matching engine server")
	action := flag.String("action", "place", "action to perform: place, cancel, log")

	id := flag.Uint64("id", 0, "order id")
	agentID := flag.Uint64("agent", 0, "agent id")
	sideStr := flag.String("side", "buy", "order side: buy or sell")
	price := flag.Uint64("price", 100, "limit price")
	qtyStr := flag.String("qty", "10", "quantity, or comma-separated list (e.g. 10,20,50)")

	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readReports(conn)

	side := book.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = book.Sell
	}

	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range parseQuantities(*qtyStr) {
			cmd := wireserver.NewOrderCommand{
				ID: *id, AgentID: *agentID, Side: side, Price: uint32(*price), Volume: qty,
			}
			if _, err := conn.Write(wireserver.EncodeNewOrder(cmd)); err != nil {
				log.Printf("failed to send place: %v", err)
				continue
			}
			fmt.Printf("-> PLACE id=%d side=%s price=%d volume=%d\n", *id, side, *price, qty)
			time.Sleep(5 * time.Millisecond)
		}
	case "cancel":
		if _, err := conn.Write(wireserver.EncodeCancelOrder(wireserver.CancelOrderCommand{ID: *id})); err != nil {
			log.Printf("failed to send cancel: %v", err)
		} else {
			fmt.Printf("-> DELETE id=%d\n", *id)
		}
	case "log":
		if _, err := conn.Write(wireserver.EncodeLogBook()); err != nil {
			log.Printf("failed to send log request: %v", err)
		} else {
			fmt.Println("-> LOG")
		}
	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("listening for reports... (ctrl-c to exit)")
	select {}
}

func parseQuantities(input string) []uint64 {
	var result []uint64
	for _, p := range strings.Split(input, ",") {
		if v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64); err == nil {
			result = append(result, v)
		} else {
			log.Printf("warning: invalid quantity %q, skipping", p)
		}
	}
	return result
}

func readReports(conn net.Conn) {
	for {
		header := make([]byte, 31)
		if _, err := io.ReadFull(conn, header); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}

		errLen := int(header[29])<<8 | int(header[30])
		var errBytes []byte
		if errLen > 0 {
			errBytes = make([]byte, errLen)
			if _, err := io.ReadFull(conn, errBytes); err != nil {
				log.Printf("error reading report body: %v", err)
				return
			}
		}

		report, err := wireserver.ParseReport(append(header, errBytes...))
		if err != nil {
			log.Printf("error parsing report: %v", err)
			continue
		}

		if report.Type == wireserver.ReportError {
			fmt.Printf("\n[ERROR] %s\n", report.ErrMsg)
		} else {
			fmt.Printf("\n[TRADE] aggressor=%d matched=%d price=%d volume=%d\n",
				report.AggressorID, report.MatchedID, report.Price, report.Volume)
		}
	}
}

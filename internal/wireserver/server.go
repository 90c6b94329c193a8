// Package wireserver is the TCP transport wrapped around an
// internal/engine.Engine: a binary wire protocol for PLACE/DELETE
// commands, served by a tomb.v2-supervised worker pool. It is strictly
// an outer layer — the matching core stays synchronous and I/O-free;
// this package only ever calls into it.
package wireserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"lobengine/internal/book"
	"lobengine/internal/engine"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = 30 * time.Second
)

var ErrImproperConversion = errors.New("wireserver: improper task conversion")

// Server accepts TCP connections, decodes wire commands, and drives an
// Engine. It implements engine.Reporter so placed trades are pushed
// back to the connections that own the involved order ids.
type Server struct {
	address string
	port    int
	engine  *engine.Engine
	pool    workerPool
	cancel  context.CancelFunc

	mu         sync.Mutex
	sessions   map[string]net.Conn // keyed by remote address, for logging
	orderConns map[uint64]net.Conn // order id -> connection that placed it
}

// New wires a Server to eng, registering the server as the engine's
// trade reporter.
func New(address string, port int, eng *engine.Engine) *Server {
	s := &Server{
		address:    address,
		port:       port,
		engine:     eng,
		pool:       newWorkerPool(defaultNWorkers),
		sessions:   make(map[string]net.Conn),
		orderConns: make(map[uint64]net.Conn),
	}
	eng.SetReporter(s)
	return s
}

// Shutdown cancels the server's run context.
func (s *Server) Shutdown() {
	log.Info().Msg("wireserver shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run listens on address:port and serves connections until ctx is
// cancelled or Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	t, ctx := tomb.WithContext(ctx)

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("wireserver: listen: %w", err)
	}
	defer listener.Close()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	t.Go(func() error {
		s.pool.setup(t, s.handleConnection)
		return nil
	})

	log.Info().Str("address", listener.Addr().String()).Msg("wireserver running")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			s.addSession(conn)
			s.pool.addTask(conn)
		}
	}
}

func (s *Server) addSession(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.sessions[conn.RemoteAddr().String()] = conn
	log.Info().Str("session", id).Str("address", conn.RemoteAddr().String()).Msg("client connected")
}

func (s *Server) dropSession(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conn.RemoteAddr().String())
}

// handleConnection reads and handles exactly one command per pass,
// then re-queues the connection — so one slow client occupies a worker
// only for the duration of a single read, not the whole session.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	select {
	case <-t.Dying():
		conn.Close()
		return nil
	default:
	}

	if err := conn.SetDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Msg("failed setting connection deadline")
		conn.Close()
		return nil
	}

	buf := make([]byte, maxRecvSize)
	n, err := conn.Read(buf)
	if err != nil {
		s.dropSession(conn)
		conn.Close()
		return nil
	}

	cmd, err := parseCommand(buf[:n])
	if err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing command")
		s.writeReport(conn, errorReport(err))
		s.pool.addTask(conn)
		return nil
	}

	s.handleCommand(conn, cmd)
	s.pool.addTask(conn)
	return nil
}

func (s *Server) handleCommand(conn net.Conn, cmd Command) {
	switch cmd.Type {
	case MsgNewOrder:
		p := cmd.Place
		s.trackOrderConn(p.ID, conn)
		s.engine.PlaceOrder(p.ID, p.AgentID, p.Side, p.Price, p.Volume)
		s.untrackIfTerminal(p.ID)
	case MsgCancelOrder:
		s.engine.CancelOrder(cmd.Cancel.ID)
		s.untrackIfTerminal(cmd.Cancel.ID)
	case MsgLogBook:
		log.Info().
			Uint32("bestBuy", s.engine.Book.BestBuy()).
			Uint32("bestSell", s.engine.Book.BestSell()).
			Msg("book snapshot")
	}
}

func (s *Server) trackOrderConn(id uint64, conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderConns[id] = conn
}

func (s *Server) untrackIfTerminal(id uint64) {
	if s.engine.Book.OrderStatus(id) == book.Active {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orderConns, id)
}

func (s *Server) writeReport(conn net.Conn, r Report) {
	if _, err := conn.Write(r.Serialize()); err != nil {
		log.Error().Err(err).Msg("failed to write report")
	}
}

// ReportTrades implements engine.Reporter: each fill is pushed as an
// execution report to whichever live connections placed the aggressor
// and matched orders.
func (s *Server) ReportTrades(trades []book.Trade) {
	for _, tr := range trades {
		log.Info().
			Uint64("aggressor", tr.AggressorID).
			Uint64("matched", tr.MatchedID).
			Uint32("price", tr.Price).
			Uint64("volume", tr.Volume).
			Msg("trade")

		report := tradeToReport(tr)
		s.mu.Lock()
		aggressorConn := s.orderConns[tr.AggressorID]
		matchedConn := s.orderConns[tr.MatchedID]
		s.mu.Unlock()

		if aggressorConn != nil {
			s.writeReport(aggressorConn, report)
		}
		if matchedConn != nil && matchedConn != aggressorConn {
			s.writeReport(matchedConn, report)
		}
	}
}

// ReportError implements engine.Reporter.
func (s *Server) ReportError(err error) {
	log.Error().Err(err).Msg("engine error")
}

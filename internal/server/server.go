// Package server implements the TCP matchmaking server: it accepts raw
// TCP clients, answers lobby commands and hands waiting sessions to the
// per-room matchmakers.
package server

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/randomchat/internal/chat"
	"github.com/vovakirdan/randomchat/internal/config"
	"github.com/vovakirdan/randomchat/internal/protocol"
	"github.com/vovakirdan/randomchat/internal/storage"
)

// Server owns the listener, the room set and one matchmaker per room.
type Server struct {
	cfg    config.Config
	logger *log.Logger
	store  *storage.Store
	rooms  *chat.RoomSet
	parser *protocol.Parser
	stats  *chat.Stats

	matchmakers []*chat.Matchmaker

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// New creates a server from the given configuration.
// A failing chat database is logged and skipped; the server runs without
// persistence in that case.
func New(cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "randomchat",
	})

	// Open storage
	store, err := storage.Open(cfg.Server.DBPath)
	if err != nil {
		logger.Warn("could not open chat database", "error", err)
		// Continue without storage
	}

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		store:  store,
		stats:  chat.NewStats(),
	}

	infos := make([]chat.RoomInfo, 0, len(cfg.Rooms))
	for _, r := range cfg.Rooms {
		infos = append(infos, chat.RoomInfo{Name: r.Name, Description: r.Description})
	}
	srv.rooms = chat.NewRoomSet(infos)
	srv.parser = protocol.NewParser(srv.rooms.Names())

	var saver chat.ConversationSaver
	if store != nil {
		saver = store
	}
	idle := func(s *chat.Session) {
		go srv.handleSession(s)
	}
	for _, room := range srv.rooms.All() {
		srv.matchmakers = append(srv.matchmakers,
			chat.NewMatchmaker(room, srv.parser, srv.stats, idle, saver, logger))
	}

	return srv, nil
}

// Listen binds the configured TCP address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		if s.store != nil {
			s.store.Close()
		}
		return fmt.Errorf("server: cannot listen on %s: %w", s.cfg.Server.Address, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Serve runs the matchmakers and the accept loop. It blocks until the
// listener is closed by Shutdown.
func (s *Server) Serve() error {
	for _, m := range s.matchmakers {
		go m.Run()
	}

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("server: Serve called before Listen")
	}

	s.logger.Info("accepting connections", "address", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.configureKeepAlive(conn)
		s.stats.UserConnected()

		sess := chat.NewSession(conn)
		sess.Start()
		s.logger.Info("client connected", "session", sess.ID(), "remote", sess.RemoteAddr())
		go s.handleSession(sess)
	}
}

// ListenAndServe starts the server and blocks until SIGINT/SIGTERM.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.logger.Info("starting chat server", "address", s.Addr(), "rooms", len(s.rooms.All()))

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.Serve(); err != nil {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown stops accepting connections, stops the matchmakers and closes
// the database. Established conversations keep their connections until
// the process exits.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.listener
	s.mu.Unlock()

	for _, m := range s.matchmakers {
		m.Stop()
	}

	var err error
	if ln != nil {
		err = ln.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the actual listen address once bound, the configured one
// otherwise.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Server.Address
}

// Stats exposes the global counters.
func (s *Server) Stats() *chat.Stats {
	return s.stats
}

// configureKeepAlive enables TCP keep-alive probing on an accepted
// connection so silently vanished peers are detected.
func (s *Server) configureKeepAlive(conn net.Conn) {
	ka := s.cfg.Server.KeepAlive
	if !ka.Enabled {
		return
	}
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	err := tc.SetKeepAliveConfig(net.KeepAliveConfig{
		Enable:   true,
		Idle:     ka.Idle,
		Interval: ka.Interval,
		Count:    ka.Count,
	})
	if err != nil {
		s.logger.Warn("cannot enable keep-alive", "remote", conn.RemoteAddr().String(), "error", err)
	}
}

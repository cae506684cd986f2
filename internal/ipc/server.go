package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"lessonlink/internal/daemon"
	"lessonlink/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.WithComponent(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Lessonlink", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = status.PID
	resp.DatabasePath = status.DatabasePath
	resp.LockPath = status.LockFilePath
	resp.Dataset = status.Dataset
	return nil
}

func (s *service) Refresh(_ RefreshRequest, resp *RefreshResponse) error {
	s.logger.Debug("refresh requested")
	snapshot, err := s.daemon.Refresh(s.ctx)
	if err != nil {
		return err
	}
	resp.SnapshotID = snapshot.ID
	resp.Meetings = len(snapshot.Meetings)
	resp.Users = len(snapshot.Users)
	return nil
}

func (s *service) Match(req MatchRequest, resp *MatchResponse) error {
	s.logger.Debug("match requested", logging.Int("schedules", len(req.Schedules)))
	batchID, results, err := s.daemon.Match(s.ctx, req.Schedules)
	if err != nil {
		return err
	}
	resp.BatchID = batchID
	resp.Results = results
	return nil
}

func (s *service) Results(req ResultsRequest, resp *ResultsResponse) error {
	if req.ScheduleID != "" {
		result, ok := s.daemon.Result(req.ScheduleID)
		if !ok {
			return fmt.Errorf("no result for schedule %q", req.ScheduleID)
		}
		resp.Results = append(resp.Results, result)
		return nil
	}
	resp.Results = s.daemon.Results()
	return nil
}

func (s *service) Override(req OverrideRequest, resp *OverrideResponse) error {
	s.logger.Debug("override requested",
		logging.String(logging.FieldScheduleID, req.ScheduleID),
		logging.String("meeting_id", req.MeetingID))
	result, err := s.daemon.Override(s.ctx, req.ScheduleID, req.MeetingID)
	if err != nil {
		return err
	}
	resp.Result = result
	if history, histErr := s.daemon.OverrideHistory(s.ctx, req.ScheduleID); histErr == nil {
		resp.History = history
	}
	return nil
}

func (s *service) DatasetHealth(_ DatasetHealthRequest, resp *DatasetHealthResponse) error {
	resp.Health = s.daemon.Status().Dataset
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.logger.Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

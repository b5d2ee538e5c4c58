// Package iso8583 exposes the authorization pipeline over ISO 8583. It is a
// thin transport: each 0100 message becomes one Transaction, the domain
// error kind becomes the DE39 response code.
package iso8583

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	moov8583 "github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
	"golang.org/x/exp/slog"

	"github.com/roberto5g/mini-authorizer/authorizer/models"
)

// Response codes on DE39.
const (
	ResponseApproved          = "00"
	ResponseInvalidCard       = "14"
	ResponseFormatError       = "30"
	ResponseInsufficientFunds = "51"
	ResponseIncorrectPassword = "55"
	ResponseSystemMalfunction = "96"
)

// Authorizer is the consumed slice of the service: one authorize operation.
type Authorizer interface {
	Authorize(ctx context.Context, transaction *models.Transaction) error
}

// Server accepts ISO 8583 connections and answers authorization requests.
type Server struct {
	logger     *slog.Logger
	Addr       string
	listenAddr string
	authorizer Authorizer

	ln     net.Listener
	mu     sync.Mutex
	conns  []*connection.Connection
	closed bool
}

func NewServer(logger *slog.Logger, addr string, authorizer Authorizer) *Server {
	return &Server{
		logger:     logger.With(slog.String("component", "iso8583-server")),
		listenAddr: addr,
		authorizer: authorizer,
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listening tcp port: %w", err)
	}
	s.ln = ln
	s.Addr = ln.Addr().String()

	go s.acceptLoop()

	s.logger.Info("iso8583 server started", slog.String("addr", s.Addr))
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	c, err := connection.NewFrom(
		conn,
		Spec,
		ReadMessageLength,
		WriteMessageLength,
		connection.InboundMessageHandler(s.handleRequest),
	)
	if err != nil {
		s.logger.Error("establishing iso8583 connection", "err", err)
		conn.Close()
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		c.Close()
		return
	}
	s.conns = append(s.conns, c)
	s.mu.Unlock()
}

// Close implements io.Closer. The listener stops first so no new
// connections arrive while the active ones are torn down.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	conns := s.conns
	s.conns = nil
	s.mu.Unlock()

	err := s.ln.Close()
	for _, c := range conns {
		c.Close()
	}
	return err
}

func (s *Server) handleRequest(c *connection.Connection, message *moov8583.Message) {
	pan, _ := message.GetString(2)
	stan, _ := message.GetString(11)

	// anything that is not an 0100 still gets a reply so the client is not
	// left waiting out its send timeout
	var code string
	if mti, err := message.GetMTI(); err == nil && mti == "0100" {
		code = s.authorize(message)
	} else {
		s.logger.Info("rejecting unexpected message", slog.String("mti", mti))
		code = ResponseSystemMalfunction
	}

	response := moov8583.NewMessage(Spec)
	response.MTI("0110")
	if pan != "" {
		response.Field(2, pan)
	}
	response.Field(11, stan)
	response.Field(39, code)

	if err := c.Reply(response); err != nil {
		s.logger.Error("sending authorization response", "err", err)
	}
}

// authorize maps the message to a Transaction and the outcome to DE39.
func (s *Server) authorize(message *moov8583.Message) string {
	pan, err := message.GetString(2)
	if err != nil {
		return ResponseFormatError
	}
	amountStr, err := message.GetString(4)
	if err != nil {
		return ResponseFormatError
	}
	password, err := message.GetString(52)
	if err != nil {
		return ResponseFormatError
	}

	units, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil {
		return ResponseFormatError
	}

	transaction, err := models.NewTransaction(pan, password, models.NewMoneyFromMinorUnits(units))
	if err != nil {
		return ResponseFormatError
	}

	switch err := s.authorizer.Authorize(context.Background(), transaction); {
	case err == nil:
		return ResponseApproved
	case errors.Is(err, models.ErrCardNotFound):
		return ResponseInvalidCard
	case errors.Is(err, models.ErrInvalidCredential):
		return ResponseIncorrectPassword
	case errors.Is(err, models.ErrInsufficientBalance):
		return ResponseInsufficientFunds
	case errors.Is(err, models.ErrInvalidAmount):
		return ResponseFormatError
	default:
		s.logger.Error("authorizing transaction", "err", err)
		return ResponseSystemMalfunction
	}
}

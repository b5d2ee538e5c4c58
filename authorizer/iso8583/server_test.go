package iso8583_test

import (
	"context"
	"os"
	"testing"

	moov8583 "github.com/moov-io/iso8583"
	connection "github.com/moov-io/iso8583-connection"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/roberto5g/mini-authorizer/authorizer"
	iso "github.com/roberto5g/mini-authorizer/authorizer/iso8583"
)

type plainEncoder struct{}

func (plainEncoder) Hash(plain string) (string, error)  { return plain, nil }
func (plainEncoder) Matches(plain, encoded string) bool { return plain == encoded }

func TestAuthorizationOverISO8583(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout))

	svc := authorizer.NewService(authorizer.NewRepository(), plainEncoder{})
	_, err := svc.CreateCard(context.Background(), "1234567890123456", "1234")
	require.NoError(t, err)

	server := iso.NewServer(logger, "127.0.0.1:0", svc)
	require.NoError(t, server.Start())
	defer server.Close()

	c, err := connection.New(server.Addr, iso.Spec, iso.ReadMessageLength, iso.WriteMessageLength)
	require.NoError(t, err)
	require.NoError(t, c.Connect())
	defer c.Close()

	send := func(t *testing.T, stan, amount, password string) string {
		t.Helper()
		msg := moov8583.NewMessage(iso.Spec)
		msg.MTI("0100")
		require.NoError(t, msg.Field(2, "1234567890123456"))
		require.NoError(t, msg.Field(4, amount))
		require.NoError(t, msg.Field(11, stan))
		require.NoError(t, msg.Field(52, password))

		response, err := c.Send(msg)
		require.NoError(t, err)

		// the echoed STAN must come back verbatim, leading zeros included,
		// or the reply would never have matched this request
		respStan, err := response.GetString(11)
		require.NoError(t, err)
		require.Equal(t, stan, respStan)

		code, err := response.GetString(39)
		require.NoError(t, err)
		return code
	}

	// 100.00 approved, balance 500.00 -> 400.00
	require.Equal(t, iso.ResponseApproved, send(t, "000001", "000000010000", "1234"))

	balance, err := svc.GetBalance(context.Background(), "1234567890123456")
	require.NoError(t, err)
	require.Equal(t, "400.00", balance.String())

	// 1000.00 over the remaining balance
	require.Equal(t, iso.ResponseInsufficientFunds, send(t, "000002", "000000100000", "1234"))

	// wrong password
	require.Equal(t, iso.ResponseIncorrectPassword, send(t, "000003", "000000001000", "0000"))

	// zero amount never reaches the orchestrator
	require.Equal(t, iso.ResponseFormatError, send(t, "000004", "000000000000", "1234"))

	balance, err = svc.GetBalance(context.Background(), "1234567890123456")
	require.NoError(t, err)
	require.Equal(t, "400.00", balance.String())
}

func TestAuthorizeUnknownCard(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout))

	svc := authorizer.NewService(authorizer.NewRepository(), plainEncoder{})
	server := iso.NewServer(logger, "127.0.0.1:0", svc)
	require.NoError(t, server.Start())
	defer server.Close()

	c, err := connection.New(server.Addr, iso.Spec, iso.ReadMessageLength, iso.WriteMessageLength)
	require.NoError(t, err)
	require.NoError(t, c.Connect())
	defer c.Close()

	msg := moov8583.NewMessage(iso.Spec)
	msg.MTI("0100")
	require.NoError(t, msg.Field(2, "0000000000000000"))
	require.NoError(t, msg.Field(4, "000000001000"))
	require.NoError(t, msg.Field(11, "000001"))
	require.NoError(t, msg.Field(52, "1234"))

	response, err := c.Send(msg)
	require.NoError(t, err)

	code, err := response.GetString(39)
	require.NoError(t, err)
	require.Equal(t, iso.ResponseInvalidCard, code)
}

// TestUnexpectedMessageTypeIsRejected sends a message type the server does
// not handle; it must still answer (DE39 96) rather than leave the client
// waiting out its send timeout.
func TestUnexpectedMessageTypeIsRejected(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout))

	svc := authorizer.NewService(authorizer.NewRepository(), plainEncoder{})
	server := iso.NewServer(logger, "127.0.0.1:0", svc)
	require.NoError(t, server.Start())
	defer server.Close()

	c, err := connection.New(server.Addr, iso.Spec, iso.ReadMessageLength, iso.WriteMessageLength)
	require.NoError(t, err)
	require.NoError(t, c.Connect())
	defer c.Close()

	msg := moov8583.NewMessage(iso.Spec)
	msg.MTI("0200")
	require.NoError(t, msg.Field(2, "1234567890123456"))
	require.NoError(t, msg.Field(11, "000009"))

	response, err := c.Send(msg)
	require.NoError(t, err)

	code, err := response.GetString(39)
	require.NoError(t, err)
	require.Equal(t, iso.ResponseSystemMalfunction, code)
}

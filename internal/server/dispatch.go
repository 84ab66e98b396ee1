package server

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/rpsls/internal/bot"
	"github.com/lox/rpsls/internal/game"
	"github.com/lox/rpsls/internal/protocol"
	"github.com/lox/rpsls/internal/session"
	"github.com/lox/rpsls/rules"
)

// dispatcher turns one connection's requests into replies. It is only
// touched from the connection's read loop.
type dispatcher struct {
	srv     *Server
	session *session.Session
	logger  *log.Logger
}

func newDispatcher(srv *Server, seed int64, logger *log.Logger) *dispatcher {
	opts := []session.Option{
		session.WithClock(srv.clock),
		session.WithLogger(logger),
		session.WithWinningScore(srv.winningScore),
		session.WithSeed(seed),
	}
	if srv.metrics != nil {
		opts = append(opts, session.WithObserver(srv.metrics))
	}
	return &dispatcher{
		srv:     srv,
		session: session.New(srv.registry, opts...),
		logger:  logger,
	}
}

func (d *dispatcher) handle(msg *protocol.Message) *protocol.Message {
	var (
		reply any
		typ   protocol.MessageType
		err   error
	)

	switch msg.Type {
	case protocol.TypeHello:
		typ = protocol.TypeWelcome
		var data protocol.HelloData
		if err = msg.Decode(&data); err == nil {
			reply, err = d.session.Start(data.PlayerName, data.Opponent)
		}
	case protocol.TypeMove:
		typ = protocol.TypeRound
		var data protocol.MoveData
		if err = msg.Decode(&data); err == nil {
			reply, err = d.move(data.Choice)
		}
	case protocol.TypeRestart:
		typ = protocol.TypeWelcome
		var data protocol.RestartData
		if err = msg.Decode(&data); err == nil {
			reply, err = d.session.Restart(data.KeepOpponent, data.Opponent)
		}
	case protocol.TypeListProfiles:
		typ = protocol.TypeProfiles
		reply = d.session.Profiles()
	default:
		err = &protocol.ErrorData{
			Code:    protocol.CodeInvalidMessage,
			Message: fmt.Sprintf("unknown message type %q", msg.Type),
		}
	}

	if err != nil {
		return d.errorReply(err)
	}
	out, err := protocol.NewMessageAt(typ, reply, d.srv.clock.Now())
	if err != nil {
		return d.errorReply(err)
	}
	return out
}

func (d *dispatcher) move(choice string) (*protocol.RoundData, error) {
	round, err := d.session.Play(choice)
	if err != nil {
		return nil, err
	}
	if round.Complete && d.srv.metrics != nil {
		d.srv.metrics.MatchWon(round.MatchWinner == d.session.Match().Human().Name())
	}
	return round, nil
}

func (d *dispatcher) errorReply(err error) *protocol.Message {
	data := errorData(err)
	if data.Code == protocol.CodeInternal {
		d.logger.Error("Request failed", "error", err)
	} else {
		d.logger.Debug("Request rejected", "code", data.Code, "error", err)
	}
	if d.srv.metrics != nil {
		d.srv.metrics.ErrorSent(data.Code)
	}
	msg, _ := protocol.NewMessageAt(protocol.TypeError, data, d.srv.clock.Now()) // ErrorData always marshals
	return msg
}

// errorData maps domain errors onto protocol error codes.
func errorData(err error) protocol.ErrorData {
	var pe *protocol.ErrorData
	code := protocol.CodeInternal
	switch {
	case errors.As(err, &pe):
		return *pe
	case errors.Is(err, rules.ErrInvalidMoveKind):
		code = protocol.CodeInvalidMove
	case errors.Is(err, bot.ErrUnknownProfile), errors.Is(err, session.ErrOpponentRequired):
		code = protocol.CodeUnknownProfile
	case errors.Is(err, game.ErrDuplicateName):
		code = protocol.CodeDuplicateName
	case errors.Is(err, game.ErrMatchComplete):
		code = protocol.CodeMatchComplete
	case errors.Is(err, session.ErrNotStarted):
		code = protocol.CodeNoMatch
	case errors.Is(err, session.ErrAlreadyStarted), errors.Is(err, protocol.ErrMalformed):
		code = protocol.CodeInvalidMessage
	}
	return protocol.ErrorData{Code: code, Message: err.Error()}
}

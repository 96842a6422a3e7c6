package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/flight-concierge/internal/extract"
	"github.com/bobby-s-dev/flight-concierge/internal/models"
	"github.com/bobby-s-dev/flight-concierge/internal/session"
	"github.com/bobby-s-dev/flight-concierge/internal/store"
	"github.com/bobby-s-dev/flight-concierge/internal/tools"
)

// ErrExit ends the loop without error.
var ErrExit = errors.New("exit")

const flightsEndpoint = "/get_flights"

type ChatCompleter interface {
	Complete(ctx context.Context, prompt, history string) (string, error)
}

type FlightSearcher interface {
	GetFlights(ctx context.Context, query models.FlightQuery) (models.FlightsResponse, error)
}

type Committer interface {
	Commit(ctx context.Context, message string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, fen string) (tools.Analysis, error)
}

type Deps struct {
	Chat    ChatCompleter
	Flights FlightSearcher
	Git     Committer
	Chess   Analyzer
	Logger  *zap.Logger
}

// Builtin receives the arguments that follow the command words.
type Builtin func(ctx context.Context, s *Shell, args []string) error

type command struct {
	words []string
	// exact commands take no arguments; extra words send the line to chat
	exact bool
	// raw commands get the remaining fields unparsed
	raw bool
	fn  Builtin
}

type Shell struct {
	in       *bufio.Reader
	Out      io.Writer
	Err      io.Writer
	session  *session.Session
	deps     Deps
	logger   *zap.Logger
	parser   Parser
	commands []command
}

func New(reader io.Reader, out, errw io.Writer, sess *session.Session, deps Deps) *Shell {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{
		in:      bufio.NewReader(reader),
		Out:     out,
		Err:     errw,
		session: sess,
		deps:    deps,
		logger:  logger,
		parser:  ArgParser{},
	}
	s.registerBuiltins()
	return s
}

// Run reads lines until exit or EOF. Failures inside a command are reported
// to the user and never end the loop.
func (s *Shell) Run(ctx context.Context) error {
	renderWelcome(s.Out)

	for {
		fmt.Fprint(s.Out, "Tú: ")

		line, err := s.in.ReadString('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return err
		}

		line = strings.TrimSpace(line)
		if line != "" {
			if err := s.Handle(ctx, line); errors.Is(err, ErrExit) {
				fmt.Fprintln(s.Out, farewell)
				return nil
			}
		}

		if eof {
			fmt.Fprintln(s.Out)
			fmt.Fprintln(s.Out, farewell)
			return nil
		}
	}
}

// Handle processes one non-empty input line.
func (s *Shell) Handle(ctx context.Context, line string) error {
	fields := strings.Fields(line)

	for _, cmd := range s.commands {
		if !matches(fields, cmd) {
			continue
		}
		rest := fields[len(cmd.words):]

		args := rest
		if !cmd.raw {
			parsed, err := s.parser.Parse(afterWords(line, len(cmd.words)))
			if err != nil {
				fmt.Fprintln(s.Out, "Formato incorrecto:", err)
				return nil
			}
			args = parsed
		}

		if err := cmd.fn(ctx, s, args); err != nil {
			if errors.Is(err, ErrExit) {
				return err
			}
			s.logger.Debug("command failed", zap.String("command", strings.Join(cmd.words, " ")), zap.Error(err))
			fmt.Fprintln(s.Err, "Error:", err)
		}
		return nil
	}

	if query, ok := extract.Extract(line); ok {
		s.logger.Debug("flight request detected",
			zap.String("origin", query.Origin),
			zap.String("destination", query.Destination),
			zap.String("date", query.DepartureDate))
		s.searchFlights(ctx, query)
		return nil
	}

	s.chat(ctx, line)
	return nil
}

func matches(fields []string, cmd command) bool {
	if len(fields) < len(cmd.words) {
		return false
	}
	if cmd.exact && len(fields) != len(cmd.words) {
		return false
	}
	for i, w := range cmd.words {
		if strings.ToLower(fields[i]) != w {
			return false
		}
	}
	return true
}

// afterWords returns line with its first n whitespace-separated words removed.
func afterWords(line string, n int) string {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	for i := 0; i < n; i++ {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return rest
}

// searchFlights never fails: an unreachable server yields an empty result.
// Every call is logged.
func (s *Shell) searchFlights(ctx context.Context, query models.FlightQuery) {
	resp, err := s.deps.Flights.GetFlights(ctx, query)
	if err != nil {
		s.logger.Warn("flight server unavailable", zap.Error(err))
		resp = models.FlightsResponse{Flights: []models.FlightRecord{}}
	}
	if resp.Flights == nil {
		resp.Flights = []models.FlightRecord{}
	}

	s.session.Record(flightsEndpoint, query, resp)
	renderFlights(s.Out, resp)
}

func (s *Shell) chat(ctx context.Context, line string) {
	response, err := s.deps.Chat.Complete(ctx, line, s.session.History())
	if err != nil {
		s.logger.Warn("chat completion failed", zap.Error(err))
		response = chatErrorPrefix + err.Error()
	}
	fmt.Fprintln(s.Out, "Chatbot:", response)
	s.session.AppendExchange(line, response)
}

func (s *Shell) register(cmd command) {
	s.commands = append(s.commands, cmd)
}

func (s *Shell) registerBuiltins() {
	exit := func(ctx context.Context, s *Shell, args []string) error {
		return ErrExit
	}
	for _, w := range []string{"salir", "exit", "quit"} {
		s.register(command{words: []string{w}, exact: true, raw: true, fn: exit})
	}

	showLog := func(ctx context.Context, s *Shell, args []string) error {
		return renderLog(s.Out, s.session.Log())
	}
	s.register(command{words: []string{"ver", "log"}, exact: true, raw: true, fn: showLog})
	s.register(command{words: []string{"log"}, exact: true, raw: true, fn: showLog})

	help := func(ctx context.Context, s *Shell, args []string) error {
		fmt.Fprintln(s.Out, helpText)
		return nil
	}
	s.register(command{words: []string{"ayuda"}, exact: true, raw: true, fn: help})
	s.register(command{words: []string{"help"}, exact: true, raw: true, fn: help})

	s.register(command{words: []string{"buscar", "vuelo"}, fn: func(ctx context.Context, s *Shell, args []string) error {
		if len(args) < 3 {
			fmt.Fprintln(s.Out, searchUsage)
			return nil
		}
		s.searchFlights(ctx, models.FlightQuery{Origin: args[0], Destination: args[1], DepartureDate: args[2]})
		return nil
	}})

	s.register(command{words: []string{"archivo", "guardar"}, fn: func(ctx context.Context, s *Shell, args []string) error {
		if len(args) < 1 {
			fmt.Fprintln(s.Out, fileUsage)
			return nil
		}
		content := strings.Join(args[1:], " ")
		if err := s.session.Files().Write(args[0], content); err != nil {
			return fmt.Errorf("no se pudo guardar el archivo: %w", err)
		}
		fmt.Fprintf(s.Out, "Archivo '%s' guardado (%d bytes).\n", args[0], len(content))
		return nil
	}})

	s.register(command{words: []string{"archivo", "leer"}, fn: func(ctx context.Context, s *Shell, args []string) error {
		if len(args) != 1 {
			fmt.Fprintln(s.Out, fileUsage)
			return nil
		}
		content, err := s.session.Files().Read(args[0])
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(s.Out, "No existe el archivo '%s'.\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("no se pudo leer el archivo: %w", err)
		}
		fmt.Fprintf(s.Out, "--- %s ---\n%s\n", args[0], content)
		return nil
	}})

	s.register(command{words: []string{"archivo", "listar"}, exact: true, raw: true, fn: func(ctx context.Context, s *Shell, args []string) error {
		files, err := s.session.Files().List()
		if err != nil {
			return fmt.Errorf("no se pudo listar los archivos: %w", err)
		}
		renderFiles(s.Out, files)
		return nil
	}})

	s.register(command{words: []string{"archivo", "borrar"}, fn: func(ctx context.Context, s *Shell, args []string) error {
		if len(args) != 1 {
			fmt.Fprintln(s.Out, fileUsage)
			return nil
		}
		err := s.session.Files().Delete(args[0])
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(s.Out, "No existe el archivo '%s'.\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("no se pudo borrar el archivo: %w", err)
		}
		fmt.Fprintf(s.Out, "Archivo '%s' borrado.\n", args[0])
		return nil
	}})

	s.register(command{words: []string{"git", "commit"}, fn: func(ctx context.Context, s *Shell, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(s.Out, gitUsage)
			return nil
		}
		out, err := s.deps.Git.Commit(ctx, strings.Join(args, " "))
		if out != "" {
			fmt.Fprint(s.Out, out)
		}
		if err != nil {
			return fmt.Errorf("git falló: %w", err)
		}
		fmt.Fprintln(s.Out, "Commit creado.")
		return nil
	}})

	// FEN fields are passed through untouched
	analyze := func(ctx context.Context, s *Shell, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(s.Out, chessUsage)
			return nil
		}
		analysis, err := s.deps.Chess.Analyze(ctx, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("el análisis falló: %w", err)
		}
		renderAnalysis(s.Out, analysis)
		return nil
	}
	s.register(command{words: []string{"ajedrez"}, raw: true, fn: analyze})
	s.register(command{words: []string{"chess"}, raw: true, fn: analyze})
}

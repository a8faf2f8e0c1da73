package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ziadkadry99/chatdbg/internal/config"
	"github.com/ziadkadry99/chatdbg/internal/progress"
	"github.com/ziadkadry99/chatdbg/internal/render"
	"github.com/ziadkadry99/chatdbg/internal/trace"
	"github.com/ziadkadry99/chatdbg/internal/transport"
)

// Session owns the conversation state and runs the interactive
// read/build/send/display loop. It is strictly synchronous: one request in
// flight at most, and the history is only ever touched from this loop.
type Session struct {
	cfg    *config.Config
	tr     transport.Transport
	reader LineReader
	out    io.Writer
	errOut io.Writer

	history History
	mode    Mode
	headers map[string]string

	pending    string
	hasPending bool

	verbose   bool
	recorder  *trace.Recorder
	indicator progress.Indicator
}

// NewSession creates a session over the given transport. The reader supplies
// operator input; out and errOut receive conversation output and error
// messages respectively.
func NewSession(cfg *config.Config, tr transport.Transport, reader LineReader, out, errOut io.Writer) *Session {
	s := &Session{
		cfg:       cfg,
		tr:        tr,
		reader:    reader,
		out:       out,
		errOut:    errOut,
		mode:      ModeUser,
		indicator: progress.Noop{},
	}
	s.headers = map[string]string{"Content-Type": "application/json"}
	if token := cfg.ResolveToken(); token != "" {
		s.headers["Authorization"] = "Bearer " + token
	}
	if initial := strings.TrimSpace(cfg.InitialInput); initial != "" {
		s.pending = initial
		s.hasPending = true
	}
	return s
}

// SetVerbose enables per-turn status and token usage output.
func (s *Session) SetVerbose(v bool) {
	s.verbose = v
}

// SetRecorder attaches an exchange recorder. Nil disables tracing.
func (s *Session) SetRecorder(r *trace.Recorder) {
	s.recorder = r
}

// SetIndicator replaces the in-flight request indicator.
func (s *Session) SetIndicator(ind progress.Indicator) {
	if ind == nil {
		ind = progress.Noop{}
	}
	s.indicator = ind
}

// Mode returns the current input mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// History returns the conversation history owned by this session.
func (s *Session) History() *History {
	return &s.history
}

// Run drives the loop until /quit or end of input.
func (s *Session) Run(ctx context.Context) error {
	s.printWelcome()
	for {
		line, err := s.readInput()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := s.dispatch(input); quit {
				return nil
			}
			continue
		}

		s.sendTurn(ctx, input)
	}
}

func (s *Session) readInput() (string, error) {
	label := fmt.Sprintf("[%s]>", s.mode)
	if s.hasPending {
		s.hasPending = false
		fmt.Fprintf(s.out, "%s %s\n", label, s.pending)
		return s.pending, nil
	}
	return s.reader.ReadLine(label)
}

// dispatch handles one slash command, returning true on /quit.
func (s *Session) dispatch(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit":
		return true
	case "/help":
		s.printHelp()
	case "/show":
		s.showHistory()
	case "/clear":
		s.history.Clear()
		fmt.Fprintln(s.out, "History cleared.")
	case "/mode":
		if len(fields) < 2 {
			fmt.Fprintln(s.errOut, "Usage: /mode <user|assistant|system|json|raw>")
			return false
		}
		mode, err := ParseMode(fields[1])
		if err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.mode = mode
		fmt.Fprintf(s.out, "Mode set to: %s\n", mode)
	default:
		fmt.Fprintf(s.errOut, "Error: %v: %s (try /help)\n", ErrUnknownCommand, fields[0])
	}
	return false
}

func (s *Session) sendTurn(ctx context.Context, input string) {
	body, toAppend, err := BuildPayload(s.cfg, s.history.Snapshot(), input, s.mode)
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	payload, err := json.Marshal(body)
	if err != nil {
		fmt.Fprintf(s.errOut, "Error: encoding request body: %v\n", err)
		return
	}

	s.indicator.Start()
	resp, err := s.tr.Post(ctx, s.cfg.URL, s.headers, payload)
	s.indicator.Stop()

	if err != nil {
		s.record(ctx, payload, nil, err)
		fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	s.record(ctx, payload, resp, nil)

	reply := ExtractReply(resp.Body)
	if !reply.Standard {
		fmt.Fprintln(s.errOut, "Warning: response did not match the chat-completion shape; showing raw body.")
	}
	s.printReply(reply.Text)

	if s.verbose {
		fmt.Fprintf(s.errOut, "HTTP %d\n", resp.StatusCode)
		if reply.Usage != nil {
			fmt.Fprintf(s.errOut, "Tokens: %d prompt, %d completion\n",
				reply.Usage.PromptTokens, reply.Usage.CompletionTokens)
		}
	}

	// Raw mode is a pass-through escape hatch: nothing is committed.
	if s.mode == ModeRaw {
		return
	}
	s.history.Append(toAppend...)
	if reply.Standard {
		s.history.Append(Message{Role: RoleAssistant, Content: reply.Text})
	}
}

func (s *Session) printReply(text string) {
	if s.cfg.Render {
		out := render.Markdown(text)
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		fmt.Fprint(s.out, out)
		return
	}
	fmt.Fprintln(s.out, text)
}

func (s *Session) record(ctx context.Context, reqBody []byte, resp *transport.Response, sendErr error) {
	if s.recorder == nil {
		return
	}
	ex := trace.Exchange{Mode: s.mode.String(), RequestBody: string(reqBody)}
	if resp != nil {
		ex.StatusCode = resp.StatusCode
		ex.ResponseBody = string(resp.Body)
	}
	if sendErr != nil {
		ex.Error = sendErr.Error()
		var terr *transport.Error
		if errors.As(sendErr, &terr) {
			ex.StatusCode = terr.StatusCode
			ex.ResponseBody = string(terr.Body)
		}
	}
	if err := s.recorder.Record(ctx, ex); err != nil {
		fmt.Fprintf(s.errOut, "Warning: could not record exchange: %v\n", err)
	}
}

func (s *Session) showHistory() {
	snapshot := s.history.Snapshot()
	if len(snapshot) == 0 {
		fmt.Fprintln(s.out, "History is empty.")
		return
	}
	for _, msg := range snapshot {
		fmt.Fprintf(s.out, "%s: %s\n", msg.Role, renderContent(msg.Content))
	}
}

func renderContent(content any) string {
	if text, ok := content.(string); ok {
		return text
	}
	pretty, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", content)
	}
	return string(pretty)
}

func (s *Session) printWelcome() {
	fmt.Fprintf(s.out, "chatdbg connected to %s (model %s)\n", s.cfg.URL, s.cfg.Model)
	s.printHelp()
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  /mode <user|assistant|system|json|raw>  switch input mode")
	fmt.Fprintln(s.out, "  /show   print the conversation history")
	fmt.Fprintln(s.out, "  /clear  clear the conversation history")
	fmt.Fprintln(s.out, "  /help   show this help")
	fmt.Fprintln(s.out, "  /quit   exit")
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Modes:")
	fmt.Fprintln(s.out, "  user/assistant/system  input becomes one message of that role")
	fmt.Fprintln(s.out, "  json  input is a message object or array, appended to history")
	fmt.Fprintln(s.out, "  raw   input is sent verbatim as the whole request body")
	fmt.Fprintln(s.out)
}

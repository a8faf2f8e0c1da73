package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// LineReader supplies one line of operator input per call. Implementations
// return io.EOF when input is exhausted.
type LineReader interface {
	ReadLine(label string) (string, error)
}

var promptTemplates = &promptui.PromptTemplates{
	Prompt:  "{{ . }} ",
	Valid:   "{{ . }} ",
	Invalid: "{{ . }} ",
	Success: "{{ . }} ",
}

// PromptReader reads interactive input from the terminal via promptui.
type PromptReader struct{}

func (PromptReader) ReadLine(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Templates: promptTemplates,
	}
	line, err := prompt.Run()
	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		// Interrupt at the prompt ends the session like end-of-input.
		return "", io.EOF
	default:
		return "", err
	}
}

// ScanReader reads lines from an arbitrary reader, echoing the prompt label
// to out. Used for piped stdin and in tests.
type ScanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScanReader creates a ScanReader over r. out may be nil to suppress
// prompt echoing.
func NewScanReader(r io.Reader, out io.Writer) *ScanReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ScanReader{scanner: scanner, out: out}
}

func (r *ScanReader) ReadLine(label string) (string, error) {
	if r.out != nil {
		fmt.Fprint(r.out, label+" ")
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}

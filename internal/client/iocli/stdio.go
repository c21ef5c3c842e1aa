package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio implements IO over a reader and a writer.
type Stdio struct {
	in   *bufio.Reader
	out  io.Writer
	file *os.File // исходный in, если это файл: для ввода без эха
}

// NewStdio returns IO bound to os.Stdin and os.Stdout.
func NewStdio() IO {
	return New(os.Stdin, os.Stdout)
}

// New returns IO bound to in and out.
func New(in io.Reader, out io.Writer) IO {
	file, _ := in.(*os.File)
	return &Stdio{
		in:   bufio.NewReader(in),
		out:  out,
		file: file,
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

// ReadInput prints prompt and reads one line. A final line without a newline
// is accepted.
func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.in.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword prints prompt and reads a secret without echo when input is a
// terminal. Piped input is read as a plain line.
func (s *Stdio) ReadPassword(prompt string) (string, error) {
	if s.file == nil || !term.IsTerminal(int(s.file.Fd())) {
		return s.ReadInput(prompt)
	}

	s.Printf("%s", prompt)
	secret, err := term.ReadPassword(int(s.file.Fd()))
	s.Println("")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

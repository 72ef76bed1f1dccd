package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"
)

var (
	mu     sync.Mutex
	in     io.Reader = os.Stdin
	out    io.Writer = os.Stdout
	reader *bufio.Reader
)

// ErrNoInput is returned when input ends before an answer was read.
var ErrNoInput = errors.New("no input")

// SetIO replaces stdin/stdout and returns a func restoring them.
func SetIO(r io.Reader, w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	prevIn, prevOut, prevReader := in, out, reader
	in, out, reader = r, w, nil
	return func() {
		mu.Lock()
		defer mu.Unlock()
		in, out, reader = prevIn, prevOut, prevReader
	}
}

func readLine() (string, error) {
	if reader == nil {
		reader = bufio.NewReader(in)
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return line, nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	fmt.Fprint(out, label)
	input, err := readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptPassword reads a secret without echo when stdin is a terminal.
func PromptPassword(label string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	fmt.Fprint(out, label)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	input, err := readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(input, "\r\n"), nil
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	mu.Lock()
	defer mu.Unlock()

	fmt.Fprint(out, label+" (y/n) ")
	input, err := readLine()
	if err != nil {
		return false, err
	}

	response := strings.TrimSpace(strings.ToLower(input))
	return response == "y" || response == "yes", nil
}

// PromptSelect prompts user to select from options and returns its index.
func PromptSelect(label string, options []string) (int, error) {
	mu.Lock()
	defer mu.Unlock()

	fmt.Fprintln(out, label)
	for i, opt := range options {
		fmt.Fprintf(out, "%d) %s\n", i+1, opt)
	}
	fmt.Fprint(out, "Select option: ")

	input, err := readLine()
	if err != nil {
		return -1, err
	}

	selection, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return -1, fmt.Errorf("not a number: %q", strings.TrimSpace(input))
	}
	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection: %d", selection)
	}
	return selection - 1, nil
}

// PromptMultiline reads lines until an empty line or end of input.
func PromptMultiline(label string) (string, error) {
	mu.Lock()
	defer mu.Unlock()

	fmt.Fprintf(out, "%s (finish with an empty line):\n", label)

	var lines []string
	for {
		line, err := readLine()
		if errors.Is(err, ErrNoInput) {
			break
		}
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

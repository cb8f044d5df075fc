package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fastygo/taskapp/domain"
)

// prompt prints label and reads one line without its terminator. A final
// line without a newline is still returned; io.EOF is reported on the next read.
func (m *Menu) prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.printf("%s", label)

	line, err := m.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptCode reads a non-negative integer. ok is false when the answer was
// rejected and invalid has been printed.
func (m *Menu) promptCode(ctx context.Context, label, invalid string) (code int, ok bool, err error) {
	answer, err := m.prompt(ctx, label)
	if err != nil {
		return 0, false, err
	}
	code, valid := parseCode(answer)
	if !valid {
		m.println(invalid)
		m.println()
		return 0, false, nil
	}
	return code, true, nil
}

// parseCode accepts ASCII digits only; signs, blanks and overflow are rejected.
func parseCode(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func describe(err error) string {
	switch domain.CodeOf(err) {
	case domain.ErrCodeStorageFault:
		return "Storage error: " + err.Error()
	case "":
		return "Error: " + err.Error()
	default:
		return err.Error()
	}
}

func (m *Menu) println(a ...any) {
	fmt.Fprintln(m.out, a...)
}

func (m *Menu) printf(format string, a ...any) {
	fmt.Fprintf(m.out, format, a...)
}

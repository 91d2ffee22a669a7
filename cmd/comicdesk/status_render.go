package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"comicdesk/internal/logging"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusStyles = [...]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

func (k statusKind) style() (label, color string) {
	if k < 0 || int(k) >= len(statusStyles) {
		return statusStyles[statusInfo].label, ""
	}
	s := statusStyles[k]
	return s.label, s.color
}

// renderStatusLine formats "  Label:   [KIND] message", coloured as a whole
// when colorize is set.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag, color := kind.style()
	body := "[" + tag + "]"
	if message != "" {
		body += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", body)
	if colorize && color != "" {
		return color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	line := "== " + strings.TrimSpace(title) + " =="
	lines := []string{line, strings.Repeat("-", len(line))}
	if colorize {
		for i := range lines {
			lines[i] = ansiBlue + lines[i] + ansiReset
		}
	}
	return lines
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	return ok && logging.IsTerminal(file)
}

// jobStateKind maps orchestrator job states onto status colours.
func jobStateKind(state string) statusKind {
	state = strings.ToUpper(strings.TrimSpace(state))
	switch {
	case state == "DONE":
		return statusOK
	case strings.HasPrefix(state, "ERROR"):
		return statusError
	case strings.HasPrefix(state, "DUPLICATE"):
		return statusWarn
	default:
		return statusInfo
	}
}

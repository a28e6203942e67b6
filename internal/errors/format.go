package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

var colorEnabled = true

// DisableColors turns off ANSI colors in Format and PrintError.
func DisableColors() {
	colorEnabled = false
}

// EnableColors turns ANSI colors back on.
func EnableColors() {
	colorEnabled = true
}

func paint(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// detailWidth is where detail text is wrapped.
const detailWidth = 72

// Format renders the error for a terminal:
//
//	E001 render: Unknown registry label
//	  label "menus" is not defined
//	  caused by: ...
//	  hint: did you mean "menu"?
//
// Without a detail the registered explanation of the code is shown.
func (e *Error) Format() string {
	var b strings.Builder
	b.WriteString(e.header(true))
	b.WriteByte('\n')

	detail := e.Detail
	if detail == "" {
		detail = Explain(e.Code)
	}
	for _, line := range wrapText(detail, detailWidth) {
		b.WriteString("  " + line + "\n")
	}
	for _, cause := range causes(e.Wrapped) {
		b.WriteString("  " + paint(colorGray, "caused by: ") + cause + "\n")
	}
	if e.Suggestion != "" {
		b.WriteString("  " + paint(colorCyan, "hint: ") + e.Suggestion + "\n")
	}
	return b.String()
}

// header is "CODE category: message", leaving out what is unset.
func (e *Error) header(color bool) string {
	var parts []string
	if e.Code != "" {
		code := e.Code
		if color {
			code = paint(colorRed+colorBold, code)
		}
		parts = append(parts, code)
	}
	if e.Category != "" {
		cat := string(e.Category)
		if color {
			cat = paint(colorGray, cat)
		}
		parts = append(parts, cat)
	}
	if len(parts) == 0 {
		return e.Message
	}
	return strings.Join(parts, " ") + ": " + e.Message
}

// causes lists the wrapped chain. Engine errors contribute their header and
// detail; the first foreign error ends the chain with its own text.
func causes(err error) []string {
	var out []string
	for err != nil {
		ce, ok := err.(*Error)
		if !ok {
			return append(out, err.Error())
		}
		line := ce.header(false)
		if ce.Detail != "" {
			line += " (" + ce.Detail + ")"
		}
		out = append(out, line)
		err = ce.Wrapped
	}
	return out
}

// FormatCompact returns the error on one line, for logs.
func (e *Error) FormatCompact() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code + ": ")
	}
	b.WriteString(e.Message)
	if e.Suggestion != "" {
		b.WriteString(" (" + e.Suggestion + ")")
	}
	return b.String()
}

type jsonError struct {
	Code       string   `json:"code,omitempty"`
	Category   Category `json:"category,omitempty"`
	Message    string   `json:"message"`
	Detail     string   `json:"detail,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	Cause      []string `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object, the wrapped chain under
// "cause".
func (e *Error) FormatJSON() string {
	data, err := json.Marshal(jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		Cause:      causes(e.Wrapped),
	})
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	var lines []string
	var cur strings.Builder
	for _, word := range strings.Fields(text) {
		if cur.Len() > 0 && cur.Len()+1+len(word) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(word)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// Fprint writes err to w, formatted when it is or wraps an *Error.
func Fprint(w io.Writer, err error) {
	var ce *Error
	if stderrors.As(err, &ce) {
		fmt.Fprint(w, ce.Format())
		return
	}
	fmt.Fprintf(w, "%s %s\n", paint(colorRed+colorBold, "error:"), err)
}

// PrintError writes err to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}

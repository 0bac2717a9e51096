package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lexfrei/go-cpapi"
)

var (
	okLabel    = color.New(color.FgGreen)
	warnLabel  = color.New(color.FgYellow)
	errorLabel = color.New(color.FgRed)
)

// printer writes timestamped progress lines, or JSON documents in --json mode.
type printer struct {
	out  io.Writer
	json bool
	now  func() time.Time
}

func newPrinter(out io.Writer, jsonOutput bool) *printer {
	return &printer{out: out, json: jsonOutput, now: time.Now}
}

// line prints "[HH:MM:SS] text".
func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.out, "[%s] %s\n", p.now().Format(time.TimeOnly), fmt.Sprintf(format, args...))
}

func (p *printer) blank() {
	fmt.Fprintln(p.out)
}

func (p *printer) task(task cpapi.Task) {
	p.line("\tTask: %s (%d%%)", statusLabel(task.Status), task.Percent)
}

func (p *printer) details(details []cpapi.TaskDetail) {
	for _, detail := range details {
		p.line("%s", detail.Title)
		p.messages("Notifications", detail.Notifications, nil)
		p.messages("Warnings", detail.Warnings, warnLabel)
		p.messages("Errors", detail.Errors, errorLabel)
	}
}

func (p *printer) messages(heading string, messages []string, label *color.Color) {
	if len(messages) == 0 {
		return
	}

	p.line("\t%s:", heading)
	for _, message := range messages {
		if label != nil {
			message = label.Sprint(message)
		}
		p.line("\t %s", message)
	}
}

func (p *printer) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}

	_, err = fmt.Fprintln(p.out, string(data))
	return errors.Wrap(err, "failed to write output")
}

// statusLabel renders a task status for humans, coloured by outcome.
func statusLabel(status cpapi.TaskStatus) string {
	switch {
	case status == cpapi.TaskStatusTimedOut:
		return warnLabel.Sprint("Timed out waiting for task")
	case status == cpapi.TaskStatusSucceeded:
		return okLabel.Sprint(title(string(status)))
	case status == cpapi.TaskStatusFailed:
		return errorLabel.Sprint(title(string(status)))
	case status.InProgress():
		return title(string(cpapi.TaskStatusInProgress))
	case status == "":
		return "Unknown"
	default:
		return warnLabel.Sprint(title(string(status)))
	}
}

// title upper-cases the first letter of each word. Casers are stateful, so
// each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

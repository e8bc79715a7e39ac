// Package prompt implements the interactive settings step on a terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/text/message"

	"fxapply/internal/domain"
	"fxapply/internal/i18n"
)

// Session is what an open settings prompt needs from the effect use case.
type Session interface {
	InstanceSettings(handle domain.InstanceHandle) (*domain.EffectSettings, error)
	PreviewEffect(ctx context.Context, handle domain.InstanceHandle, settings *domain.EffectSettings) error
}

// LineReader reads one line of input after showing a prompt.
// *readline.Instance satisfies it.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// Terminal implements domain.InteractiveSettings by asking for each effect
// parameter and then for confirmation. Answering "p" previews the current
// values; interrupt, EOF or anything but "y" declines.
// This is a secondary adapter.
type Terminal struct {
	reader  LineReader
	out     io.Writer
	printer *message.Printer
	session Session
}

// NewTerminal creates a prompt reading from reader and writing notes to out.
func NewTerminal(reader LineReader, out io.Writer, printer *message.Printer) *Terminal {
	if printer == nil {
		printer = i18n.NewPrinter("")
	}
	return &Terminal{reader: reader, out: out, printer: printer}
}

// NewReadlineTerminal creates a Terminal on stdin/stdout. The returned func
// releases the terminal.
func NewReadlineTerminal(printer *message.Printer) (*Terminal, func() error, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open terminal: %w", err)
	}
	return NewTerminal(rl, rl.Stdout(), printer), rl.Close, nil
}

// Attach connects the prompt to the use case it serves.
func (t *Terminal) Attach(s Session) {
	t.session = s
}

// Show implements domain.InteractiveSettings.
func (t *Terminal) Show(ctx context.Context, effectType string, handle domain.InstanceHandle) error {
	if t.session == nil {
		return errors.New("prompt: no session attached")
	}
	settings, err := t.session.InstanceSettings(handle)
	if err != nil {
		return err
	}

	fmt.Fprintf(t.out, "%s\n", effectType)
	if err := t.editParams(ctx, settings); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.reader.SetPrompt(t.printer.Sprintf(i18n.MsgAcceptPrompt, effectType))
		line, err := t.reader.Readline()
		if err != nil {
			return readError(err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return nil
		case "p", "preview":
			if err := t.session.PreviewEffect(ctx, handle, settings); err != nil {
				fmt.Fprintf(t.out, "preview: %v\n", err)
			}
		default:
			return domain.ErrCancel
		}
	}
}

func (t *Terminal) editParams(ctx context.Context, settings *domain.EffectSettings) error {
	names := make([]string, 0, len(settings.Params))
	for name := range settings.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			t.reader.SetPrompt(t.printer.Sprintf(i18n.MsgSettingParam, name, settings.Params[name]))
			line, err := t.reader.Readline()
			if err != nil {
				return readError(err)
			}
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			v, err := strconv.ParseFloat(line, 64)
			if err != nil {
				fmt.Fprintf(t.out, "%s: not a number: %q\n", name, line)
				continue
			}
			settings.Params[name] = v
			break
		}
	}
	return nil
}

func readError(err error) error {
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return domain.ErrCancel
	}
	return fmt.Errorf("read input: %w", err)
}

// AutoAccept implements domain.InteractiveSettings by accepting the current
// settings without asking. Used for non-interactive runs and the web server.
type AutoAccept struct{}

func (AutoAccept) Show(context.Context, string, domain.InstanceHandle) error {
	return nil
}

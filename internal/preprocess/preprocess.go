package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"text/template"
	"time"
)

// DefaultCommand expands macros with gcc, dropping linemarkers.
const DefaultCommand = "gcc -I. -E -P {{.In}} -o {{.Out}}"

// Preprocessor expands macros of one input file into an output file.
type Preprocessor interface {
	Expand(ctx context.Context, in, out string) error
}

type commandImpl struct {
	tmpl    *template.Template
	timeout time.Duration
}

// New returns a Preprocessor running command, a text/template with
// {{.In}} and {{.Out}} placeholders. A zero timeout means no limit.
func New(command string, timeout time.Duration) (Preprocessor, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("preprocessor command is empty")
	}
	t, err := template.New("cpp").Option("missingkey=error").Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse preprocessor command: %w", err)
	}
	return &commandImpl{tmpl: t, timeout: timeout}, nil
}

func (c *commandImpl) Expand(ctx context.Context, in, out string) error {
	args, err := c.render(in, out)
	if err != nil {
		return err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("preprocess %s: %w: %s", in, err, msg)
		}
		return fmt.Errorf("preprocess %s: %w", in, err)
	}
	return nil
}

func (c *commandImpl) render(in, out string) ([]string, error) {
	var b bytes.Buffer
	data := struct{ In, Out string }{In: in, Out: out}
	if err := c.tmpl.Execute(&b, data); err != nil {
		return nil, fmt.Errorf("render preprocessor command: %w", err)
	}
	args := strings.Fields(b.String())
	if len(args) == 0 {
		return nil, fmt.Errorf("preprocessor command renders empty")
	}
	return args, nil
}

package output

import (
	"context"
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as indented JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	var v any = report
	if f.opts.Quiet {
		// Quiet mode: just summary
		v = report.Summary
	}

	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteMessages writes one JSON object per message, newline separated.
func WriteMessages(ctx context.Context, msgs []parser.Message, w io.Writer) error {
	for i := range msgs {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := sonic.ConfigStd.Marshal(&msgs[i])
		if err != nil {
			return fmt.Errorf("encoding message on line %d: %w", msgs[i].Line, err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	return nil
}

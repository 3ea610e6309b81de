package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type InspectCmd struct {
	ProjectFlags `embed:""`

	Format string `help:"output format" enum:"json,yaml" default:"json" short:"f"`

	out io.Writer
}

func (c *InspectCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogging(globals)

	ws, err := c.load(log)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}

	switch c.Format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(ws.config); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ws.config); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil
	}
}

package main

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Azhovan/envschema"
	"github.com/Azhovan/envschema/schemafile"
)

const defaultSchemaPath = "envschema.yaml"

type commandContext struct {
	schemaFlag  string
	envFileFlag string
	prefixFlag  string
	ignoreFlag  []string
	verboseFlag bool

	// environ replaces os.Environ() when non-nil.
	environ []string

	schemaOnce sync.Once
	schema     envschema.Schema
	schemaErr  error
}

func newCommandContext(environ []string) *commandContext {
	return &commandContext{environ: environ}
}

func (c *commandContext) ensureSchema() (envschema.Schema, error) {
	c.schemaOnce.Do(func() {
		path := strings.TrimSpace(c.schemaFlag)
		if path == "" {
			path = defaultSchemaPath
		}
		c.schema, c.schemaErr = schemafile.Load(path)
	})
	return c.schema, c.schemaErr
}

// logger writes to the command's stderr, colored only on a terminal.
func (c *commandContext) logger(cmd *cobra.Command) *logrus.Logger {
	out := cmd.ErrOrStderr()

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:      isTerminal(out),
		DisableColors:    !isTerminal(out),
		DisableTimestamp: true,
	})
	if c.verboseFlag {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// load validates the environment against the schema using the common flags.
func (c *commandContext) load(ctx context.Context, cmd *cobra.Command, collectAll bool) (*envschema.Config, error) {
	schema, err := c.ensureSchema()
	if err != nil {
		return nil, err
	}

	opts := []envschema.Option{
		envschema.WithLogger(c.logger(cmd)),
		envschema.WithIgnore(c.ignoreFlag...),
	}
	if path := strings.TrimSpace(c.envFileFlag); path != "" {
		opts = append(opts, envschema.WithEnvFile(path))
	}
	if prefix := strings.TrimSpace(c.prefixFlag); prefix != "" {
		opts = append(opts, envschema.WithPrefix(prefix))
	}
	if c.environ != nil {
		opts = append(opts, envschema.WithEnviron(c.environ))
	}
	if collectAll {
		opts = append(opts, envschema.WithCollectAll())
	}

	return envschema.Load(ctx, schema, opts...)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultGlob      = "**/*.etch"
	DefaultOutputExt = ".txt"
	DefaultDataDir   = "testdata/data"
)

// Config stores runtime options for one render run.
type Config struct {
	In       string
	Out      string
	Glob     string
	Ext      string
	DataRoot string

	ReportJSON string
	ReportCSV  string

	Check   bool
	Strict  bool
	Verbose bool
}

// Default returns baseline configuration values used by CLI flags.
func Default() Config {
	return Config{
		Glob:     DefaultGlob,
		Ext:      DefaultOutputExt,
		DataRoot: DefaultDataDir,
	}
}

// Validate normalizes and checks the configuration before execution.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.In) == "" {
		return fmt.Errorf("--in is required")
	}
	if !c.Check && strings.TrimSpace(c.Out) == "" {
		return fmt.Errorf("--out is required unless --check is set")
	}

	if strings.TrimSpace(c.Glob) == "" {
		c.Glob = DefaultGlob
	}
	if strings.TrimSpace(c.Ext) == "" {
		c.Ext = DefaultOutputExt
	}
	if !strings.HasPrefix(c.Ext, ".") {
		return fmt.Errorf("--ext must start with '.', got %q", c.Ext)
	}
	if strings.TrimSpace(c.DataRoot) == "" {
		c.DataRoot = DefaultDataDir
	}

	c.In = filepath.Clean(c.In)
	if c.Out != "" {
		c.Out = filepath.Clean(c.Out)
	}
	c.DataRoot = filepath.Clean(c.DataRoot)

	info, err := os.Stat(c.In)
	if err != nil {
		return fmt.Errorf("input path %q is not accessible: %w", c.In, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path %q must be a directory", c.In)
	}

	return nil
}

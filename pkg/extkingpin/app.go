// Package extkingpin wires kingpin commands to the functions that run them.
package extkingpin

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

// RunFunc runs a parsed command.
type RunFunc func(ctx context.Context, logger log.Logger) error

// App is a kingpin application whose commands register a RunFunc.
type App struct {
	*kingpin.Application

	runners map[string]RunFunc
}

func NewApp(app *kingpin.Application) *App {
	return &App{Application: app, runners: map[string]RunFunc{}}
}

// Command adds a new top level command.
func (a *App) Command(name, help string) *CmdClause {
	return &CmdClause{CmdClause: a.Application.Command(name, help), app: a}
}

// Parse parses os.Args and returns the selected command with its RunFunc. It exits
// the process on invalid arguments.
func (a *App) Parse() (string, RunFunc) {
	cmd, err := a.Application.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrapf(err, "error parsing commandline arguments: %v", os.Args))
		a.Application.Usage(os.Args[1:])
		os.Exit(2)
	}
	runner, ok := a.runners[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "command %q has nothing to run\n", cmd)
		os.Exit(2)
	}
	return cmd, runner
}

type CmdClause struct {
	*kingpin.CmdClause

	app *App
}

// Run sets the function executed when this command is selected.
func (c *CmdClause) Run(f RunFunc) {
	c.app.runners[c.FullCommand()] = f
}

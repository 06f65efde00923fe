package extkingpin

import (
	"context"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/observatorium/catalogctl/pkg/testutil"
	"gopkg.in/alecthomas/kingpin.v2"
)

func TestCommandRun(t *testing.T) {
	app := NewApp(kingpin.New("test", ""))
	called := ""
	cmd := app.Command("deploy", "")
	folder := cmd.Flag("folder", "").String()
	cmd.Run(func(context.Context, log.Logger) error {
		called = *folder
		return nil
	})
	app.Command("plan", "").Run(func(context.Context, log.Logger) error { return nil })

	selected, err := app.Application.Parse([]string{"deploy", "--folder", "NewFolder"})
	testutil.Ok(t, err)
	testutil.Equals(t, "deploy", selected)
	testutil.Ok(t, app.runners[selected](context.Background(), log.NewNopLogger()))
	testutil.Equals(t, "NewFolder", called)
	testutil.Equals(t, 2, len(app.runners))
}

package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/lexfrei/go-cpapi"
)

func newPublishCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish pending changes of the session user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := o.connect(cmd)
			if err != nil {
				return err
			}
			defer shutdown(cmd, client)

			return publish(cmd, o, client)
		},
	}
}

// publish runs a publish and reports it the way every command does:
// "Publishing: 10% 50% 100%" as progress arrives, then the final task state.
func publish(cmd *cobra.Command, o *options, client cpapi.ManagementAPIClient) error {
	p := o.printer(cmd)

	opts := o.cfg.WaitOptions()
	started := false
	if !p.json {
		opts.OnProgress = func(task cpapi.Task) {
			if !started {
				fmt.Fprint(p.out, "Publishing: ")
				started = true
			}
			fmt.Fprintf(p.out, "%d%% ", task.Percent)
		}
	}

	task, err := client.Publish(cmd.Context(), opts)
	if started {
		fmt.Fprintln(p.out)
	}

	switch {
	case errors.Is(err, cpapi.ErrNothingToPublish):
		if p.json {
			return p.printJSON(map[string]any{"published": false, "changes": 0})
		}
		fmt.Fprintln(p.out, "No changes to publish")
		return nil
	case err != nil:
		return err
	}

	if p.json {
		if err := p.printJSON(task); err != nil {
			return err
		}
	} else {
		p.task(task)
		p.details(task.Details)
	}

	return taskOutcome("publish", task)
}

// taskOutcome turns a finished task that did not succeed into an error so the
// exit code reflects it.
func taskOutcome(what string, task cpapi.Task) error {
	if task.Status == cpapi.TaskStatusSucceeded {
		return nil
	}

	return errors.Newf("%s finished with status %q", what, task.Status)
}

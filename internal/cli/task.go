package cli

import (
	"github.com/spf13/cobra"

	"github.com/lexfrei/go-cpapi"
)

func newTaskCmd(o *options) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "task TASK-ID",
		Short: "Show a task, optionally waiting for it to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := o.connect(cmd)
			if err != nil {
				return err
			}
			defer shutdown(cmd, client)

			p := o.printer(cmd)

			var task cpapi.Task
			if wait {
				task, err = waitForTask(cmd, o, p, client, args[0])
			} else {
				task, err = client.ShowTask(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			if p.json {
				return p.printJSON(task)
			}

			if !wait || task.Status == cpapi.TaskStatusTimedOut {
				p.task(task)
			}
			p.details(task.Details)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll until the task finishes")

	return cmd
}

// waitForTask polls a task, printing a status line whenever its progress changes.
func waitForTask(cmd *cobra.Command, o *options, p *printer, client cpapi.ManagementAPIClient, taskID string) (cpapi.Task, error) {
	opts := o.cfg.WaitOptions()
	if !p.json {
		opts.OnProgress = p.task
	}

	//nolint:wrapcheck // Client errors already carry context
	return client.WaitForTask(cmd.Context(), taskID, opts)
}

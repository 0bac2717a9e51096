package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/lexfrei/go-cpapi"
)

// policyResult is the --json rendering of one package's verify and install.
type policyResult struct {
	Package string      `json:"package"`
	Verify  cpapi.Task  `json:"verify"`
	Install *cpapi.Task `json:"install,omitempty"`
	Skipped string      `json:"skipped,omitempty"`
}

func newInstallPolicyCmd(o *options) *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "install-policy",
		Short: "Verify policy packages and install those that pass",
		Long: `Verify every policy package and install it on its installation targets.
A package is only installed when its verification succeeded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := o.connect(cmd)
			if err != nil {
				return err
			}
			defer shutdown(cmd, client)

			results, err := installPolicies(cmd, o, client, only)
			if err != nil {
				return err
			}

			if o.jsonOutput {
				if err := o.printer(cmd).printJSON(results); err != nil {
					return err
				}
			}

			if failed := notInstalled(results); failed > 0 {
				return errors.Newf("%d of %d policy packages not installed", failed, len(results))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&only, "package", "", "Only handle the package with this name")

	return cmd
}

func installPolicies(cmd *cobra.Command, o *options, client cpapi.ManagementAPIClient, only string) ([]policyResult, error) {
	ctx := cmd.Context()
	p := o.printer(cmd)

	packages, err := client.ShowPackages(ctx)
	if err != nil {
		return nil, err
	}

	results := []policyResult{}
	for _, listed := range packages {
		if listed.Type != cpapi.PolicyTypePackage || (only != "" && listed.Name != only) {
			continue
		}

		pkg, err := client.ShowPackage(ctx, listed.UID)
		if err != nil {
			return results, err
		}
		result := policyResult{Package: pkg.Name}

		if !p.json {
			p.line("Policy verify: %s", pkg.Name)
		}
		result.Verify, err = runTask(cmd, o, p, client, func() (string, error) {
			return client.VerifyPolicy(ctx, pkg.UID)
		})
		if err != nil {
			return results, err
		}

		switch {
		case result.Verify.Status != cpapi.TaskStatusSucceeded:
			result.Skipped = "unsuccessful verify"
		case len(pkg.InstallationTargets) == 0:
			result.Skipped = "no installation targets"
		}

		if result.Skipped != "" {
			if !p.json {
				p.line("Policy install for %s not started due to %s.", pkg.Name, result.Skipped)
				p.blank()
			}
			results = append(results, result)
			continue
		}

		if !p.json {
			p.line("Policy install: %s", pkg.Name)
		}
		install, err := runTask(cmd, o, p, client, func() (string, error) {
			return client.InstallPolicy(ctx, pkg.UID, pkg.TargetUIDs())
		})
		if err != nil {
			return results, err
		}
		result.Install = &install

		if !p.json {
			p.blank()
		}
		results = append(results, result)
	}

	if only != "" && len(results) == 0 {
		return nil, errors.Newf("policy package %q not found", only)
	}

	return results, nil
}

// runTask starts a task, waits for it and prints its details.
func runTask(cmd *cobra.Command, o *options, p *printer, client cpapi.ManagementAPIClient, start func() (string, error)) (cpapi.Task, error) {
	taskID, err := start()
	if err != nil {
		return cpapi.Task{}, err
	}

	task, err := waitForTask(cmd, o, p, client, taskID)
	if err != nil {
		return cpapi.Task{}, err
	}

	if !p.json {
		if task.Status == cpapi.TaskStatusTimedOut {
			p.task(task)
		}
		p.details(task.Details)
	}

	return task, nil
}

func notInstalled(results []policyResult) int {
	n := 0
	for _, result := range results {
		if result.Install == nil || result.Install.Status != cpapi.TaskStatusSucceeded {
			n++
		}
	}

	return n
}

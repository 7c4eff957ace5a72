package homestead

import (
	"context"
	"fmt"

	"github.com/arthur-debert/homestead/pkg/config"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/arthur-debert/homestead/pkg/manifest"
	"github.com/arthur-debert/homestead/pkg/prompt"
	"github.com/arthur-debert/homestead/pkg/provision"
	"github.com/arthur-debert/homestead/pkg/require"
	"github.com/arthur-debert/homestead/pkg/session"
	"github.com/arthur-debert/homestead/pkg/style"
	"github.com/spf13/cobra"
)

type configLoader func(cmd *cobra.Command) (*config.Config, error)

func newTerraformCmd(d deps, load configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "terraform",
		Short:   MsgTerraformShort,
		Long:    MsgTerraformLong,
		Example: MsgTerraformExample,
		GroupID: "tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return withTask(cmd.Context(), d, cfg, func(ctx context.Context, task *provision.Task) (*provision.Report, error) {
				return task.Terraform(ctx, provision.TerraformOptions{
					Name:   cfg.Identity.Name,
					Email:  cfg.Identity.Email,
					Mkdirs: cfg.Terraform.Mkdirs,
				})
			})
		},
	}
	cmd.Flags().String("name", "", MsgFlagName)
	cmd.Flags().String("email", "", MsgFlagEmail)
	cmd.Flags().Bool("mkdirs", true, MsgFlagMkdirs)
	return cmd
}

func newSetupPyPyCmd(d deps, load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:     "setup-pypy",
		Short:   MsgSetupPyPyShort,
		Long:    MsgSetupPyPyLong,
		GroupID: "tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			return withTask(cmd.Context(), d, cfg, func(ctx context.Context, task *provision.Task) (*provision.Report, error) {
				return task.SetupPyPy(ctx)
			})
		},
	}
}

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "manifest",
		Short:   MsgManifestShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), manifest.DefaultContent())
		},
	}
}

// withTask connects to the target, wires a provisioning task and runs fn,
// printing the report of whatever completed.
func withTask(ctx context.Context, d deps, cfg *config.Config, fn func(context.Context, *provision.Task) (*provision.Report, error)) error {
	logger := logging.GetLogger("cmd")

	m, err := manifest.Load(cfg.Manifest.Path)
	if err != nil {
		return err
	}
	confirmer, err := prompt.New(cfg.Prompt.Mode, d.stdin, d.stdout)
	if err != nil {
		return err
	}

	runner, err := d.dial(ctx, cfg.Target, d.stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			logger.Warn().Err(err).Msg("Closing connection failed")
		}
	}()

	sess := session.New(runner, session.Options{
		SudoPrefix:   cfg.Sudo.Prefix,
		SudoPassword: cfg.Sudo.Password,
	})
	if err := sess.Discover(ctx); err != nil {
		return err
	}
	logger.Info().Str("host", sess.Host()).Str("user", sess.User()).Str("home", sess.Home()).Msg("Connected")

	var req require.Requirer = require.NewShell(sess)
	if cfg.Git.Backend == config.GitBackendGoGit {
		req = require.NewLocalGit(req, d.stderr)
	}

	task, err := provision.New(provision.Options{
		Session:   sess,
		Requirer:  req,
		Confirmer: confirmer,
		Manifest:  m,
		Out:       d.stderr,
	})
	if err != nil {
		return err
	}

	report, err := fn(ctx, task)
	if report != nil && len(report.Steps) > 0 {
		fmt.Fprint(d.stdout, style.RenderReport(report.Host, report.Steps, report.Links))
	}
	return err
}

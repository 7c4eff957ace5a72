package homestead

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/arthur-debert/homestead/internal/version"
	"github.com/arthur-debert/homestead/pkg/cobrax/topics"
	"github.com/arthur-debert/homestead/pkg/config"
	"github.com/arthur-debert/homestead/pkg/logging"
	"github.com/arthur-debert/homestead/pkg/transport"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicsFS embed.FS

// Dialer opens the runner for a configured target
type Dialer func(ctx context.Context, target config.Target, output io.Writer) (transport.Runner, error)

// deps are the process-level collaborators, swapped in tests
type deps struct {
	dial   Dialer
	stdin  *os.File
	stdout io.Writer
	stderr io.Writer
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(deps{
		dial:   Dial,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	})
}

func newRootCmd(d deps) *cobra.Command {
	var (
		verbosity  int
		configFile string
	)

	rootCmd := &cobra.Command{
		Use:     "homestead",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Options{Verbosity: verbosity, Console: d.stderr})
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	if d.stdin != nil {
		rootCmd.SetIn(d.stdin)
	}
	rootCmd.SetOut(d.stdout)
	rootCmd.SetErr(d.stderr)

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVar(&configFile, "config", "", MsgFlagConfig)
	pf.String("host", "local", MsgFlagHost)
	pf.Int("port", transport.DefaultSSHPort, MsgFlagPort)
	pf.String("user", "", MsgFlagUser)
	pf.String("identity", "", MsgFlagIdentity)
	pf.String("known-hosts", "", MsgFlagKnownHosts)
	pf.Bool("insecure", false, MsgFlagInsecure)
	pf.String("sudo-prefix", "", MsgFlagSudoPrefix)
	pf.String("manifest", "", MsgFlagManifest)
	pf.Bool("yes", false, MsgFlagYes)
	pf.Bool("no", false, MsgFlagNo)
	pf.String("git-backend", config.GitBackendShell, MsgFlagGitBackend)
	rootCmd.MarkFlagsMutuallyExclusive("yes", "no")

	rootCmd.AddGroup(&cobra.Group{ID: "tasks", Title: "TASKS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	loadConfig := func(cmd *cobra.Command) (*config.Config, error) {
		return config.Load(config.Options{File: configFile, Flags: cmd.Flags()})
	}

	rootCmd.AddCommand(newTerraformCmd(d, loadConfig))
	rootCmd.AddCommand(newSetupPyPyCmd(d, loadConfig))
	rootCmd.AddCommand(newManifestCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	sub, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		opts := topics.Options{Renderer: topics.NewGlamourRenderer()}
		if _, err := topics.Install(rootCmd, sub, opts); err != nil {
			log.Debug().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

package bootctl

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ocrboot/internal/config"
)

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command { return buildRootCmdWith(defaultConfig()) }

// buildRootCmdWith constructs the Cobra command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "ocrboot",
		Short:         "Bootstrap DeepSeek-OCR inference environments from a manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfg.Manifest, "manifest", "m", cfg.Manifest, "Bootstrap manifest (defaults OCRBOOT_MANIFEST or ocrboot.yaml)")
	root.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults OCRBOOT_LOG_LEVEL or info)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		SetLogLevel(cfg.LogLvl)
	}

	// withManifest loads the manifest lazily so stubs see final flag values.
	withManifest := func(fn func(*config.Manifest) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			m, err := fnLoadManifest(cfg)
			if err != nil {
				return err
			}
			return fn(m)
		}
	}

	// install group
	installCmd := &cobra.Command{Use: "install", Short: "Clone repos, create the env, install packages", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("install requires a subcommand: all|repos|env|deps")
	}}
	installAll := &cobra.Command{Use: "all", Short: "repos, then env, then deps", Example: "  ocrboot install all", RunE: withManifest(func(m *config.Manifest) error {
		if err := fnInstallRepos(m); err != nil {
			return err
		}
		if err := fnInstallEnv(m); err != nil {
			return err
		}
		return fnInstallDeps(m)
	})}
	installReposCmd := &cobra.Command{Use: "repos", Short: "Clone or update the model repositories", RunE: withManifest(func(m *config.Manifest) error { return fnInstallRepos(m) })}
	installEnvCmd := &cobra.Command{Use: "env", Short: "Create the virtual environment (venv|uv|conda)", RunE: withManifest(func(m *config.Manifest) error { return fnInstallEnv(m) })}
	installDepsCmd := &cobra.Command{Use: "deps", Short: "Install wheels, pinned specs and requirements", RunE: withManifest(func(m *config.Manifest) error { return fnInstallDeps(m) })}
	installCmd.AddCommand(installAll, installReposCmd, installEnvCmd, installDepsCmd)
	root.AddCommand(installCmd)

	// stage
	stageCmd := &cobra.Command{Use: "stage", Short: "Copy model weights into place", Example: "  ocrboot stage", RunE: withManifest(func(m *config.Manifest) error { return fnStage(m) })}
	root.AddCommand(stageCmd)

	// patch group
	patchCmd := &cobra.Command{Use: "patch", Short: "Source compatibility patches", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("patch requires a subcommand: t4|restore")
	}}
	patchT4Cmd := &cobra.Command{Use: "t4", Short: "Apply T4 GPU fixes (float16, block_size=16) with backups", RunE: withManifest(func(m *config.Manifest) error { return fnPatchT4(m) })}
	patchRestoreCmd := &cobra.Command{Use: "restore", Short: "Restore backed-up originals", RunE: withManifest(func(m *config.Manifest) error { return fnPatchRestore(m) })}
	patchCmd.AddCommand(patchT4Cmd, patchRestoreCmd)
	root.AddCommand(patchCmd)

	// run
	runCmd := &cobra.Command{Use: "run", Short: "Invoke the batch OCR entry point", Example: "  ocrboot run -m deepseek-ocr.yaml", RunE: withManifest(func(m *config.Manifest) error { return fnRunInference(m) })}
	root.AddCommand(runCmd)

	// verify
	verifyCmd := &cobra.Command{Use: "verify", Short: "Check repos, env, imports and proxy", RunE: withManifest(func(m *config.Manifest) error { return fnVerify(m) })}
	root.AddCommand(verifyCmd)

	// env
	envCmd := &cobra.Command{Use: "env", Short: "Print export lines that activate the environment", Example: "  eval \"$(ocrboot env)\"", RunE: withManifest(func(m *config.Manifest) error { return fnPrintEnv(m) })}
	root.AddCommand(envCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(os.Stdout) }})
	root.AddCommand(completionCmd)

	return root
}

package app

import (
	"context"
	"fmt"
	"io"

	goversion "github.com/caarlos0/go-version"
	"github.com/spf13/cobra"
)

// Command はアプリケーションのサブコマンド名を表す。
type Command string

const (
	// CommandServe はWebサーバーモードで起動することを示す。引数なしの場合のデフォルト。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandSeed はデモ用の従業員データを投入することを示す。
	CommandSeed Command = "seed"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandVersion はビルド情報を表示することを示す。
	CommandVersion Command = "version"
)

const defaultSeedCount = 10

// BuildInfo はリンカーフラグで埋め込まれるビルド情報。
type BuildInfo struct {
	Version   string
	Commit    string
	Date      string
	BuiltBy   string
	TreeState string
}

// NewRootCommand はstaffbookのルートコマンドを生成する。
// ログはwに出力する。サブコマンドを省略した場合はserveとして動作する。
func NewRootCommand(w io.Writer, build BuildInfo) *cobra.Command {
	var configFile string

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := Init(w, configFile)
		if err != nil {
			return fmt.Errorf("initialization failed: %w", err)
		}
		return runServe(cmd.Context(), cfg)
	}

	root := &cobra.Command{
		Use:           "staffbook",
		Short:         "Employee records management web application",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve,
	}
	root.SetOut(w)
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: $CONFIG_FILE, environment variables only if unset)")

	root.AddCommand(&cobra.Command{
		Use:   string(CommandServe),
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE:  serve,
	})

	root.AddCommand(&cobra.Command{
		Use:   string(CommandMigrate),
		Short: "Apply all pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := Init(w, configFile)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			return runMigrate(cfg)
		},
	})

	var seedCount int
	seedCmd := &cobra.Command{
		Use:   string(CommandSeed),
		Short: "Insert demo employees with random email addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedCount <= 0 {
				return fmt.Errorf("--count must be positive, got %d", seedCount)
			}
			cfg, err := Init(w, configFile)
			if err != nil {
				return fmt.Errorf("initialization failed: %w", err)
			}
			_, err = runSeed(cmd.Context(), cfg, seedCount)
			return err
		},
	}
	seedCmd.Flags().IntVar(&seedCount, "count", defaultSeedCount, "number of employees to insert")
	root.AddCommand(seedCmd)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	root.AddCommand(&cobra.Command{
		Use:   string(CommandHealthcheck),
		Short: "Check the /health endpoint of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealthcheck(cmd.Context(), healthcheckPort())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   string(CommandVersion),
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionInfo(build).String())
		},
	})

	return root
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。ctxがキャンセルされるとserveはグレースフルシャットダウンする。
func Run(ctx context.Context, w io.Writer, args []string, build BuildInfo) error {
	root := NewRootCommand(w, build)
	if args == nil {
		// nilの場合cobraはos.Argsを読むため、空スライスに置き換える
		args = []string{}
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func versionInfo(build BuildInfo) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("staffbook", "Employee records management web application", "https://github.com/hitoshi/staffbook"),
		func(i *goversion.Info) {
			if build.Version != "" {
				i.GitVersion = build.Version
			}
			if build.Commit != "" {
				i.GitCommit = build.Commit
			}
			if build.TreeState != "" {
				i.GitTreeState = build.TreeState
			}
			if build.Date != "" {
				i.BuildDate = build.Date
			}
			if build.BuiltBy != "" {
				i.BuiltBy = build.BuiltBy
			}
		},
	)
}

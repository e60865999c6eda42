package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"rcadesk/internal/app"
	"rcadesk/internal/config"
	"rcadesk/internal/db"
	"rcadesk/internal/events"
	"rcadesk/internal/logging"
	"rcadesk/internal/migrate"
	"rcadesk/internal/seed"
)

var rootCmd = &cobra.Command{
	Use:   "rcadesk",
	Short: "Rosado Commercial Advisors back office",
	Long: `rcadesk runs the Rosado Commercial Advisors business dashboard API and talks to it.
- serve: start the HTTP API over the seeded in-memory store.
- login: sign in against a running server and keep the token in <workspace>/.env.
- remote commands (dashboard, project, task, invoice, message, ...) call the API with that token.
- seed, config and journal work on local files only.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if err := config.LoadDotEnv(workspace); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("RCADESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("server", "http://127.0.0.1:8080", "API server URL for remote commands")
	rootCmd.PersistentFlags().String("base-path", "", "API base path (defaults to config server.base_path)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("server.base_path", rootCmd.PersistentFlags().Lookup("base-path"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(journalCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(applicationCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(invoiceCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(documentCmd())
	rootCmd.AddCommand(messageCmd())
	rootCmd.AddCommand(notificationCmd())
	rootCmd.AddCommand(activityCmd())
	rootCmd.AddCommand(askCmd())
}

// loadConfig reads rcadesk.yml (or the defaults) and applies flag and
// RCADESK_* overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v := viper.GetString("server.base_path"); v != "" {
		cfg.Server.BasePath = v
	}
	if v := viper.GetString("jwt_secret"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if viper.IsSet("allow_actor_header") {
		cfg.Auth.AllowActorHeader = viper.GetBool("allow_actor_header")
	}
	if v := viper.GetString("seed.file"); v != "" {
		cfg.Seed.File = v
	}
	if viper.IsSet("journal.enabled") {
		cfg.Journal.Enabled = viper.GetBool("journal.enabled")
	}
	if v := viper.GetString("log.level"); v != "" {
		cfg.Log.Level = v
	}
	if v := viper.GetString("log.format"); v != "" {
		cfg.Log.Format = v
	}
	return cfg, cfg.Validate()
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				cfg.Auth.JWTSecret = randomSecret()
				slog.Warn("auth.jwt_secret not set; using a random secret, tokens will not survive a restart")
			}
			rt, err := app.Bootstrap(cmd.Context(), viper.GetString("workspace"), cfg, app.Options{})
			if err != nil {
				return err
			}
			defer rt.Close()
			handler, err := rt.Handler()
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			slog.Info("serving rcadesk API", "addr", cfg.Server.Addr, "base_path", cfg.Server.BasePath, "journal", cfg.Journal.Enabled)
			fmt.Printf("Serving rcadesk API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n",
				cfg.Server.Addr, cfg.Server.BasePath, cfg.Server.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (defaults to config server.addr)")
	cmd.Flags().Bool("journal", false, "write mutations to the SQLite journal")
	cmd.Flags().String("seed", "", "seed fixture file")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("journal.enabled", cmd.Flags().Lookup("journal"))
	_ = viper.BindPFlag("seed.file", cmd.Flags().Lookup("seed"))
	return cmd
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "seed", Short: "Inspect seed fixtures"}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the embedded default fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			if viper.GetBool("json") {
				return printJSON(seed.Default())
			}
			_, err := os.Stdout.Write(seed.DefaultYAML())
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a seed fixture",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if cfg, err := loadConfig(); err == nil && cfg.Seed.File != "" {
				path = cfg.Seed.File
				if !filepath.IsAbs(path) {
					path = filepath.Join(viper.GetString("workspace"), path)
				}
			}
			snap, err := seed.Load(path)
			if err != nil {
				return err
			}
			if path == "" {
				path = "embedded default"
			}
			fmt.Printf("%s: ok (%d users, %d projects, %d tasks, %d invoices)\n",
				path, len(snap.Users), len(snap.Projects), len(snap.Tasks), len(snap.Invoices))
			return nil
		},
	})
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Workspace configuration"}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default rcadesk.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Auth.JWTSecret != "" {
				shown.Auth.JWTSecret = "<redacted>"
			}
			if viper.GetBool("json") {
				return printJSON(shown)
			}
			out, err := yaml.Marshal(shown)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	})
	return cmd
}

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Audit journal",
		Long:  "Every mutation made while serving with journal.enabled is recorded in .rcadesk/journal.db.",
	}
	var n int
	var evtType string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Show the newest journal rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := os.Stat(db.Path(workspace)); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no journal at %s; serve with --journal first", db.Path(workspace))
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if _, err := migrate.Migrate(cmd.Context(), conn); err != nil {
				return err
			}
			rows, err := events.Writer{DB: conn}.Tail(cmd.Context(), n, evtType)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(rows)
			}
			tw := newTable("ID", "TS", "Type", "Entity", "Actor", "Request", "Payload")
			for _, e := range rows {
				tw.AppendRow(row(e.ID, e.TS, e.Type, fmt.Sprintf("%s/%d", e.EntityKind, e.EntityID), e.ActorID, e.RequestID, e.Payload))
			}
			tw.Render()
			return nil
		},
	}
	tail.Flags().IntVar(&n, "n", 20, "number of rows")
	tail.Flags().StringVar(&evtType, "type", "", "event type filter")
	cmd.AddCommand(tail)
	return cmd
}

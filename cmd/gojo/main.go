package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayadav/gojo/internal/profile"
	"github.com/ayadav/gojo/plugin/resume"
	"github.com/ayadav/gojo/server"
	"github.com/ayadav/gojo/store"
	"github.com/ayadav/gojo/store/db"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "gojo",
	Short: "Chat assistant backend for a portfolio site",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		serverProfile := &profile.Profile{
			Mode:       viper.GetString("mode"),
			Addr:       viper.GetString("addr"),
			Port:       viper.GetInt("port"),
			Data:       viper.GetString("data"),
			Driver:     viper.GetString("driver"),
			DSN:        viper.GetString("dsn"),
			ResumePath: viper.GetString("resume"),
			Version:    version,
		}
		serverProfile.FromEnv()
		if err := serverProfile.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		if serverProfile.IsDev() {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}

		dbDriver, err := db.NewDBDriver(serverProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}
		storeInstance := store.New(dbDriver, serverProfile)

		s, err := server.NewServer(ctx, serverProfile, storeInstance)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		if !serverProfile.IsChatEnabled() {
			slog.Warn("GOJO_OPENAI_API_KEY is not set, chat requests will be rejected")
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig.String())
			s.Shutdown(ctx)
			cancel()
		}()

		return s.Start(ctx)
	},
}

var importResumeCmd = &cobra.Command{
	Use:   "import-resume SOURCE",
	Short: "Convert a resume document (PDF, Word or text) into the plain-text asset served by chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serverProfile := &profile.Profile{
			Mode:       viper.GetString("mode"),
			Data:       viper.GetString("data"),
			ResumePath: viper.GetString("resume"),
		}
		if err := serverProfile.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		importer := resume.NewImporter(resume.ImporterConfigFromEnv())
		return importer.Import(cmd.Context(), args[0], serverProfile.ResumePath)
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "dev" or "prod"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of the server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "memory", "conversation store driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name of the store")
	rootCmd.PersistentFlags().String("resume", "", "path to the plain-text resume")

	rootCmd.AddCommand(importResumeCmd)

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("gojo")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

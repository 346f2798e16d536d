package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/dave/gpx2kml/config"
	"github.com/dave/gpx2kml/logging"
	"github.com/spf13/cobra"
)

const VERSION = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "gpx2kml",
	Short: "Convert GPX tracks and geotagged photos to a KML document",
	Long: `Reads one or more GPX files and an optional directory of geotagged photos,
simplifies each track and writes a single KML document with one styled line
per track and one point per photo.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), VERSION)
	},
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := Main(); err != nil {
		log.Fatalf("%v", err)
	}
}

func Main() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func runConvert(cmd *cobra.Command, args []string) error {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := config.Load(cmd.Flags(), file)
	if err != nil {
		return err
	}

	logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	summary, err := Convert(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if cfg.Summary != "" {
		if err := summary.Save(cfg.Summary); err != nil {
			return err
		}
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/slidedeck/internal/config"
)

// settingsEnv names a config file, like --config.
const settingsEnv = "SLIDEDECK_SETTINGS"

// app carries the state of one command-line invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	// serve runs the server once settings are assembled.
	serve func(cmd *cobra.Command, settings config.Settings) error
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the base command with its own viper instance.
func newRootCmd() *cobra.Command {
	return newAppCmd(&app{v: viper.New(), serve: serve})
}

func newAppCmd(a *app) *cobra.Command {
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:   "slidedeck [flags] [slide]",
		Short: "Serve a whole-slide image as a Deep Zoom tile pyramid",
		Long: `slidedeck serves one whole-slide image over HTTP as a Deep Zoom pyramid.

The slide is opened once at startup. Its descriptor is published at /slide.dzi,
tiles under /slide_files/{level}/{col}_{row}.{jpeg|png}, and a viewer page at /.

Settings come from built-in defaults, a config file, SLIDEDECK_* environment
variables and flags, each overriding the previous one.

Examples:
  # Serve a slide on 127.0.0.1:5000
  slidedeck CMU-1.tiff

  # PNG tiles of 510 pixels without overlap, reachable from the network
  slidedeck -f png -s 510 -e 0 -l 0.0.0.0 -p 8080 CMU-1.tiff

  # Read settings from a file
  slidedeck -c slidedeck.yaml`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
		RunE: a.runServe,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $HOME/.slidedeck.yaml)")

	// Pyramid options, shared with info
	rootCmd.PersistentFlags().StringP("format", "f", config.DefaultFormat, "image format for tiles (jpeg|png)")
	rootCmd.PersistentFlags().IntP("size", "s", config.DefaultTileSize, "tile size in pixels")
	rootCmd.PersistentFlags().IntP("overlap", "e", config.DefaultOverlap, "overlap of adjacent tiles in pixels")
	rootCmd.PersistentFlags().IntP("quality", "Q", config.DefaultQuality, "JPEG compression quality (0-100)")

	// Server options
	rootCmd.Flags().StringP("listen", "l", config.DefaultListen, "address to listen on")
	rootCmd.Flags().IntP("port", "p", config.DefaultPort, "port to listen on")
	rootCmd.Flags().BoolP("debug", "d", false, "run in debugging mode (insecure)")
	rootCmd.Flags().Duration("timeout", config.DefaultTimeout, "request timeout")

	// Bind flags to viper
	a.v.BindPFlag(config.KeyFormat, rootCmd.PersistentFlags().Lookup("format"))
	a.v.BindPFlag(config.KeyTileSize, rootCmd.PersistentFlags().Lookup("size"))
	a.v.BindPFlag(config.KeyOverlap, rootCmd.PersistentFlags().Lookup("overlap"))
	a.v.BindPFlag(config.KeyQuality, rootCmd.PersistentFlags().Lookup("quality"))
	a.v.BindPFlag(config.KeyListen, rootCmd.Flags().Lookup("listen"))
	a.v.BindPFlag(config.KeyPort, rootCmd.Flags().Lookup("port"))
	a.v.BindPFlag(config.KeyDebug, rootCmd.Flags().Lookup("debug"))
	a.v.BindPFlag(config.KeyTimeout, rootCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(newInfoCmd(a))
	return rootCmd
}

// initConfig reads in config file and ENV variables if set. A config file
// named by --config or SLIDEDECK_SETTINGS must be readable.
func (a *app) initConfig(cmd *cobra.Command) error {
	explicit := a.cfgFile
	if explicit == "" {
		explicit = os.Getenv(settingsEnv)
	}

	if explicit != "" {
		// Use config file from the flag or environment.
		a.v.SetConfigFile(explicit)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".slidedeck" (without extension).
		a.v.AddConfigPath(home)
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".slidedeck")
	}

	a.v.SetEnvPrefix("slidedeck")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv() // read in environment variables that match

	err := a.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", a.v.ConfigFileUsed())
	case explicit == "" && errors.As(err, &notFound):
	default:
		return &config.Error{Key: "config", Err: config.ErrInvalidSetting, Msg: err.Error()}
	}
	return nil
}

// loadSettings assembles the settings for this run. A positional slide
// argument beats every other source.
func (a *app) loadSettings(args []string) (config.Settings, error) {
	if len(args) > 0 {
		a.v.Set(config.KeySlide, args[0])
	}
	return config.FromViper(a.v)
}

func (a *app) runServe(cmd *cobra.Command, args []string) error {
	settings, err := a.loadSettings(args)
	if err != nil {
		return err
	}
	return a.serve(cmd, settings)
}

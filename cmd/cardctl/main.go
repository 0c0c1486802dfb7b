// Package main is the cardctl command line client: analyze card files and
// export fields to PDF or IDML without running the server.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a3tai/cardkit/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the cardctl CLI.
var rootCmd = &cobra.Command{
	Use:   "cardctl",
	Short: "Business card ingestion and re-typesetting from the command line",
	Long: `cardctl reads business cards from images, PDFs and IDML packages and
writes them back out as PDF proofs or editable IDML packages.

It shares its configuration with the cardkit server: CARDKIT_AI_PROVIDER,
CARDKIT_AI_APIKEY (or OPENAI_API_KEY / GEMINI_API_KEY) and CARDKIT_AI_MODEL.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(viper.GetString("loglevel"), true)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cardctl.yaml or ~/.config/cardkit/cardctl.yaml)")
	rootCmd.PersistentFlags().String("loglevel", "warn", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cardctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cardkit"))
		}
	}

	viper.SetEnvPrefix("CARDKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

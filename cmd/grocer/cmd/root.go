// Package cmd implements the grocer CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "grocer",
		Short: "Move a grocery task list into a Hy-Vee cart",
		Long: "grocer reads open items from a Google Tasks list, resolves them\n" +
			"against a local product catalog, and reconciles the Hy-Vee\n" +
			"aisles-online cart so it holds exactly those items.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file (default config.yaml, then $HOME/.grocer.yaml)")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(moveCommand())
	rootCmd.AddCommand(verifyCommand())
	rootCmd.AddCommand(mapCommand())
	rootCmd.AddCommand(suggestCommand())
	rootCmd.AddCommand(unavailableCommand())
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(versionCommand())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".grocer")
	}

	viper.SetEnvPrefix("GROCER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// configPath resolves the service config file: the --config flag wins,
// then whatever viper found on its search path, then the default name.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return "config.yaml"
}

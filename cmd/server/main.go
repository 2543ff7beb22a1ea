package main

import (
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "cfg/config.yaml"

func main() {
	root := &cobra.Command{
		Use:          "pair-resolver",
		Short:        "Uniswap V2 style pair and reserve resolver",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path (defaults to $CONFIG_PATH or "+defaultConfigPath+")")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}

	root.AddCommand(serveCmd)

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve pairs from a JSON file and print their states",
		RunE:  runResolve,
	}

	resolveCmd.Flags().String("queries", "", "JSON file with a /pairs request body")
	resolveCmd.Flags().Duration("timeout", 0, "how long to wait for pairs to settle, 0 means request_timeout")
	_ = resolveCmd.MarkFlagRequired("queries")

	root.AddCommand(resolveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func configPath(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path
	}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return defaultConfigPath
}

/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gatehouse",
	Short: "Gatehouse authentication API server",
	Long: `Gatehouse is a standalone email/password authentication service.

It exposes signup, signin, and token verification endpoints backed by
PostgreSQL and stateless JWT session tokens.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

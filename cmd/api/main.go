package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/billentry/customers/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "customers",
		Short: "Customer record service",
		Long:  `A durable customer record service exposing CRUD operations over HTTP, backed by an atomically updated flat file.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewCustomerCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/billentry/customers/internal/adapters/repository"
	"github.com/billentry/customers/internal/application/services"
	"github.com/billentry/customers/internal/infrastructure/config"
	"github.com/billentry/customers/internal/infrastructure/logger"
	"github.com/billentry/customers/internal/infrastructure/server"
	"github.com/billentry/customers/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the customer record API server",
		Long:  "Start the customer record API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewCustomerCommand creates the customer management command
func NewCustomerCommand() *cobra.Command {
	customerCmd := &cobra.Command{
		Use:   "customer",
		Short: "Customer management commands",
		Long:  "Create, list and remove customer records directly from the command line",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new customer record",
		Run: func(cmd *cobra.Command, args []string) {
			id, _ := cmd.Flags().GetString("id")
			name, _ := cmd.Flags().GetString("name")
			phone, _ := cmd.Flags().GetString("phone")
			address, _ := cmd.Flags().GetString("address")

			if name == "" {
				log.Fatal("Name is required")
			}
			if id == "" {
				id = uuid.NewString()
			}

			addCustomer(id, name, phone, address)
		},
	}
	addCmd.Flags().String("id", "", "Customer id (generated when omitted)")
	addCmd.Flags().String("name", "", "Customer name (required)")
	addCmd.Flags().String("phone", "", "Customer phone number")
	addCmd.Flags().String("address", "", "Customer address")
	customerCmd.AddCommand(addCmd)

	customerCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all customer records",
		Run: func(cmd *cobra.Command, args []string) {
			listCustomers()
		},
	})

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a customer record",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			removeCustomer(args[0])
		},
	}
	customerCmd.AddCommand(rmCmd)

	return customerCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("customers v1.0.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	store, err := repository.NewFileStore(cfg.Store.Path)
	if err != nil {
		appLogger.Fatal("Failed to open customer store", "error", err)
	}

	srv, err := server.New(cfg, store, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting customer record API server",
		"port", cfg.Server.Port,
		"store_path", cfg.Store.Path,
		"environment", cfg.App.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Graceful shutdown failed", "error", err)
	}
}

func newService() ports.CustomerService {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := repository.NewFileStore(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open customer store: %v", err)
	}

	return services.NewCustomerService(store, logger.NewNop())
}

func addCustomer(id, name, phone, address string) {
	service := newService()

	created, err := service.CreateCustomer(context.Background(), ports.CreateCustomerRequest{
		ID:      id,
		Name:    name,
		Phone:   phone,
		Address: address,
	})
	if err != nil {
		log.Fatalf("Failed to add customer: %v", err)
	}

	fmt.Printf("Added customer %s\n", created.ID())
}

func listCustomers() {
	service := newService()

	customers, err := service.ListCustomers(context.Background())
	if err != nil {
		log.Fatalf("Failed to list customers: %v", err)
	}

	if len(customers) == 0 {
		fmt.Println("No customers")
		return
	}

	out, err := json.MarshalIndent(customers, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render customers: %v", err)
	}
	fmt.Println(string(out))
}

func removeCustomer(id string) {
	service := newService()

	if err := service.DeleteCustomer(context.Background(), id); err != nil {
		log.Fatalf("Failed to remove customer %s: %v", id, err)
	}

	fmt.Printf("Removed customer %s\n", id)
}

/*
Copyright © 2026 Deutsche Telekom AG
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/telekom/tenancy-operator/internal/server"
)

var adminBindAddr string

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the admin HTTP API",
	Long: `Starts the admin HTTP API consumed by the tenancy UI: team and user
CRUD, cluster stats, per-namespace quota usage and kubeconfig download.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLog.Info("starting admin API server", "addr", adminBindAddr)

		c, err := client.New(ctrl.GetConfigOrDie(), client.Options{Scheme: scheme})
		if err != nil {
			return fmt.Errorf("unable to create cluster client: %w", err)
		}

		ctx := ctrl.SetupSignalHandler()
		return server.New(c, ctrl.Log.WithName("admin"), adminBindAddr).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&adminBindAddr, "bind-address", ":8080", "The address the admin API binds to.")
}

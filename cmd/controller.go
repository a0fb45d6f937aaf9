/*
Copyright © 2026 Deutsche Telekom AG
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"k8s.io/apimachinery/pkg/runtime/schema"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/config"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
	tenancycontroller "github.com/telekom/tenancy-operator/internal/controller/tenancy"
	"github.com/telekom/tenancy-operator/internal/system"
	"github.com/telekom/tenancy-operator/pkg/discovery"
	"github.com/telekom/tenancy-operator/pkg/gateway"
	"github.com/telekom/tenancy-operator/pkg/indexer"
	"github.com/telekom/tenancy-operator/pkg/tracing"
)

var (
	enableLeaderElection    bool
	teamConcurrency         int
	userConcurrency         int
	gatewayQPS              float64
	gatewayBurst            int
	cacheSyncTimeout        time.Duration
	gracefulShutdownTimeout time.Duration
	waitForCRDs             bool
	crdWaitTimeout          time.Duration
	tracingEnabled          bool
	tracingEndpoint         string
	tracingSamplingRate     float64
	tracingInsecure         bool
)

// controllerCmd represents the controller command
var controllerCmd = &cobra.Command{
	Use:   "controller",
	Short: "Run the Team and User reconciliation controllers",
	Long: `Starts the controller manager with the Team and User reconcilers.
Each reconciler can be disabled by setting its concurrency to 0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateConcurrency(teamConcurrency, userConcurrency); err != nil {
			return err
		}

		setupLog.Info("starting controller")
		setupLog.Info("controller configuration",
			"enableLeaderElection", enableLeaderElection,
			"teamConcurrency", teamConcurrency,
			"userConcurrency", userConcurrency,
			"gatewayQPS", gatewayQPS,
			"gatewayBurst", gatewayBurst,
			"namespace", namespace,
		)

		ctx := ctrl.SetupSignalHandler()

		provider, err := tracing.Setup(ctx, tracing.Config{
			Enabled:      tracingEnabled,
			Endpoint:     tracingEndpoint,
			SamplingRate: tracingSamplingRate,
			Insecure:     tracingInsecure,
		}, system.Version)
		if err != nil {
			return fmt.Errorf("unable to set up tracing: %w", err)
		}
		defer func() {
			if err := provider.Shutdown(ctx); err != nil {
				setupLog.Error(err, "failed to shut down tracer provider")
			}
		}()

		cfg := ctrl.GetConfigOrDie()

		if waitForCRDs {
			// uncached client, the manager's cache is not started yet
			directClient, err := client.New(cfg, client.Options{Scheme: scheme})
			if err != nil {
				return fmt.Errorf("unable to create client for CRD discovery: %w", err)
			}
			waiter := discovery.NewCRDWaiter(directClient, setupLog)
			gvks := []schema.GroupVersionKind{
				tenancyv1alpha1.GroupVersion.WithKind("Team"),
				tenancyv1alpha1.GroupVersion.WithKind("User"),
			}
			if err := waiter.WaitForCRDs(ctx, gvks, crdWaitTimeout); err != nil {
				return fmt.Errorf("required CRDs are not available: %w", err)
			}
		}

		mgr, err := ctrl.NewManager(cfg, ctrl.Options{
			Scheme: scheme,

			Metrics:                 metricsserver.Options{BindAddress: metricsAddr},
			LeaderElection:          enableLeaderElection,
			LeaderElectionID:        "tenancy.t-caas.telekom.com",
			HealthProbeBindAddress:  probeAddr,
			GracefulShutdownTimeout: &gracefulShutdownTimeout,
			Controller:              config.Controller{CacheSyncTimeout: cacheSyncTimeout},
		})
		if err != nil {
			return fmt.Errorf("unable to start manager. err: %s", err)
		}

		if err := indexer.SetupIndexes(ctx, mgr); err != nil {
			return fmt.Errorf("unable to set up field indexes: %w", err)
		}

		gw := gateway.New(mgr.GetClient(),
			gateway.WithRateLimiter(rate.NewLimiter(rate.Limit(gatewayQPS), gatewayBurst)),
			gateway.WithTracer(provider.Tracer()),
		)

		if teamConcurrency > 0 {
			teamController := tenancycontroller.NewTeamReconciler(
				mgr.GetClient(),
				mgr.GetScheme(),
				mgr.GetEventRecorderFor("TeamReconciler"),
				gw,
				tenancycontroller.WithTracer(provider.Tracer()),
			)
			if err := teamController.SetupWithManager(mgr, teamConcurrency); err != nil {
				return fmt.Errorf("unable to setup controller Team with manager: %w", err)
			}
		} else {
			setupLog.Info("Team reconciler is disabled")
		}

		if userConcurrency > 0 {
			userController := tenancycontroller.NewUserReconciler(
				mgr.GetClient(),
				mgr.GetScheme(),
				mgr.GetEventRecorderFor("UserReconciler"),
				gw,
				mgr.GetConfig(),
				tenancycontroller.WithTracer(provider.Tracer()),
			)
			if err := userController.SetupWithManager(mgr, userConcurrency); err != nil {
				return fmt.Errorf("unable to setup controller User with manager: %w", err)
			}
		} else {
			setupLog.Info("User reconciler is disabled")
		}

		if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
			return fmt.Errorf("unable to set up health check. err: %s", err)
		}
		if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
			return fmt.Errorf("unable to set up ready check. err: %s", err)
		}
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("problem running manager. err: %s", err)
		}
		return nil
	},
}

// validateConcurrency rejects negative worker counts; zero disables a reconciler.
func validateConcurrency(team, user int) error {
	if team < 0 {
		return fmt.Errorf("team-concurrency must not be negative, got %d", team)
	}
	if user < 0 {
		return fmt.Errorf("user-concurrency must not be negative, got %d", user)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(controllerCmd)

	controllerCmd.Flags().BoolVar(&enableLeaderElection, "leader-elect", false, "Enable leader election for controller manager. "+"Enabling this will ensure there is only one active controller manager.")
	controllerCmd.Flags().IntVar(&teamConcurrency, "team-concurrency", 5, "Number of concurrent workers for Team reconciler. Default is 5. Use 0 to disable the reconciler.")
	controllerCmd.Flags().IntVar(&userConcurrency, "user-concurrency", 5, "Number of concurrent workers for User reconciler. Default is 5. Use 0 to disable the reconciler.")
	controllerCmd.Flags().Float64Var(&gatewayQPS, "gateway-qps", 20, "Client-side rate limit for remote object store calls, in requests per second.")
	controllerCmd.Flags().IntVar(&gatewayBurst, "gateway-burst", 30, "Burst size of the client-side rate limiter.")
	controllerCmd.Flags().DurationVar(&cacheSyncTimeout, "cache-sync-timeout", 2*time.Minute, "Maximum time to wait for the informer caches to sync.")
	controllerCmd.Flags().DurationVar(&gracefulShutdownTimeout, "graceful-shutdown-timeout", 30*time.Second, "Maximum time to wait for running reconciles on shutdown.")
	controllerCmd.Flags().BoolVar(&waitForCRDs, "wait-for-crds", true, "Wait for the Team and User CRDs to be established before starting.")
	controllerCmd.Flags().DurationVar(&crdWaitTimeout, "crd-wait-timeout", 5*time.Minute, "Maximum time to wait for the CRDs to be established.")
	controllerCmd.Flags().BoolVar(&tracingEnabled, "tracing-enabled", false, "Enable OpenTelemetry tracing.")
	controllerCmd.Flags().StringVar(&tracingEndpoint, "tracing-endpoint", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), "OTLP gRPC collector endpoint.")
	controllerCmd.Flags().Float64Var(&tracingSamplingRate, "tracing-sampling-rate", 0.1, "Ratio of traces to sample (0.0 to 1.0).")
	controllerCmd.Flags().BoolVar(&tracingInsecure, "tracing-insecure", false, "Disable TLS for the OTLP exporter connection.")
}

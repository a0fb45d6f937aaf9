/*
Copyright © 2026 Deutsche Telekom AG
*/
package cmd

import (
	"flag"
	"os"
	"regexp"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/klog/v2"
	ctrl "sigs.k8s.io/controller-runtime"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
	"github.com/telekom/tenancy-operator/internal/system"
)

var (
	setupLog    logr.Logger
	scheme      *runtime.Scheme
	verbosity   int
	probeAddr   string
	metricsAddr string
	namespace   string
)

// sensitivePattern matches flag names whose values must never be logged.
var sensitivePattern = regexp.MustCompile(`(?i)(token|secret|password|passphrase|key|auth|credential|private|cert|bearer|client[-_]id)`)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tenancy-operator",
	Short: "Per-team tenancy operator for Kubernetes",
	Long: `tenancy-operator reconciles Team and User records into namespaces,
resource quotas, network policies, RBAC roles and user credentials.

Run the 'controller' subcommand for the reconciliation loops or the
'server' subcommand for the admin HTTP API.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctrl.SetLogger(klog.NewKlogr())
		log := klog.NewKlogr()
		log.Info("app info", "name", system.Name, "version", system.Version, "commit", system.Commit)
		log.Info("flags", "values", redactSensitiveFlags())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	setupLog = ctrl.Log.WithName("setup")
	klog.InitFlags(nil)
	cobra.OnInitialize(initScheme)

	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", os.Getenv("POD_NAMESPACE"), "operator namespace")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 2, "Log level (0-9)")
	rootCmd.PersistentFlags().StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-bind-address", ":8443", "The address the metrics endpoint binds to.")
}

func initScheme() {
	scheme = runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(apiextensionsv1.AddToScheme(scheme))
	utilruntime.Must(tenancyv1alpha1.AddToScheme(scheme))
}

// redactSensitiveFlags returns all registered flag values with sensitive ones
// replaced, safe for startup logging.
func redactSensitiveFlags() map[string]string {
	out := map[string]string{}
	flag.VisitAll(func(f *flag.Flag) {
		if sensitivePattern.MatchString(f.Name) {
			out[f.Name] = "[REDACTED]"
			return
		}
		out[f.Name] = f.Value.String()
	})
	return out
}

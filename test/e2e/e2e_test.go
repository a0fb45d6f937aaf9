//go:build e2e

package e2e

import (
	"fmt"
	"os/exec"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/telekom/tenancy-operator/test/utils"
)

const (
	pollTimeout  = 2 * time.Minute
	pollInterval = 2 * time.Second
)

const teamManifest = `
apiVersion: tenancy.t-caas.telekom.com/v1alpha1
kind: Team
metadata:
  name: e2e-acme
spec:
  description: "e2e test team"
  environments:
    - name: dev
      quota:
        cpu: "2"
        memory: 4Gi
    - name: prod
`

const userManifest = `
apiVersion: tenancy.t-caas.telekom.com/v1alpha1
kind: User
metadata:
  name: e2e-alice
spec:
  fullName: "Alice Example"
  email: alice@example.com
  role: developer
  teams:
    - e2e-acme
`

func kubectlGet(args ...string) (string, error) {
	cmd := exec.Command("kubectl", append([]string{"get"}, args...)...)
	output, err := utils.Run(cmd)
	return string(output), err
}

var _ = Describe("Operator Setup", Ordered, Label("setup"), func() {
	Context("Prerequisites", func() {
		It("should have kubectl available", func() {
			cmd := exec.Command("kubectl", "version", "--client")
			output, err := utils.Run(cmd)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(output)).To(ContainSubstring("Client Version"))
		})

		It("should have a running cluster", func() {
			cmd := exec.Command("kubectl", "cluster-info")
			output, err := utils.Run(cmd)
			Expect(err).NotTo(HaveOccurred(), "No Kubernetes cluster available. Run 'make kind-create' first.")
			Expect(string(output)).To(ContainSubstring("Kubernetes"))
		})
	})

	Context("CRDs", func() {
		It("should have Team CRD installed", func() {
			_, err := kubectlGet("crd", "teams.tenancy.t-caas.telekom.com")
			if err != nil {
				Skip("CRDs not installed yet - run 'make install' first")
			}
		})

		It("should have User CRD installed", func() {
			_, err := kubectlGet("crd", "users.tenancy.t-caas.telekom.com")
			if err != nil {
				Skip("CRDs not installed yet - run 'make install' first")
			}
		})
	})

	Context("Operator Deployment", func() {
		It("should have controller-manager pod running", func() {
			output, err := kubectlGet("pods",
				"-l", "control-plane=controller-manager",
				"-n", "tenancy-operator-system",
				"-o", "jsonpath={.items[0].status.phase}")
			if err != nil {
				Skip("Operator not deployed yet - run 'make deploy' first")
			}
			Expect(output).To(Equal("Running"))
		})
	})
})

var _ = Describe("Team lifecycle", Ordered, Label("team"), func() {
	AfterAll(func() {
		_ = utils.Delete(teamManifest)
	})

	It("provisions a namespace per environment", func() {
		Expect(utils.Apply(teamManifest)).To(Succeed())

		for _, ns := range []string{"e2e-acme-dev", "e2e-acme-prod"} {
			Eventually(func() error {
				_, err := kubectlGet("namespace", ns)
				return err
			}, pollTimeout, pollInterval).Should(Succeed(), "namespace %s was not created", ns)
		}
	})

	It("provisions quota, network policy and roles in each namespace", func() {
		for _, ns := range []string{"e2e-acme-dev", "e2e-acme-prod"} {
			Eventually(func() error {
				_, err := kubectlGet("resourcequota", fmt.Sprintf("%s-quota", ns), "-n", ns)
				return err
			}, pollTimeout, pollInterval).Should(Succeed())

			Eventually(func() error {
				_, err := kubectlGet("networkpolicy", fmt.Sprintf("%s-default-deny", ns), "-n", ns)
				return err
			}, pollTimeout, pollInterval).Should(Succeed())

			for _, role := range []string{"e2e-acme-admin", "e2e-acme-developer", "e2e-acme-viewer"} {
				Eventually(func() error {
					_, err := kubectlGet("role", role, "-n", ns)
					return err
				}, pollTimeout, pollInterval).Should(Succeed())
			}
		}
	})

	It("applies the requested quota values", func() {
		output, err := kubectlGet("resourcequota", "e2e-acme-dev-quota",
			"-n", "e2e-acme-dev",
			"-o", "jsonpath={.spec.hard.requests\\.cpu}")
		Expect(err).NotTo(HaveOccurred())
		Expect(output).To(Equal("2"))
	})

	It("reports the namespaces on the Team status", func() {
		Eventually(func() (string, error) {
			return kubectlGet("team", "e2e-acme", "-o", "jsonpath={.status.namespaces[*].name}")
		}, pollTimeout, pollInterval).Should(And(
			ContainSubstring("e2e-acme-dev"),
			ContainSubstring("e2e-acme-prod"),
		))
	})

	It("cascades namespace deletion when the Team is deleted", func() {
		Expect(utils.Delete(teamManifest)).To(Succeed())

		for _, ns := range []string{"e2e-acme-dev", "e2e-acme-prod"} {
			Eventually(func() bool {
				output, err := kubectlGet("namespace", ns, "-o", "jsonpath={.status.phase}")
				return err != nil || output == "Terminating"
			}, pollTimeout, pollInterval).Should(BeTrue(), "namespace %s was not removed", ns)
		}
	})
})

var _ = Describe("User lifecycle", Ordered, Label("user"), func() {
	BeforeAll(func() {
		Expect(utils.Apply(teamManifest)).To(Succeed())
	})

	AfterAll(func() {
		_ = utils.Delete(userManifest)
		_ = utils.Delete(teamManifest)
	})

	It("creates the user identity in the users namespace", func() {
		Expect(utils.Apply(userManifest)).To(Succeed())

		Eventually(func() error {
			_, err := kubectlGet("serviceaccount", "e2e-alice", "-n", "users")
			return err
		}, pollTimeout, pollInterval).Should(Succeed())

		Eventually(func() error {
			_, err := kubectlGet("secret", "e2e-alice-token", "-n", "users")
			return err
		}, pollTimeout, pollInterval).Should(Succeed())
	})

	It("binds the user in every team namespace", func() {
		for _, ns := range []string{"e2e-acme-dev", "e2e-acme-prod"} {
			Eventually(func() error {
				_, err := kubectlGet("rolebinding", "e2e-alice-e2e-acme-developer-binding", "-n", ns)
				return err
			}, pollTimeout, pollInterval).Should(Succeed())
		}
	})

	It("issues a kubeconfig once the token is populated", func() {
		Eventually(func() (string, error) {
			return kubectlGet("configmap", "e2e-alice-kubeconfig",
				"-n", "users",
				"-o", "jsonpath={.data.kubeconfig}")
		}, pollTimeout, pollInterval).ShouldNot(BeEmpty())
	})

	It("revokes the identity when the User is deleted", func() {
		Expect(utils.Delete(userManifest)).To(Succeed())

		Eventually(func() bool {
			_, err := kubectlGet("serviceaccount", "e2e-alice", "-n", "users")
			return err != nil
		}, pollTimeout, pollInterval).Should(BeTrue())

		Eventually(func() bool {
			_, err := kubectlGet("rolebinding", "e2e-alice-e2e-acme-developer-binding", "-n", "e2e-acme-dev")
			return err != nil
		}, pollTimeout, pollInterval).Should(BeTrue())
	})
})

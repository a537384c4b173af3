//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/idlectl/internal/action"
	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
	"github.com/eliteGoblin/focusd/idlectl/internal/infra"
	"github.com/eliteGoblin/focusd/idlectl/internal/usecase"
	"github.com/eliteGoblin/focusd/idlectl/test/fixtures"
)

var _ = Describe("Reconciler with real helpers", func() {
	var (
		tmpDir     string
		configPath string
		table      *infra.ProcessTableImpl
		shutdown   *fixtures.FakeHelper
		screen     *fixtures.FakeHelper
		helpers    map[domain.ActionID]*infra.ProcessHelper
		ctx        context.Context
	)

	newReconciler := func() *usecase.Reconciler {
		return usecase.NewReconciler(
			infra.NewFileConfigStore(configPath, zap.NewNop()),
			[]usecase.Binding{
				{Action: action.NewShutdownAction(), Controller: helpers[domain.ActionShutdown]},
				{Action: action.NewScreenOffAction(), Controller: helpers[domain.ActionScreenOff]},
			},
			infra.NopNotifier{},
			zap.NewNop(),
		)
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "idlectl-integration-*")
		Expect(err).NotTo(HaveOccurred())
		configPath = filepath.Join(tmpDir, "config.json")
		ctx = context.Background()

		shutdown, err = fixtures.NewFakeHelper(tmpDir, "fake-autolock")
		Expect(err).NotTo(HaveOccurred())
		screen, err = fixtures.NewFakeHelper(tmpDir, "fake-idlehook")
		Expect(err).NotTo(HaveOccurred())

		table = infra.NewProcessTable()
		helpers = map[domain.ActionID]*infra.ProcessHelper{
			domain.ActionShutdown:  infra.NewProcessHelper(shutdown.Spec(), table, zap.NewNop()),
			domain.ActionScreenOff: infra.NewProcessHelper(screen.Spec(), table, zap.NewNop()),
		}
	})

	AfterEach(func() {
		for _, h := range helpers {
			_, _ = h.Stop()
		}
		os.RemoveAll(tmpDir)
	})

	Describe("toggling an action on", func() {
		It("should start the helper and persist the duration", func() {
			rec := newReconciler()

			st := rec.Handle(ctx, domain.ToggleShutdown{Minutes: "30"})
			Expect(st.Err).NotTo(HaveOccurred())

			Eventually(helpers[domain.ActionShutdown].IsRunning, 2*time.Second, 50*time.Millisecond).Should(BeTrue())
			Eventually(shutdown.RecordedArgs, 2*time.Second, 50*time.Millisecond).Should(Equal("--idle 30"))

			saved := infra.NewFileConfigStore(configPath, zap.NewNop()).Load()
			Expect(saved.ShutdownEnabled).To(BeTrue())
			Expect(saved.ShutdownMinutes).To(Equal(30))
			Expect(helpers[domain.ActionScreenOff].IsRunning()).To(BeFalse())
		})

		It("should reject bad input without touching anything", func() {
			rec := newReconciler()

			st := rec.Handle(ctx, domain.ToggleShutdown{Minutes: "abc"})
			Expect(st.Err).To(MatchError(domain.ErrInvalidInput))

			Consistently(helpers[domain.ActionShutdown].IsRunning, 300*time.Millisecond).Should(BeFalse())
			_, err := os.Stat(configPath)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Describe("toggling an action off", func() {
		It("should stop every instance and be safe to repeat", func() {
			rec := newReconciler()
			Expect(rec.Handle(ctx, domain.ToggleScreenOff{Minutes: "5"}).Err).NotTo(HaveOccurred())
			Eventually(helpers[domain.ActionScreenOff].IsRunning, 2*time.Second).Should(BeTrue())

			Expect(rec.Handle(ctx, domain.ToggleScreenOff{}).Err).NotTo(HaveOccurred())
			Eventually(helpers[domain.ActionScreenOff].IsRunning, 2*time.Second).Should(BeFalse())

			stopped, err := helpers[domain.ActionScreenOff].Stop()
			Expect(err).NotTo(HaveOccurred())
			Expect(stopped).To(BeEmpty())
		})
	})

	Describe("startup reconciliation", func() {
		It("should restart an enabled helper with the persisted duration", func() {
			store := infra.NewFileConfigStore(configPath, zap.NewNop())
			Expect(store.Save(domain.DefaultConfig().WithAction(domain.ActionShutdown, true, 45))).To(Succeed())

			statuses := newReconciler().Reconcile(ctx)
			Expect(statuses).To(HaveLen(2))

			Eventually(helpers[domain.ActionShutdown].IsRunning, 2*time.Second).Should(BeTrue())
			Eventually(shutdown.RecordedArgs, 2*time.Second).Should(Equal("--idle 45"))
		})

		It("should leave a stray helper alone when the action is disabled", func() {
			_, err := helpers[domain.ActionScreenOff].Start(7)
			Expect(err).NotTo(HaveOccurred())
			Eventually(helpers[domain.ActionScreenOff].IsRunning, 2*time.Second).Should(BeTrue())

			statuses := newReconciler().Reconcile(ctx)
			Expect(statuses[1].Enabled).To(BeFalse())
			Expect(statuses[1].Running).To(BeTrue())

			Consistently(helpers[domain.ActionScreenOff].IsRunning, 300*time.Millisecond).Should(BeTrue())
		})
	})
})

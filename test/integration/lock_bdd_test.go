//go:build integration

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
	"github.com/eliteGoblin/focusd/idlectl/internal/infra"
)

var _ = Describe("Instance lock", func() {
	var (
		tmpDir   string
		lockPath string
		lock     *infra.PIDLock
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "idlectl-integration-*")
		Expect(err).NotTo(HaveOccurred())

		lockPath = filepath.Join(tmpDir, "idlectl.lock")
		lock = infra.NewPIDLock(lockPath, zap.NewNop())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Context("when another live process owns the lock", func() {
		var owner *exec.Cmd

		BeforeEach(func() {
			owner = exec.Command("sleep", "30")
			Expect(owner.Start()).To(Succeed())
			Expect(os.WriteFile(lockPath, []byte(strconv.Itoa(owner.Process.Pid)+"\n"), 0644)).To(Succeed())
		})

		AfterEach(func() {
			_ = owner.Process.Kill()
			_ = owner.Wait()
		})

		It("should refuse with the owner's pid", func() {
			_, err := lock.Acquire()
			Expect(err).To(MatchError(domain.ErrAlreadyRunning))

			var running *domain.AlreadyRunningError
			Expect(err).To(BeAssignableToTypeOf(running))
			Expect(lock.HolderPID()).To(Equal(owner.Process.Pid))
		})

		It("should reclaim the lock once the owner is gone", func() {
			Expect(owner.Process.Kill()).To(Succeed())
			_ = owner.Wait()

			handle, err := lock.Acquire()
			Expect(err).NotTo(HaveOccurred())
			Expect(handle.PID()).To(Equal(os.Getpid()))
			Expect(handle.Release()).To(Succeed())

			_, err = os.Stat(lockPath)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Context("when the lock file is garbage", func() {
		It("should treat it as stale", func() {
			Expect(os.WriteFile(lockPath, []byte("hello"), 0644)).To(Succeed())

			handle, err := lock.Acquire()
			Expect(err).NotTo(HaveOccurred())
			defer handle.Release()

			data, err := os.ReadFile(lockPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(strconv.Itoa(os.Getpid()) + "\n"))
		})
	})
})

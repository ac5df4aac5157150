package sequencer_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/proofpanel/docvault/pkg/sequencer"
)

func TestSequencer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sequencer Suite")
}

var _ = Describe("Sequencer", func() {
	var (
		s        *sequencer.Sequencer
		sinkMu   sync.Mutex
		sinkErrs []error
	)

	BeforeEach(func() {
		sinkErrs = nil
		s = sequencer.New(func(err error) {
			sinkMu.Lock()
			defer sinkMu.Unlock()
			sinkErrs = append(sinkErrs, err)
		})
	})

	AfterEach(func() {
		s.Close()
	})

	// Given several units submitted from one goroutine
	// When they execute
	// Then they must run strictly one at a time, in submission order
	It("should execute work in FIFO order", func() {
		var order []int
		for i := 0; i < 10; i++ {
			i := i
			s.Enqueue(func(ctx context.Context) (any, error) {
				order = append(order, i)
				return nil, nil
			})
		}

		s.Drain()

		Expect(order).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}))
	})

	It("should resolve futures with the work result", func() {
		f := s.Enqueue(func(ctx context.Context) (any, error) {
			return 42, nil
		})

		res := <-f.C()

		Expect(res.Err).NotTo(HaveOccurred())
		Expect(res.Data).To(Equal(42))
	})

	// Given detached work that fails
	// When it executes
	// Then the failure must reach the error sink
	It("should route detached failures to the sink", func() {
		boom := errors.New("boom")
		s.EnqueueDetached(func(ctx context.Context) (any, error) {
			return nil, boom
		})

		s.Drain()

		sinkMu.Lock()
		defer sinkMu.Unlock()
		Expect(sinkErrs).To(ConsistOf(boom))
	})

	It("should recover panics in detached work", func() {
		s.EnqueueDetached(func(ctx context.Context) (any, error) {
			panic("kaboom")
		})

		s.Drain()

		sinkMu.Lock()
		defer sinkMu.Unlock()
		Expect(sinkErrs).To(HaveLen(1))
		Expect(sinkErrs[0].Error()).To(ContainSubstring("kaboom"))
	})

	It("should not report detached successes to the sink", func() {
		s.EnqueueDetached(func(ctx context.Context) (any, error) {
			return nil, nil
		})

		s.Drain()

		sinkMu.Lock()
		defer sinkMu.Unlock()
		Expect(sinkErrs).To(BeEmpty())
	})

	It("should fail enqueues after Close", func() {
		s.Close()

		f := s.Enqueue(func(ctx context.Context) (any, error) {
			return nil, nil
		})
		res := <-f.C()

		Expect(res.Err).To(MatchError(context.Canceled))
	})
})

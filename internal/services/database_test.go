package services_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/proofpanel/docvault/internal/hostdoc"
	"github.com/proofpanel/docvault/internal/services"
	"github.com/proofpanel/docvault/internal/store"
)

var _ = Describe("DatabaseService", func() {
	var (
		ctx context.Context
		st  *store.Store
		svc *services.DatabaseService
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = store.NewStore(hostdoc.NewMemHost())
		svc = services.NewDatabaseService(st, nil)
	})

	AfterEach(func() {
		st.Close()
	})

	It("should run queries through the store", func() {
		rs, err := svc.RunQuery(ctx, "SELECT 1")
		Expect(err).NotTo(HaveOccurred())
		Expect(rs.Values).To(HaveLen(1))
	})

	It("should report state against the default required tables", func() {
		Expect(svc.Seed(ctx, "CREATE TABLE Pages (id INTEGER)")).To(Succeed())

		state, err := svc.State(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.HasDatabase).To(BeTrue())
		Expect(state.MissingTables).To(ConsistOf("Cells", "PolygonData"))
	})

	It("should delete the database", func() {
		Expect(svc.Seed(ctx, "CREATE TABLE Pages (id INTEGER)")).To(Succeed())
		Expect(svc.Delete(ctx)).To(Succeed())

		state, err := svc.State(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.HasDatabase).To(BeFalse())
	})
})

package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/proofpanel/docvault/internal/handlers"
	"github.com/proofpanel/docvault/internal/hostdoc"
	"github.com/proofpanel/docvault/internal/render"
	"github.com/proofpanel/docvault/internal/services"
	"github.com/proofpanel/docvault/internal/store"
)

func TestHandlers(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Handlers Suite")
}

var _ = Describe("Handler", func() {
	var (
		host   *hostdoc.MemHost
		st     *store.Store
		router *gin.Engine
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		host = hostdoc.NewMemHost()
		st = store.NewStore(host)

		h := handlers.New(
			services.NewDatabaseService(st, nil),
			services.NewUploadService(st, render.NewFake()),
		)
		router = gin.New()
		h.RegisterRoutes(router.Group("/api/v1"))
	})

	AfterEach(func() {
		st.Close()
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("POST /api/v1/query", func() {
		It("should return rows for a read-only statement", func() {
			w := do(http.MethodPost, "/api/v1/query", `{"sql":"SELECT 1 AS one"}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp struct {
				Columns []string `json:"columns"`
				Values  [][]any  `json:"values"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Columns).To(Equal([]string{"one"}))
			Expect(resp.Values).To(HaveLen(1))
		})

		It("should map engine diagnostics to 400", func() {
			w := do(http.MethodPost, "/api/v1/query", `{"sql":"SELECT * FROM missing"}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("missing"))
		})

		It("should reject a body without sql", func() {
			w := do(http.MethodPost, "/api/v1/query", `{}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should map an unavailable host to 503", func() {
			host.SetAvailable(false)
			w := do(http.MethodPost, "/api/v1/query", `{"sql":"SELECT 1"}`)
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("database state", func() {
		It("should seed and report state", func() {
			w := do(http.MethodPost, "/api/v1/database/seed", `{"sql":"CREATE TABLE Pages (id INTEGER)"}`)
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = do(http.MethodGet, "/api/v1/database/state", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			var state struct {
				HasDatabase   bool     `json:"hasDatabase"`
				MissingTables []string `json:"missingTables"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &state)).To(Succeed())
			Expect(state.HasDatabase).To(BeTrue())
			Expect(state.MissingTables).To(ConsistOf("Cells", "PolygonData"))
		})

		It("should delete the database", func() {
			do(http.MethodPost, "/api/v1/database/seed", `{"sql":"CREATE TABLE Pages (id INTEGER)"}`)

			w := do(http.MethodDelete, "/api/v1/database", "")
			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(host.PartCount()).To(BeZero())
		})
	})

	Describe("attachments", func() {
		upload := func(name, content string) *httptest.ResponseRecorder {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			fw, err := mw.CreateFormFile("files", name)
			Expect(err).NotTo(HaveOccurred())
			_, err = fw.Write([]byte(content))
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/attachments", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		It("should ingest, list, serve and delete one file", func() {
			w := upload("Report v1.pdf", "payload bytes")
			Expect(w.Code).To(Equal(http.StatusOK))

			var uploaded struct {
				Results []struct {
					Status      string `json:"status"`
					XmlPartName string `json:"xmlPartName"`
				} `json:"results"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &uploaded)).To(Succeed())
			Expect(uploaded.Results).To(HaveLen(1))
			Expect(uploaded.Results[0].Status).To(Equal("Complete"))
			partName := uploaded.Results[0].XmlPartName
			Expect(partName).To(MatchRegexp(`^dataFile-report-v1-[a-z0-9]{6}$`))

			w = do(http.MethodGet, "/api/v1/attachments", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("Report v1.pdf"))

			w = do(http.MethodGet, "/api/v1/attachments/"+partName+"/content", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("payload bytes"))

			w = do(http.MethodGet, "/api/v1/attachments/"+partName+"/thumbnail", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("image/png"))

			w = do(http.MethodDelete, "/api/v1/attachments/"+partName, "")
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = do(http.MethodGet, "/api/v1/attachments/"+partName+"/content", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		// Given uploads arriving on concurrent requests, as gin serves them
		// When all requests finish
		// Then each reports Complete and every file is listed
		It("should ingest files from concurrent requests", func() {
			var wg sync.WaitGroup
			codes := make([]int, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					defer GinkgoRecover()
					w := upload(fmt.Sprintf("doc-%d.pdf", n), fmt.Sprintf("payload %d", n))
					codes[n] = w.Code
					Expect(w.Body.String()).To(ContainSubstring(`"status":"Complete"`))
				}(i)
			}
			wg.Wait()

			for _, code := range codes {
				Expect(code).To(Equal(http.StatusOK))
			}

			w := do(http.MethodGet, "/api/v1/attachments", "")
			Expect(w.Code).To(Equal(http.StatusOK))
			for i := 0; i < 8; i++ {
				Expect(w.Body.String()).To(ContainSubstring(fmt.Sprintf("doc-%d.pdf", i)))
			}
		})

		It("should reject an empty form", func() {
			w := do(http.MethodPost, "/api/v1/attachments", "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 404 for an unknown thumbnail", func() {
			w := do(http.MethodGet, "/api/v1/attachments/dataFile-none-000000/thumbnail", "")
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})

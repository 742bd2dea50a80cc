package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/local/pdfslicer/internal/pages"
	"github.com/local/pdfslicer/internal/pdftest"
	"github.com/local/pdfslicer/internal/split"
	"github.com/local/pdfslicer/internal/toc"
)

type statusBody struct {
	Success  bool                   `json:"success"`
	Status   string                 `json:"status"`
	Progress int                    `json:"progress"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata"`
}

func testPlan() toc.Plan {
	return toc.Plan{
		Preamble: pages.Range{Start: 1, End: 1},
		Sections: []toc.Section{
			{Name: "One", Start: 2, Topics: []toc.Topic{{Title: "a", Start: 2, End: 3, Keep: true}}},
			{Name: "Two", Start: 5, Topics: []toc.Topic{{Title: "b", Start: 5, End: 6}}},
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Options{Plan: testPlan(), Concurrency: 1, WorkDir: t.TempDir()})
}

func post(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func submit(t *testing.T, s *Server, body string) string {
	t.Helper()
	rec := post(t, s, body)
	gt.Equal(t, rec.Code, http.StatusAccepted)
	var resp map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.True(t, resp["job_id"] != "")
	return resp["job_id"]
}

func getStatus(t *testing.T, s *Server, id string) (int, statusBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/"+id, nil))
	var body statusBody
	if rec.Code == http.StatusOK {
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func jobBody(op, input, output string) string {
	b, _ := json.Marshal(JobRequest{Op: split.Op(op), Input: input, Output: output})
	return string(b)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.Equal(t, rec.Body.String(), "ok")
}

func TestReadyWithoutChecker(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	gt.Equal(t, rec.Code, http.StatusOK)
}

func TestChunksJob(t *testing.T) {
	s := newTestServer(t)
	in := pdftest.WriteFile(t, s.workDir, "book.pdf", 7)
	out := filepath.Join(s.workDir, "parts")

	body := `{"op":"chunks","input":"` + in + `","output":"` + out + `","pages_per_split":3}`
	id := submit(t, s, body)
	s.Wait()

	code, st := getStatus(t, s, id)
	gt.Equal(t, code, http.StatusOK)
	gt.True(t, st.Success)
	gt.Equal(t, st.Progress, 100)
	gt.Equal(t, st.Metadata["total_pages"], interface{}(float64(7)))

	outputs, ok := st.Metadata["outputs"].([]interface{})
	gt.True(t, ok)
	gt.Equal(t, len(outputs), 3)
	gt.Equal(t, outputs[0], interface{}(filepath.Join(out, "book_part01_pages1-3.pdf")))
	_, err := os.Stat(filepath.Join(out, "book_part03_pages7-7.pdf"))
	gt.NoError(t, err)
}

func TestSummaryJobDefaultsToWorkDir(t *testing.T) {
	s := newTestServer(t)
	in := pdftest.WriteFile(t, s.workDir, "book.pdf", 6)

	id := submit(t, s, jobBody("summary", in, ""))
	s.Wait()

	_, st := getStatus(t, s, id)
	gt.Equal(t, st.Status, "success")
	outputs := st.Metadata["outputs"].([]interface{})
	gt.Equal(t, outputs[0], interface{}(filepath.Join(s.workDir, id, "book_Summary.pdf")))

	rep := st.Metadata["size_report"].(map[string]interface{})
	gt.Equal(t, rep["summary_pages"], interface{}(float64(3)))
}

func TestSectionsJob(t *testing.T) {
	s := newTestServer(t)
	in := pdftest.WriteFile(t, s.workDir, "book.pdf", 6)

	id := submit(t, s, jobBody("sections", in, ""))
	s.Wait()
	_, st := getStatus(t, s, id)
	gt.Equal(t, st.Status, "success")
	gt.Equal(t, len(st.Metadata["outputs"].([]interface{})), 2)
}

func TestFailedJob(t *testing.T) {
	s := newTestServer(t)
	id := submit(t, s, jobBody("chunks", filepath.Join(s.workDir, "missing.pdf"), ""))
	s.Wait()

	code, st := getStatus(t, s, id)
	gt.Equal(t, code, http.StatusOK)
	gt.False(t, st.Success)
	gt.Equal(t, st.Status, "failed")
	gt.True(t, st.Message != "")
}

func TestSubmitValidation(t *testing.T) {
	s := newTestServer(t)
	gt.Equal(t, post(t, s, `{"op":"rotate","input":"a.pdf"}`).Code, http.StatusBadRequest)
	gt.Equal(t, post(t, s, `{"op":"chunks"}`).Code, http.StatusBadRequest)
	gt.Equal(t, post(t, s, `{"op":"chunks","input":"a.pdf","pages_per_split":-2}`).Code, http.StatusBadRequest)
	gt.Equal(t, post(t, s, `not json`).Code, http.StatusBadRequest)
}

func TestSubmitRejectsPathsOutsideWorkDir(t *testing.T) {
	s := newTestServer(t)
	outside := pdftest.WriteFile(t, t.TempDir(), "book.pdf", 2)

	gt.Equal(t, post(t, s, jobBody("chunks", outside, "")).Code, http.StatusBadRequest)
	gt.Equal(t, post(t, s, jobBody("chunks", "../book.pdf", "")).Code, http.StatusBadRequest)
	gt.Equal(t, post(t, s, jobBody("chunks", "book.pdf", "/tmp/../etc")).Code, http.StatusBadRequest)
	gt.Equal(t, post(t, s, jobBody("summary", "file://"+outside, "")).Code, http.StatusBadRequest)
}

func TestRelativeInputResolvesUnderWorkDir(t *testing.T) {
	s := newTestServer(t)
	pdftest.WriteFile(t, s.workDir, "book.pdf", 4)

	id := submit(t, s, jobBody("chunks", "book.pdf", "parts"))
	s.Wait()

	_, st := getStatus(t, s, id)
	gt.Equal(t, st.Status, "success")
	outputs := st.Metadata["outputs"].([]interface{})
	gt.Equal(t, outputs[0], interface{}(filepath.Join(s.workDir, "parts", "book_part01_pages1-4.pdf")))
}

func TestConfine(t *testing.T) {
	s := New(Options{WorkDir: "/work"})

	p, err := s.confine("in/book.pdf#page=2")
	gt.NoError(t, err)
	gt.Equal(t, p, "/work/in/book.pdf")

	p, err = s.confine("s3://bucket/book.pdf")
	gt.NoError(t, err)
	gt.Equal(t, p, "s3://bucket/book.pdf")

	_, err = s.confine("/work/../etc/passwd")
	gt.Error(t, err)
	_, err = s.confine("/workshop/book.pdf")
	gt.Error(t, err)
}

func TestSubmitBusy(t *testing.T) {
	s := newTestServer(t)
	release, ok := s.acquire()
	gt.True(t, ok)
	defer release()

	gt.Equal(t, post(t, s, jobBody("chunks", "a.pdf", "")).Code, http.StatusServiceUnavailable)
}

func TestUnknownJob(t *testing.T) {
	s := newTestServer(t)
	code, _ := getStatus(t, s, "nope")
	gt.Equal(t, code, http.StatusNotFound)
}

func TestOutputTarget(t *testing.T) {
	s := New(Options{WorkDir: "/work"})

	dir, file := s.outputTarget("j", JobRequest{Op: "summary", Input: "s3://b/in/Guide.pdf", Output: "s3://b/out/"})
	gt.Equal(t, dir, filepath.Join("/work", "j"))
	gt.Equal(t, file, filepath.Join("/work", "j", "Guide_Summary.pdf"))

	dir, file = s.outputTarget("j", JobRequest{Op: "summary", Input: "in.pdf", Output: "/tmp/x/short.pdf"})
	gt.Equal(t, dir, "/tmp/x")
	gt.Equal(t, file, "/tmp/x/short.pdf")

	dir, file = s.outputTarget("j", JobRequest{Op: "chunks", Input: "in.pdf", Output: "/tmp/out"})
	gt.Equal(t, dir, "/tmp/out")
	gt.Equal(t, file, "")
}

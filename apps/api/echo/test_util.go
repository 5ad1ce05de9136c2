package echoapi

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/prediction"
	smssvc "github.com/trezcool/mahudhurio/services/sms"
	dummydb "github.com/trezcool/mahudhurio/storage/dummy"
	testutil "github.com/trezcool/mahudhurio/tests"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
}

func initApp(t *testing.T, records ...attendance.Record) (Server, *dummydb.Store) {
	smssvc.ClearSentMessages()

	conf := testutil.NewConfig()
	logger := testutil.NewLogger(t)
	sms := smssvc.NewConsoleServiceMock()

	store := dummydb.NewStore(records...)
	attSvc, err := attendance.NewService(store, sms, logger, conf)
	if err != nil {
		t.Fatalf("initApp() failed: %v", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		AttendanceSvc:  attSvc,
		PredictionSvc:  prediction.NewService(sms, logger),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return server, store
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func newUploadRequest(t *testing.T, path string, fields map[string]string, file []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			t.Fatalf("newUploadRequest() failed: %v", err)
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "predictions.csv")
		if err != nil {
			t.Fatalf("newUploadRequest() failed: %v", err)
		}
		if _, err = io.Copy(fw, bytes.NewReader(file)); err != nil {
			t.Fatalf("newUploadRequest() failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

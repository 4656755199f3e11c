// helpers_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go_4_vocab_quiz/internal/handlers"
	"go_4_vocab_quiz/internal/middleware"
	"go_4_vocab_quiz/internal/model"
	"go_4_vocab_quiz/internal/service/mocks"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// httpRequestDetails はHTTPリクエストの送信に必要な情報をまとめます。
type httpRequestDetails struct {
	Method string
	Path   string
	Body   interface{}
}

// newTestServer はモックのサービスを使ったルーターでテストサーバーを起動します。
func newTestServer(t *testing.T, sessionSvc *mocks.SessionService, vocabSvc *mocks.VocabularyService) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.LoggingMiddleware(logger))
	handlers.RegisterRoutes(r,
		handlers.NewSessionHandler(sessionSvc, logger),
		handlers.NewVocabularyHandler(vocabSvc, logger),
	)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

// sendRequest はHTTPリクエストを送信し、ステータスコードを検証してボディを返します。
func sendRequest(t *testing.T, server *httptest.Server, details httpRequestDetails, expectedCode int) []byte {
	t.Helper()

	var reqBodyReader io.Reader
	if details.Body != nil {
		if strPayload, ok := details.Body.(string); ok {
			reqBodyReader = strings.NewReader(strPayload)
		} else {
			reqBodyBytes, err := json.Marshal(details.Body)
			require.NoError(t, err, "Failed to marshal request body")
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	req, err := http.NewRequest(details.Method, server.URL+details.Path, reqBodyReader)
	require.NoError(t, err, "Failed to create request")
	if reqBodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err, "Failed to execute request")
	defer resp.Body.Close()

	assert.Equal(t, expectedCode, resp.StatusCode, "Status code mismatch")

	respBodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	return respBodyBytes
}

// verifyErrorResponse はエラーレスポンスのコードとメッセージを検証します。
func verifyErrorResponse(t *testing.T, bodyBytes []byte, expectedCode, expectedMsgPart string) {
	t.Helper()

	var errResp model.APIErrorResponse
	require.NoError(t, json.Unmarshal(bodyBytes, &errResp), "raw body: %s", string(bodyBytes))
	assert.Equal(t, expectedCode, errResp.Error.Code)
	if expectedMsgPart != "" {
		assert.Contains(t, errResp.Error.Message, expectedMsgPart)
	}
}

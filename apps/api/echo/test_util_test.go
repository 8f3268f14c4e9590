package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classpoint/assistant/core"
	"github.com/classpoint/assistant/core/school"
	logsvc "github.com/classpoint/assistant/services/logger"
	"github.com/classpoint/assistant/testutil"
)

const adminPwd = "admin123"

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	admin    string
	wantCode int
}

func setup(t *testing.T) (*Server, *school.Store) {
	t.Helper()
	store, _ := testutil.NewStore(t)
	conf := &core.Config{
		TestMode: true,
		AppName:  "School Assistant",
		Server:   core.ServerConfig{DisableReqLogs: true},
	}
	srv := NewServer(ServerDeps{Conf: conf, Logger: logsvc.NewNopLogger(), Store: store})
	return srv, store
}

func newRequest(method, path, token, admin string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if admin != "" {
		req.Header.Set(headerAdminPassword, admin)
	}
	return req, httptest.NewRecorder()
}

func serve(srv *Server, tt httpTest) *httptest.ResponseRecorder {
	req, rec := newRequest(tt.method, tt.path, tt.token, tt.admin, tt.body)
	srv.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server, login, pwd string) string {
	t.Helper()
	rec := serve(srv, httpTest{
		method: http.MethodPost,
		path:   "/v1/users/login",
		body:   marshalObj(t, LoginRequest{Login: login, Password: pwd}),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res LoginResponse
	unmarshalBody(t, rec, &res)
	return res.Token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func unmarshalBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshalBody() failed: %v; body %s", err, rec.Body.String())
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

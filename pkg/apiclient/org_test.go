package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/gt"
	"github.com/ourhour-lab/ourhour-go/pkg/apiclient"
)

func TestOrgAPI(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/organizations/me", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "ok",
			"data": []map[string]any{
				{"orgId": 1, "name": "Acme", "role": "ADMIN"},
				{"orgId": 2, "name": "Globex"},
			},
		})
	})
	r.Get("/api/organizations/{orgID}/members/me", func(w http.ResponseWriter, req *http.Request) {
		gt.Value(t, chi.URLParam(req, "orgID")).Equal("1")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "ok",
			"data": map[string]any{
				"memberId": 10,
				"name":     "Jamie",
				"email":    "jamie@acme.example",
				"deptName": "Platform",
			},
		})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client, err := apiclient.New(srv.URL)
	gt.NoError(t, err)
	client.Session().SetToken("token")

	ctx := context.Background()

	orgs, err := client.Org.MyOrganizations(ctx)
	gt.NoError(t, err)
	gt.A(t, orgs).Length(2)
	gt.Value(t, orgs[0].Name).Equal("Acme")
	gt.Value(t, orgs[0].Role).Equal("ADMIN")

	member, err := client.Org.MyMemberInfo(ctx, 1)
	gt.NoError(t, err)
	gt.Value(t, member.MemberID).Equal(int64(10))
	gt.Value(t, member.Dept).Equal("Platform")
}

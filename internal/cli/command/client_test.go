package command

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trakjobs/trakjobs-go/internal/core/domain"
)

const acmeClient = `{"id":5,"business_name":"Acme Traders","business_type":"Retail","contact_person_name":"Ravi","address_line_1":"1 Main St","city":"Pune","tax_percentage":18,"status":"active","client_category":"gold"}`

func loggedIn(t *testing.T) *cliHarness {
	t.Helper()
	h := newHarness(t)
	h.signIn("tok-1", vendorUser)
	return h
}

func TestClientList(t *testing.T) {
	h := loggedIn(t)
	h.api.reply("GET", clientsPath, http.StatusOK,
		`{"data":[`+acmeClient+`],"meta":{"current_page":2,"last_page":3,"total":21,"per_page":10}}`)

	res := h.mustRun("", "client", "list", "--page", "2", "-q", "acme", "--status", "active", "--sort", "businessName", "--order", "desc")
	if !strings.Contains(res.Stdout, "Acme Traders") {
		t.Errorf("stdout missing client:\n%s", res.Stdout)
	}
	if !strings.Contains(res.Stdout, "Page 2 of 3, 21 clients") {
		t.Errorf("stdout missing footer:\n%s", res.Stdout)
	}

	req := h.api.last(t, "GET", clientsPath)
	q, _ := url.ParseQuery(req.Query)
	want := map[string]string{
		"page": "2", "limit": "10", "search": "acme", "status": "active",
		"sort_by": "business_name", "sort_order": "desc",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}
	if q.Has("category") {
		t.Errorf("unset filter sent: %s", req.Query)
	}
	if req.Auth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", req.Auth)
	}
}

func TestClientList_JSON(t *testing.T) {
	h := loggedIn(t)
	h.api.reply("GET", clientsPath, http.StatusOK, `[`+acmeClient+`]`)

	res := h.mustRun("", "-o", "json", "client", "list", "--limit", "25")
	var page domain.PageResult[domain.Client]
	if err := json.Unmarshal([]byte(res.Stdout), &page); err != nil {
		t.Fatalf("decode: %v\n%s", err, res.Stdout)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "5" {
		t.Errorf("items = %+v", page.Items)
	}
	if page.Pagination.CurrentPage != 1 || page.Pagination.TotalPages != 1 {
		t.Errorf("pagination = %+v, want page 1 of 1", page.Pagination)
	}
	if q, _ := url.ParseQuery(h.api.last(t, "GET", clientsPath).Query); q.Get("limit") != "25" {
		t.Errorf("limit = %q, want 25", q.Get("limit"))
	}
}

func TestClientCommands_RequireLogin(t *testing.T) {
	for _, args := range [][]string{
		{"client", "list"},
		{"client", "get", "5"},
		{"client", "delete", "-f", "5"},
		{"browse"},
	} {
		h := newHarness(t)
		res := h.run("", args...)
		if res.Err == nil || !strings.Contains(res.Err.Error(), "not logged in") {
			t.Errorf("%v: err = %v, want not logged in", args, res.Err)
		}
		if n := len(h.api.calls()); n != 0 {
			t.Errorf("%v: %d requests sent", args, n)
		}
	}
}

func TestClientCommands_MissingVendorScope(t *testing.T) {
	h := newHarness(t)
	h.signIn("tok-1", domain.User{"id": "42"})

	res := h.run("", "client", "list")
	if res.Err == nil || !strings.Contains(ErrorText(res.Err), "Vendor ID not found") {
		t.Errorf("err = %v", res.Err)
	}
	if n := len(h.api.calls()); n != 0 {
		t.Errorf("requests = %d, want none", n)
	}
}

func TestClientGet(t *testing.T) {
	h := loggedIn(t)
	h.api.reply("GET", clientsPath+"/5", http.StatusOK, `{"data":`+acmeClient+`}`)

	res := h.mustRun("", "-o", "yaml", "client", "get", "5")
	if !strings.Contains(res.Stdout, "businessName: Acme Traders") {
		t.Errorf("stdout:\n%s", res.Stdout)
	}

	res = h.run("", "client", "get")
	if res.Err == nil || !strings.Contains(res.Err.Error(), "CLIENT_ID") {
		t.Errorf("missing id: err = %v", res.Err)
	}
}

func TestClientCreate(t *testing.T) {
	h := loggedIn(t)
	h.api.reply("POST", clientsPath, http.StatusCreated, `{"message":"Client added","data":`+acmeClient+`}`)

	res := h.mustRun("", "-o", "json", "client", "create",
		"--business-name", "Acme Traders", "--business-type", "Retail",
		"--contact-name", "Ravi", "--address1", "1 Main St", "--tax", "18", "--same-as-billing")
	if !strings.Contains(res.Stdout, `"Client added"`) {
		t.Errorf("stdout:\n%s", res.Stdout)
	}

	body := h.api.last(t, "POST", clientsPath).JSON(t)
	if body["business_name"] != "Acme Traders" || body["tax_percentage"] != 18.0 {
		t.Errorf("body = %v", body)
	}
	if body["same_as_billing_address"] != true || body["status"] != "active" {
		t.Errorf("body = %v", body)
	}
}

func TestClientCreate_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"required fields", []string{"--business-name", "Acme"}, []string{"businessType:", "contactPersonName:", "addressLine1:"}},
		{"tax not a number", []string{"--business-name", "Acme", "--business-type", "Retail", "--contact-name", "Ravi", "--address1", "1 Main St", "--tax", "abc"}, []string{"taxPercentage:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := loggedIn(t)
			res := h.run("", append([]string{"client", "create"}, tt.args...)...)
			if res.Err == nil {
				t.Fatal("expected error")
			}
			text := ErrorText(res.Err)
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("error text missing %q:\n%s", w, text)
				}
			}
			if n := len(h.api.calls()); n != 0 {
				t.Errorf("requests = %d, want none", n)
			}
		})
	}
}

func TestClientUpdate_KeepsUnsetFields(t *testing.T) {
	h := loggedIn(t)
	h.api.reply("GET", clientsPath+"/5", http.StatusOK, `{"data":`+acmeClient+`}`)
	h.api.reply("PUT", clientsPath+"/5", http.StatusOK, `{"message":"Client updated"}`)

	res := h.mustRun("", "client", "update", "5", "--city", "Mumbai", "--status", "inactive")
	if !strings.Contains(res.Stdout, "Client updated") {
		t.Errorf("stdout:\n%s", res.Stdout)
	}

	body := h.api.last(t, "PUT", clientsPath+"/5").JSON(t)
	want := map[string]any{
		"business_name":  "Acme Traders",
		"city":           "Mumbai",
		"status":         "inactive",
		"tax_percentage": 18.0,
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("body[%s] = %v, want %v", k, body[k], v)
		}
	}
}

func TestClientDelete(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		h := loggedIn(t)
		res := h.mustRun("n\n", "client", "delete", "5")
		if !strings.Contains(res.Stdout, "Cancelled") {
			t.Errorf("stdout = %q", res.Stdout)
		}
		if n := len(h.api.calls()); n != 0 {
			t.Errorf("requests = %d, want none", n)
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		h := loggedIn(t)
		h.api.reply("DELETE", clientsPath+"/5", http.StatusOK, `{"message":"Client removed"}`)
		res := h.mustRun("yes\n", "client", "delete", "5")
		if !strings.Contains(res.Stdout, "Client removed") {
			t.Errorf("stdout = %q", res.Stdout)
		}
	})

	t.Run("force", func(t *testing.T) {
		h := loggedIn(t)
		h.api.reply("DELETE", clientsPath+"/5", http.StatusNoContent, ``)
		res := h.mustRun("", "client", "rm", "-f", "5")
		if !strings.Contains(res.Stdout, "Client deleted successfully") {
			t.Errorf("stdout = %q", res.Stdout)
		}
	})
}

func TestClientSearch(t *testing.T) {
	h := loggedIn(t)
	h.api.reply("GET", clientsPath+"/search", http.StatusOK, `{"data":[`+acmeClient+`]}`)

	res := h.mustRun("", "client", "search", "acme", "traders")
	if !strings.Contains(res.Stdout, "Acme Traders") {
		t.Errorf("stdout:\n%s", res.Stdout)
	}
	if q, _ := url.ParseQuery(h.api.last(t, "GET", clientsPath+"/search").Query); q.Get("q") != "acme traders" {
		t.Errorf("q = %q", q.Get("q"))
	}
}

func TestClientSearch_NoResults(t *testing.T) {
	h := loggedIn(t)
	h.api.reply("GET", clientsPath+"/search", http.StatusOK, `[]`)

	res := h.mustRun("", "client", "search", "nobody")
	if !strings.Contains(res.Stdout, "No clients found.") {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestClientLogo(t *testing.T) {
	h := loggedIn(t)
	var gotName string
	var gotData []byte
	h.api.handle("POST", clientsPath+"/5/logo", func(w http.ResponseWriter, r *http.Request) {
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		part, err := multipart.NewReader(r.Body, params["boundary"]).NextPart()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if part.FormName() == "logo" {
			gotName = part.FileName()
			gotData, _ = io.ReadAll(part)
		}
		writeJSON(w, http.StatusOK, `{"message":"Logo saved","logo_url":"https://cdn.example/5.png"}`)
	})

	path := filepath.Join(t.TempDir(), "acme.png")
	if err := os.WriteFile(path, []byte("PNGDATA"), 0o600); err != nil {
		t.Fatal(err)
	}

	res := h.mustRun("", "client", "logo", "5", path)
	if !strings.Contains(res.Stdout, "Logo saved: https://cdn.example/5.png") {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if gotName != "acme.png" || string(gotData) != "PNGDATA" {
		t.Errorf("uploaded %q = %q", gotName, gotData)
	}
	if !strings.Contains(res.Stderr, "Uploading acme.png") {
		t.Errorf("stderr missing progress: %q", res.Stderr)
	}

	res = h.run("", "client", "logo", "5", filepath.Join(t.TempDir(), "missing.png"))
	if res.Err == nil || !strings.Contains(ErrorText(res.Err), "logo:") {
		t.Errorf("missing file: err = %v", res.Err)
	}
}

func TestInputFromClient(t *testing.T) {
	in := inputFromClient(&domain.Client{
		BusinessName:  "Acme",
		TaxPercentage: 12.5,
		Status:        "inactive",
	})
	if in.BusinessName != "Acme" || in.TaxPercentage != "12.5" || in.ClientStatus != "inactive" {
		t.Errorf("inputFromClient = %+v", in)
	}
	if in := inputFromClient(&domain.Client{}); in.TaxPercentage != "" {
		t.Errorf("zero tax = %q, want empty", in.TaxPercentage)
	}
}

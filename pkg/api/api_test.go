package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"towtruck/pkg/filestore"
	"towtruck/pkg/logger"
	"towtruck/pkg/models"
	"towtruck/service"
	"towtruck/storage/memory"
)

type page struct {
	Component string                 `json:"component"`
	Props     map[string]interface{} `json:"props"`
	URL       string                 `json:"url"`
}

type env struct {
	t     *testing.T
	srv   *httptest.Server
	stg   *memory.Store
	svc   service.IServiceManager
	disk  *filestore.Disk
	admin *models.Admin
	areas []*models.ServiceArea
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	disk, err := filestore.NewDisk(t.TempDir(), "/storage")
	if err != nil {
		t.Fatal(err)
	}
	e := &env{t: t, stg: memory.New(), disk: disk}
	e.svc = service.New(e.stg, disk, nil, logger.NewNop(), service.Options{
		AvatarMaxBytes: 1024,
		BcryptCost:     bcrypt.MinCost,
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	e.admin = &models.Admin{Name: "Admin", Email: "admin@towtruck.com", Password: string(hash)}
	if err := e.stg.Admin().Create(ctx, e.admin); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Port of Spain", "San Fernando"} {
		a, err := e.svc.ServiceAreas().Create(ctx, models.ServiceAreaRequest{Name: name})
		if err != nil {
			t.Fatal(err)
		}
		e.areas = append(e.areas, a)
	}

	e.srv = httptest.NewServer(NewRouter(e.svc, e.stg.Session(), logger.NewNop(), Options{
		AppKey:    "test-key",
		UploadDir: disk.Root(),
	}))
	t.Cleanup(e.srv.Close)
	return e
}

// browser keeps its own cookie jar and never follows redirects.
type browser struct {
	e      *env
	client *http.Client
}

func (e *env) browser() *browser {
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatal(err)
	}
	return &browser{e: e, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.e.t.Helper()
	resp, err := b.client.Do(req)
	if err != nil {
		b.e.t.Fatal(err)
	}
	b.e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (b *browser) get(path string) (*http.Response, page) {
	b.e.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, b.e.srv.URL+path, nil)
	resp := b.do(req)

	var p page
	if resp.StatusCode == http.StatusOK && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			b.e.t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp, p
}

func (b *browser) token() string {
	b.e.t.Helper()
	_, p := b.get("/")
	return p.Props["csrf_token"].(string)
}

func (b *browser) send(method, path string, form url.Values) *http.Response {
	b.e.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("_token") == "" {
		form.Set("_token", b.token())
	}
	req, _ := http.NewRequest(method, b.e.srv.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) *http.Response {
	b.e.t.Helper()
	return b.send(http.MethodPost, path, form)
}

func expectRedirect(t *testing.T, resp *http.Response, to string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d (%s), want 303", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Location"); got != to {
		t.Fatalf("Location = %q, want %q", got, to)
	}
}

func errorsOf(p page) map[string]interface{} {
	m, _ := p.Props["errors"].(map[string]interface{})
	return m
}

func (b *browser) loginAdmin() {
	b.e.t.Helper()
	resp := b.post("/admin/login", url.Values{"email": {"admin@towtruck.com"}, "password": {"password"}})
	expectRedirect(b.e.t, resp, "/admin/dashboard")
}

func (e *env) registerForm(name, email string) url.Values {
	return url.Values{
		"name":                  {name},
		"email":                 {email},
		"password":              {"secret123"},
		"password_confirmation": {"secret123"},
		"phone_number":          {"868-555-0100"},
		"service_area_id":       {fmt.Sprint(e.areas[0].ID)},
	}
}

func (e *env) driverID(email string) int64 {
	e.t.Helper()
	d, err := e.stg.Driver().GetByEmail(context.Background(), email)
	if err != nil || d == nil {
		e.t.Fatalf("driver %s: %v", email, err)
	}
	return d.ID
}

func TestApprovalGateFlow(t *testing.T) {
	e := newEnv(t)
	ann := e.browser()

	resp := ann.post("/driver/register", e.registerForm("Ann", "ann@example.com"))
	expectRedirect(t, resp, "/driver/login")
	_, p := ann.get("/driver/login")
	if flash := p.Props["flash"].(map[string]interface{}); flash["success"] != "Registration successful! Please wait for admin approval." {
		t.Errorf("flash = %v", flash)
	}

	resp = ann.post("/driver/login", url.Values{"email": {"ann@example.com"}, "password": {"secret123"}})
	expectRedirect(t, resp, "/driver/login")
	_, p = ann.get("/driver/login")
	if got := errorsOf(p)["email"]; got != service.MsgPendingApproval {
		t.Errorf("errors.email = %v", got)
	}
	resp, _ = ann.get("/driver/dashboard")
	expectRedirect(t, resp, "/driver/login")

	admin := e.browser()
	admin.loginAdmin()
	resp = admin.post(fmt.Sprintf("/admin/drivers/%d/approve", e.driverID("ann@example.com")), nil)
	expectRedirect(t, resp, "/admin/drivers")

	resp = ann.post("/driver/login", url.Values{"email": {"ann@example.com"}, "password": {"secret123"}})
	expectRedirect(t, resp, "/driver/dashboard")
	resp, p = ann.get("/driver/dashboard")
	if resp.StatusCode != http.StatusOK || p.Component != "Driver/Dashboard" {
		t.Fatalf("dashboard = %d %q", resp.StatusCode, p.Component)
	}
	auth := p.Props["auth"].(map[string]interface{})
	if auth["guard"] != "driver" {
		t.Errorf("auth = %v", auth)
	}
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	e := newEnv(t)
	b := e.browser()

	var seen []map[string]interface{}
	for _, creds := range []url.Values{
		{"email": {"nobody@towtruck.com"}, "password": {"password"}},
		{"email": {"admin@towtruck.com"}, "password": {"wrong-one"}},
	} {
		resp := b.post("/admin/login", creds)
		expectRedirect(t, resp, "/admin/login")
		_, p := b.get("/admin/login")

		errs := errorsOf(p)
		if errs["email"] != service.MsgInvalidCredentials || len(errs) != 1 {
			t.Errorf("errors = %v", errs)
		}
		old := p.Props["old"].(map[string]interface{})
		if old["email"] != creds.Get("email") {
			t.Errorf("old email = %v", old["email"])
		}
		if _, ok := old["password"]; ok {
			t.Error("password flashed back as old input")
		}
		seen = append(seen, errs)
	}
	if fmt.Sprint(seen[0]) != fmt.Sprint(seen[1]) {
		t.Errorf("errors differ: %v vs %v", seen[0], seen[1])
	}
}

func TestMissingCSRFTokenIsPageExpired(t *testing.T) {
	e := newEnv(t)
	b := e.browser()
	b.get("/")

	req, _ := http.NewRequest(http.MethodPost, e.srv.URL+"/driver/register", strings.NewReader(e.registerForm("Ann", "ann@example.com").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp := b.do(req); resp.StatusCode != StatusPageExpired {
		t.Fatalf("status = %d, want 419", resp.StatusCode)
	}

	form := e.registerForm("Ann", "ann@example.com")
	form.Set("_token", "forged")
	if resp := b.post("/driver/register", form); resp.StatusCode != StatusPageExpired {
		t.Fatalf("forged token status = %d, want 419", resp.StatusCode)
	}

	// header tokens are accepted too
	req, _ = http.NewRequest(http.MethodPost, e.srv.URL+"/driver/register", strings.NewReader(e.registerForm("Ann", "ann@example.com").Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-TOKEN", b.token())
	expectRedirect(t, b.do(req), "/driver/login")
}

func TestGuardRedirectRemembersIntendedURL(t *testing.T) {
	e := newEnv(t)
	b := e.browser()

	resp, _ := b.get("/admin/service-areas?search=Port")
	expectRedirect(t, resp, "/admin/login")

	resp = b.post("/admin/login", url.Values{"email": {"admin@towtruck.com"}, "password": {"password"}})
	expectRedirect(t, resp, "/admin/service-areas?search=Port")

	// already signed in: the login page bounces to the dashboard
	resp, _ = b.get("/admin/login")
	expectRedirect(t, resp, "/admin/dashboard")

	// an admin session does not open driver routes
	resp, _ = b.get("/driver/dashboard")
	expectRedirect(t, resp, "/driver/login")
}

func TestDirectoryPaging(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		d, err := e.svc.Account().Register(ctx, models.RegisterDriverRequest{
			Name: fmt.Sprintf("Driver %02d", i), Email: fmt.Sprintf("d%d@example.com", i),
			Password: "secret123", PasswordConfirmation: "secret123",
			PhoneNumber: "868-555-0100", ServiceAreaID: e.areas[0].ID,
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.svc.Drivers().Approve(ctx, e.admin.ID, d.ID); err != nil {
			t.Fatal(err)
		}
	}
	b := e.browser()

	_, p := b.get("/?search=Driver")
	drivers := p.Props["drivers"].(map[string]interface{})
	if n := len(drivers["data"].([]interface{})); n != 9 || drivers["total"] != float64(10) || drivers["last_page"] != float64(2) {
		t.Fatalf("page 1: %d items, total %v, last %v", n, drivers["total"], drivers["last_page"])
	}
	next, _ := drivers["next_page_url"].(string)
	if !strings.Contains(next, "search=Driver") || !strings.Contains(next, "page=2") {
		t.Errorf("next_page_url = %q", next)
	}
	stats := p.Props["stats"].(map[string]interface{})
	if stats["total_drivers"] != float64(10) || stats["total_areas"] != float64(2) {
		t.Errorf("stats = %v", stats)
	}
	filters := p.Props["filters"].(map[string]interface{})
	if filters["area"] != "all" || filters["search"] != "Driver" {
		t.Errorf("filters = %v", filters)
	}

	_, p = b.get("/?search=Driver&page=2")
	data := p.Props["drivers"].(map[string]interface{})["data"].([]interface{})
	if len(data) != 1 || data[0].(map[string]interface{})["name"] != "Driver 09" {
		t.Fatalf("page 2 = %v", data)
	}
	if _, ok := data[0].(map[string]interface{})["email"]; ok {
		t.Error("directory leaks driver email")
	}

	for _, path := range []string{"/?page=1024819115206086202", "/?search=Driver&page=9223372036854775807"} {
		resp, p := b.get(path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, resp.StatusCode)
		}
		if data := p.Props["drivers"].(map[string]interface{})["data"].([]interface{}); len(data) != 0 {
			t.Errorf("GET %s returned %d drivers", path, len(data))
		}
	}
}

func TestAdminServiceAreaCRUD(t *testing.T) {
	e := newEnv(t)
	b := e.browser()
	b.loginAdmin()

	resp := b.post("/admin/service-areas", url.Values{"name": {"Test Area"}})
	expectRedirect(t, resp, "/admin/service-areas")

	_, p := b.get("/admin/service-areas?search=Test")
	areas := p.Props["serviceAreas"].(map[string]interface{})
	data := areas["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("search returned %d areas", len(data))
	}
	area := data[0].(map[string]interface{})
	if area["name"] != "Test Area" || area["is_active"] != true {
		t.Fatalf("area = %v", area)
	}
	id := int64(area["id"].(float64))

	resp = b.send(http.MethodPut, fmt.Sprintf("/admin/service-areas/%d", id), url.Values{"name": {"Renamed"}, "is_active": {"false"}})
	expectRedirect(t, resp, "/admin/service-areas")
	got, _ := e.svc.ServiceAreas().Get(context.Background(), id)
	if got.Name != "Renamed" || got.IsActive {
		t.Errorf("after update = %+v", got)
	}

	// _method spoofing reaches the DELETE route
	resp = b.post(fmt.Sprintf("/admin/service-areas/%d", id), url.Values{"_method": {"DELETE"}})
	expectRedirect(t, resp, "/admin/service-areas")
	resp = b.send(http.MethodDelete, fmt.Sprintf("/admin/service-areas/%d", id), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", resp.StatusCode)
	}

	for _, name := range []string{"", "   "} {
		resp = b.post("/admin/service-areas", url.Values{"name": {name}})
		expectRedirect(t, resp, "/admin/service-areas")
		_, p = b.get("/admin/service-areas")
		if errorsOf(p)["name"] != "The name field is required." {
			t.Errorf("name %q: errors = %v", name, errorsOf(p))
		}
	}
	list, err := e.svc.ServiceAreas().List(context.Background(), "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 2 {
		t.Errorf("blank names created areas: total = %d, want 2", list.Total)
	}
}

func TestAdminDriverManagement(t *testing.T) {
	e := newEnv(t)
	b := e.browser()
	b.loginAdmin()

	resp := b.post("/admin/drivers", url.Values{
		"name": {"Carl"}, "email": {"carl@example.com"}, "phone_number": {"868-555-0111"},
		"service_area_id": {fmt.Sprint(e.areas[1].ID)}, "password": {"secret123"}, "is_approved": {"true"},
	})
	expectRedirect(t, resp, "/admin/drivers")
	id := e.driverID("carl@example.com")

	resp = b.send(http.MethodPut, fmt.Sprintf("/admin/drivers/%d", id), url.Values{
		"name": {"Carl"}, "email": {"carl@example.com"}, "phone_number": {"868-555-0111"},
		"is_approved": {"false"},
	})
	expectRedirect(t, resp, "/admin/drivers")
	d, _ := e.svc.Drivers().Get(context.Background(), id)
	if !d.IsApproved || d.ServiceAreaID != nil {
		t.Errorf("after update = %+v", d)
	}

	_, p := b.get("/admin/drivers?status=approved")
	data := p.Props["drivers"].(map[string]interface{})["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("approved drivers = %d", len(data))
	}

	resp = b.send(http.MethodDelete, fmt.Sprintf("/admin/drivers/%d", id), nil)
	expectRedirect(t, resp, "/admin/drivers")
	resp = b.post(fmt.Sprintf("/admin/drivers/%d/approve", id), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("approve deleted = %d, want 404", resp.StatusCode)
	}
	resp = b.post("/admin/drivers/abc/approve", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("approve abc = %d, want 404", resp.StatusCode)
	}
}

func (b *browser) loginDriver(t *testing.T, email string) {
	t.Helper()
	resp := b.post("/driver/register", b.e.registerForm("Ann", email))
	expectRedirect(t, resp, "/driver/login")
	if _, err := b.e.svc.Drivers().Approve(context.Background(), b.e.admin.ID, b.e.driverID(email)); err != nil {
		t.Fatal(err)
	}
	resp = b.post("/driver/login", url.Values{"email": {email}, "password": {"secret123"}})
	expectRedirect(t, resp, "/driver/dashboard")
}

var pngHeader = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)

func (b *browser) uploadProfile(t *testing.T, filename string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"_method":         "PATCH",
		"_token":          b.token(),
		"name":            "Ann Avatar",
		"phone_number":    "868-555-0100",
		"service_area_id": fmt.Sprint(b.e.areas[1].ID),
	} {
		w.WriteField(k, v)
	}
	fw, err := w.CreateFormFile("avatar", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	w.Close()

	req, _ := http.NewRequest(http.MethodPost, b.e.srv.URL+"/driver/update-profile", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func TestDriverProfileAndAvatar(t *testing.T) {
	e := newEnv(t)
	b := e.browser()
	b.loginDriver(t, "ann@example.com")

	expectRedirect(t, b.uploadProfile(t, "me.png", pngHeader), "/driver/dashboard")
	_, p := b.get("/driver/dashboard")
	driver := p.Props["driver"].(map[string]interface{})
	avatar, _ := driver["avatar"].(string)
	if avatar == "" || !e.disk.Exists(avatar) || driver["name"] != "Ann Avatar" {
		t.Fatalf("driver after upload = %v", driver)
	}
	if driver["avatar_url"] != "/storage/"+avatar {
		t.Errorf("avatar_url = %v", driver["avatar_url"])
	}
	resp, _ := b.get("/storage/" + avatar)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("serving avatar = %d", resp.StatusCode)
	}

	big := append(append([]byte{}, pngHeader...), make([]byte, 4096)...)
	expectRedirect(t, b.uploadProfile(t, "big.png", big), "/driver/dashboard")
	_, p = b.get("/driver/dashboard")
	if _, ok := errorsOf(p)["avatar"]; !ok {
		t.Errorf("errors = %v, want avatar", errorsOf(p))
	}
	if !e.disk.Exists(avatar) {
		t.Error("failed upload removed the existing avatar")
	}

	expectRedirect(t, b.uploadProfile(t, "notes.txt", []byte("plain text")), "/driver/dashboard")
	if !e.disk.Exists(avatar) {
		t.Error("rejected upload removed the existing avatar")
	}
}

func TestToggleOnlineAndLogout(t *testing.T) {
	e := newEnv(t)
	ann := e.browser()
	ann.loginDriver(t, "ann@example.com")
	ben := e.browser()
	ben.loginDriver(t, "ben@example.com")

	expectRedirect(t, ann.post("/driver/toggle-online", nil), "/driver/dashboard")
	_, p := ann.get("/driver/dashboard")
	if p.Props["driver"].(map[string]interface{})["is_online"] != true {
		t.Error("toggle did not bring Ann online")
	}
	_, p = ben.get("/driver/dashboard")
	if p.Props["driver"].(map[string]interface{})["is_online"] != false {
		t.Error("toggling Ann changed Ben")
	}

	before := ann.token()
	expectRedirect(t, ann.post("/driver/logout", nil), "/driver/login")
	if after := ann.token(); after == before {
		t.Error("logout kept the CSRF token")
	}
	resp, _ := ann.get("/driver/dashboard")
	expectRedirect(t, resp, "/driver/login")
}

func TestDeletedDriverLosesSession(t *testing.T) {
	e := newEnv(t)
	ann := e.browser()
	ann.loginDriver(t, "ann@example.com")

	if err := e.svc.Drivers().Delete(context.Background(), e.driverID("ann@example.com")); err != nil {
		t.Fatal(err)
	}
	resp, _ := ann.get("/driver/dashboard")
	expectRedirect(t, resp, "/driver/login")
}

func TestJSONClientsGetValidationErrors(t *testing.T) {
	e := newEnv(t)
	b := e.browser()
	token := b.token()

	req, _ := http.NewRequest(http.MethodPost, e.srv.URL+"/driver/register", strings.NewReader(`{"name":"Ann"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CSRF-TOKEN", token)
	resp := b.do(req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Errors["email"] != "The email field is required." || body.Errors["phone_number"] != "The phone number field is required." {
		t.Errorf("errors = %v", body.Errors)
	}
}

func TestMetricsAndHealth(t *testing.T) {
	e := newEnv(t)
	b := e.browser()
	b.get("/")

	resp, _ := b.get("/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+"/metrics", nil)
	body, _ := io.ReadAll(b.do(req).Body)
	if !strings.Contains(string(body), "towtruck_http_requests_total") {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}

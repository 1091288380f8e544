package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Sternrassler/ovh-cli/internal/testutil"
	"github.com/Sternrassler/ovh-cli/pkg/cache"
	"github.com/Sternrassler/ovh-cli/pkg/config"
	"github.com/Sternrassler/ovh-cli/pkg/ovh"
)

const testServer = "ns1.ip-1-2-3.eu"

// writeConfig writes a config pointing at the mock API with a private
// cache directory and returns its path.
func writeConfig(t *testing.T, mock *testutil.MockOVH) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.ApplicationKey = "AK"
	cfg.ApplicationSecret = "AS"
	cfg.ConsumerKey = "CK"
	cfg.Endpoint = mock.URL()
	cfg.CacheDir = filepath.Join(dir, "cache")

	path := filepath.Join(dir, config.FileName)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return path
}

// run executes the CLI with args followed by --config path.
func run(t *testing.T, configPath, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	args = append(args, "--config", configPath)
	err := a.root().Execute(context.Background(), args)
	return stdout.String(), err
}

func setupServer(mock *testutil.MockOVH) {
	base := "/dedicated/server/" + testServer
	mock.SetJSON(http.MethodGet, "/dedicated/server", `["`+testServer+`"]`)
	mock.SetJSON(http.MethodGet, base, `{"name":"`+testServer+`","bootId":1,"ip":"1.2.3.4","datacenter":"gra1","state":"ok"}`)
	mock.SetJSON(http.MethodGet, base+"/boot", `[1,1122]`)
	mock.SetJSON(http.MethodGet, base+"/boot/1", `{"bootId":1,"bootType":"harddisk","description":"Boot from disk"}`)
	mock.SetJSON(http.MethodGet, base+"/boot/1122", `{"bootId":1122,"bootType":"rescue","description":"Rescue"}`)
	mock.SetJSON(http.MethodPut, base, `null`)
	mock.SetJSON(http.MethodPost, base+"/reboot", `{"taskId":42,"function":"hardReboot","status":"init"}`)
}

func TestCLI_BootModeIsCached(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	setupServer(mock)
	cfg := writeConfig(t, mock)

	for i := 0; i < 2; i++ {
		out, err := run(t, cfg, "", "server", "boot", testServer)
		if err != nil {
			t.Fatalf("server boot error = %v", err)
		}
		if !strings.Contains(out, "harddisk") {
			t.Errorf("output missing boot type:\n%s", out)
		}
	}

	if n := mock.CountFor(http.MethodGet, "/dedicated/server/"+testServer); n != 1 {
		t.Errorf("server GETs = %d, want 1 (second run served from cache)", n)
	}
}

func TestCLI_BootChangeInvalidates(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	setupServer(mock)
	cfg := writeConfig(t, mock)

	if _, err := run(t, cfg, "", "server", "boot", testServer); err != nil {
		t.Fatalf("server boot error = %v", err)
	}
	out, err := run(t, cfg, "", "server", "boot", "--rescue", testServer)
	if err != nil {
		t.Fatalf("server boot --rescue error = %v", err)
	}
	if !strings.Contains(out, "boot id set to 1122") {
		t.Errorf("output = %q", out)
	}
	if _, err := run(t, cfg, "", "server", "boot", testServer); err != nil {
		t.Fatalf("server boot error = %v", err)
	}

	var put *testutil.RecordedRequest
	for _, r := range mock.Requests() {
		if r.Method == http.MethodPut {
			put = &r
		}
	}
	if put == nil {
		t.Fatal("no PUT request recorded")
	}
	if put.Body != `{"bootId":1122}` {
		t.Errorf("PUT body = %s, want {\"bootId\":1122}", put.Body)
	}
	if n := mock.CountFor(http.MethodGet, "/dedicated/server/"+testServer); n != 2 {
		t.Errorf("server GETs = %d, want 2 (entry invalidated by PUT)", n)
	}
}

func TestCLI_BootFlagsExclusive(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	cfg := writeConfig(t, mock)

	_, err := run(t, cfg, "", "server", "boot", "--hd", "--rescue", testServer)
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("error = %v, want mutually exclusive", err)
	}
	if n := mock.GetRequestCount(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestCLI_DryRunReboot(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	setupServer(mock)
	cfg := writeConfig(t, mock)

	out, err := run(t, cfg, "", "server", "reboot", "--dry-run", testServer)
	if err != nil {
		t.Fatalf("server reboot --dry-run error = %v", err)
	}
	if !strings.Contains(out, "[DRY-RUN] POST /dedicated/server/"+testServer+"/reboot") {
		t.Errorf("output = %q, want dry-run echo", out)
	}
	if n := mock.CountFor(http.MethodPost, "/dedicated/server/"+testServer+"/reboot"); n != 0 {
		t.Errorf("reboot POSTs = %d, want 0", n)
	}
}

func TestCLI_RebootNeedsConfirmation(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	setupServer(mock)
	cfg := writeConfig(t, mock)

	_, err := run(t, cfg, "", "server", "reboot", testServer)
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Errorf("error = %v, want confirmation error", err)
	}

	out, err := run(t, cfg, "", "server", "reboot", "-y", testServer)
	if err != nil {
		t.Fatalf("server reboot -y error = %v", err)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("output missing task id:\n%s", out)
	}
	if n := mock.CountFor(http.MethodPost, "/dedicated/server/"+testServer+"/reboot"); n != 1 {
		t.Errorf("reboot POSTs = %d, want 1", n)
	}
}

func TestCLI_TicketsNeverCached(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	mock.SetJSON(http.MethodGet, "/support/tickets", `[7]`)
	mock.SetJSON(http.MethodGet, "/support/tickets/7", `{"ticketId":7,"ticketNumber":1007,"subject":"disk","state":"open"}`)
	cfg := writeConfig(t, mock)

	for i := 0; i < 2; i++ {
		out, err := run(t, cfg, "", "ticket", "list")
		if err != nil {
			t.Fatalf("ticket list error = %v", err)
		}
		if !strings.Contains(out, "disk") {
			t.Errorf("output missing subject:\n%s", out)
		}
	}

	if n := mock.CountFor(http.MethodGet, "/support/tickets/7"); n != 2 {
		t.Errorf("ticket GETs = %d, want 2", n)
	}
	if q := mock.Requests()[0].Query; q != "status=open" {
		t.Errorf("query = %q, want status=open", q)
	}
}

func TestCLI_TicketReply(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	mock.SetJSON(http.MethodPost, "/support/tickets/7/reply", `null`)
	cfg := writeConfig(t, mock)

	if _, err := run(t, cfg, "", "ticket", "reply", "7", "-m", "Thanks, fixed."); err != nil {
		t.Fatalf("ticket reply error = %v", err)
	}
	reqs := mock.Requests()
	if len(reqs) != 1 || reqs[0].Body != `{"body":"Thanks, fixed."}` {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestCLI_CacheClear(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	setupServer(mock)
	cfg := writeConfig(t, mock)

	if _, err := run(t, cfg, "", "server", "list"); err != nil {
		t.Fatalf("server list error = %v", err)
	}
	if _, err := run(t, cfg, "", "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	if _, err := run(t, cfg, "", "server", "list"); err != nil {
		t.Fatalf("server list error = %v", err)
	}
	if n := mock.CountFor(http.MethodGet, "/dedicated/server"); n != 2 {
		t.Errorf("list GETs = %d, want 2 (cache cleared)", n)
	}
}

func TestCLI_NoCacheFlag(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	setupServer(mock)
	cfg := writeConfig(t, mock)

	for i := 0; i < 2; i++ {
		if _, err := run(t, cfg, "", "server", "list", "-n"); err != nil {
			t.Fatalf("server list error = %v", err)
		}
	}
	if n := mock.CountFor(http.MethodGet, "/dedicated/server"); n != 2 {
		t.Errorf("list GETs = %d, want 2", n)
	}
}

func TestCLI_CacheWarm(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	setupServer(mock)
	base := "/dedicated/server/" + testServer
	mock.SetJSON(http.MethodGet, base+"/ips", `["1.2.3.4/32"]`)
	mock.SetJSON(http.MethodGet, base+"/virtualNetworkInterface", `[]`)
	mock.SetJSON(http.MethodGet, "/vrack", `[]`)
	mock.SetJSON(http.MethodGet, "/service", `[]`)
	mock.SetJSON(http.MethodGet, "/me/api/application", `[]`)
	cfg := writeConfig(t, mock)

	if _, err := run(t, cfg, "", "cache", "warm"); err != nil {
		t.Fatalf("cache warm error = %v", err)
	}
	mock.Reset()
	if _, err := run(t, cfg, "", "server", "boot", testServer); err != nil {
		t.Fatalf("server boot error = %v", err)
	}
	if n := mock.GetRequestCount(); n != 0 {
		t.Errorf("requests after warm = %d, want 0", n)
	}
}

func TestCLI_EscapedIPBlock(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	mock.SetJSON(http.MethodGet, "/ip/1.2.3.0%2F24/reverse/1.2.3.4", `{"ipReverse":"1.2.3.4","reverse":"host.example.com."}`)
	cfg := writeConfig(t, mock)

	out, err := run(t, cfg, "", "ip", "reverse", "1.2.3.0/24", "1.2.3.4", "--grep")
	if err != nil {
		t.Fatalf("ip reverse error = %v", err)
	}
	if out != "1.2.3.4=host.example.com.\n" {
		t.Errorf("output = %q", out)
	}
}

func TestCLI_MissingCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte(`{"endpoint":"ovh-eu"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"OVH_APPLICATION_KEY", "OVH_APPLICATION_SECRET", "OVH_CONSUMER_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	_, err := run(t, path, "", "server", "list")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
	if !strings.Contains(err.Error(), "api setup") {
		t.Errorf("error = %q, want setup hint", err)
	}
}

func TestCLI_APISetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	stdin := strings.Join([]string{"AK", "AS", "ovh-ca", "CK", "3600"}, "\n") + "\n"

	if _, err := run(t, path, stdin, "api", "setup"); err != nil {
		t.Fatalf("api setup error = %v", err)
	}

	cfg := config.Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.ApplicationKey != "AK" || cfg.ApplicationSecret != "AS" || cfg.ConsumerKey != "CK" {
		t.Errorf("credentials = %q/%q/%q", cfg.ApplicationKey, cfg.ApplicationSecret, cfg.ConsumerKey)
	}
	if cfg.Endpoint != "ovh-ca" {
		t.Errorf("Endpoint = %q, want ovh-ca", cfg.Endpoint)
	}
	if cfg.CacheTTL != 3600 {
		t.Errorf("CacheTTL = %d, want 3600", cfg.CacheTTL)
	}
}

func TestCLI_ServerConsole(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	access := "/dedicated/server/" + testServer + "/features/ipmi/access"
	mock.SetJSON(http.MethodPost, access, `{"taskId":5,"function":"ipmi/access","status":"todo"}`)

	var polls atomic.Int32
	mock.SetHandler(http.MethodGet, access, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if polls.Add(1) == 1 {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"class":"Client::NotFound","message":"session not ready"}`))
			return
		}
		w.Write([]byte(`{"value":"https://kvm.example/session","expiration":"2025-01-01T12:15:00Z"}`))
	})
	cfg := writeConfig(t, mock)

	out, err := run(t, cfg, "", "server", "console", "--delay", "0s", testServer)
	if err != nil {
		t.Fatalf("server console error = %v", err)
	}
	if !strings.Contains(out, "https://kvm.example/session") {
		t.Errorf("output missing access url:\n%s", out)
	}
	if n := mock.CountFor(http.MethodGet, access); n != 2 {
		t.Errorf("access GETs = %d, want 2", n)
	}

	// The session request is sent even with --dry-run.
	if _, err := run(t, cfg, "", "server", "console", "--dry-run", "--delay", "0s", testServer); err != nil {
		t.Fatalf("server console --dry-run error = %v", err)
	}
	if n := mock.CountFor(http.MethodPost, access); n != 2 {
		t.Errorf("access POSTs = %d, want 2", n)
	}
	if n := mock.CountFor(http.MethodGet, access); n != 3 {
		t.Errorf("access GETs = %d, want 3 (never served from cache)", n)
	}
	for _, r := range mock.Requests() {
		if r.Method == http.MethodGet && r.Query != "type=kvmipHtml5URL" {
			t.Errorf("GET query = %q, want type=kvmipHtml5URL", r.Query)
		}
	}

	store, err := cache.NewFileStore(filepath.Join(filepath.Dir(cfg), "cache"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	entry, err := store.GetItem(context.Background(), cache.Key(access))
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if entry.IsHit() {
		t.Errorf("IPMI access data was cached: %s", entry.Value)
	}
}

func TestCLI_ServerConsoleGivesUp(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	access := "/dedicated/server/" + testServer + "/features/ipmi/access"
	mock.SetJSON(http.MethodPost, access, `{"taskId":5}`)
	cfg := writeConfig(t, mock)

	_, err := run(t, cfg, "", "server", "console", "--attempts", "3", "--delay", "0s", testServer)
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("error = %v, want give-up error", err)
	}
	if n := mock.CountFor(http.MethodGet, access); n != 3 {
		t.Errorf("access GETs = %d, want 3", n)
	}
}

func TestCLI_IPMIReset(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	reset := "/dedicated/server/" + testServer + "/features/ipmi/resetInterface"
	mock.SetJSON(http.MethodPost, reset, `{"taskId":77,"function":"resetIPMI","status":"init"}`)
	cfg := writeConfig(t, mock)

	if _, err := run(t, cfg, "", "server", "ipmi-reset", testServer); err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Errorf("error = %v, want confirmation error", err)
	}
	out, err := run(t, cfg, "", "server", "ipmi-reset", "-y", testServer)
	if err != nil {
		t.Fatalf("server ipmi-reset -y error = %v", err)
	}
	if !strings.Contains(out, "77") {
		t.Errorf("output missing task id:\n%s", out)
	}
	if n := mock.CountFor(http.MethodPost, reset); n != 1 {
		t.Errorf("reset POSTs = %d, want 1", n)
	}
}

func TestCLI_ServerRenew(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	setupServer(mock)
	infos := "/dedicated/server/" + testServer + "/serviceInfos"
	mock.SetJSON(http.MethodGet, infos, `{"serviceId":1,"expiration":"2025-06-01","renew":{"automatic":false,"period":1}}`)
	mock.SetJSON(http.MethodPut, infos, `null`)
	cfg := writeConfig(t, mock)

	out, err := run(t, cfg, "", "server", "renew", "--all")
	if err != nil {
		t.Fatalf("server renew --all error = %v", err)
	}
	for _, want := range []string{testServer, "2025-06-01", "DISABLED"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, cfg, "", "server", "renew", "--on", testServer)
	if err != nil {
		t.Fatalf("server renew --on error = %v", err)
	}
	if !strings.Contains(out, "automatic renewal ENABLED") {
		t.Errorf("output = %q", out)
	}

	var puts []testutil.RecordedRequest
	for _, r := range mock.Requests() {
		if r.Method == http.MethodPut {
			puts = append(puts, r)
		}
	}
	want := `{"renew":{"automatic":true,"deleteAtExpiration":false,"forced":false,"manualPayment":false,"period":1}}`
	if len(puts) != 1 || puts[0].Body != want {
		t.Fatalf("PUTs = %+v, want one with %s", puts, want)
	}

	// The PUT invalidated the cached service infos.
	if _, err := run(t, cfg, "", "server", "renew", "--all"); err != nil {
		t.Fatalf("server renew --all error = %v", err)
	}
	if n := mock.CountFor(http.MethodGet, infos); n != 2 {
		t.Errorf("serviceInfos GETs = %d, want 2", n)
	}

	if _, err := run(t, cfg, "", "server", "renew", "--on", "--off", testServer); err == nil {
		t.Error("--on with --off should fail")
	}
}

func TestCLI_TicketCreate(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  ovh.NewTicket
	}{
		{
			name: "flags",
			args: []string{"--category", "incident", "--subcategory", "down", "--product", "dedicated",
				"--service", testServer, "--subject", "Disk failure", "-m", "sda is gone"},
			want: ovh.NewTicket{Category: "incident", Subcategory: "down", Product: "dedicated",
				ServiceName: testServer, Subject: "Disk failure", Body: "sda is gone"},
		},
		{
			name:  "prompts",
			stdin: "\n\nvps\nSlow disk\nvps-1\n",
			args:  []string{"-m", "iowait is high"},
			want: ovh.NewTicket{Category: "incident", Subcategory: "new", Product: "vps",
				ServiceName: "vps-1", Subject: "Slow disk", Body: "iowait is high"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockOVH()
			defer mock.Close()
			mock.SetJSON(http.MethodPost, "/support/tickets/create", `{"ticketId":9,"ticketNumber":1009,"messageId":1}`)
			cfg := writeConfig(t, mock)

			out, err := run(t, cfg, tt.stdin, append([]string{"ticket", "create"}, tt.args...)...)
			if err != nil {
				t.Fatalf("ticket create error = %v", err)
			}
			if !strings.Contains(out, "Ticket 9 created (number 1009)") {
				t.Errorf("output = %q", out)
			}

			reqs := mock.Requests()
			if len(reqs) != 1 {
				t.Fatalf("requests = %+v, want one POST", reqs)
			}
			var got ovh.NewTicket
			if err := json.Unmarshal([]byte(reqs[0].Body), &got); err != nil {
				t.Fatalf("body %q: %v", reqs[0].Body, err)
			}
			if got != tt.want {
				t.Errorf("ticket = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCLI_TicketCreateRejectsUnknownCategory(t *testing.T) {
	mock := testutil.NewMockOVH()
	defer mock.Close()
	cfg := writeConfig(t, mock)

	_, err := run(t, cfg, "", "ticket", "create", "--category", "gossip", "-m", "hi")
	if err == nil || !strings.Contains(err.Error(), "invalid ticket category") {
		t.Errorf("error = %v, want invalid category", err)
	}
	if n := mock.GetRequestCount(); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestCreateTokenURL(t *testing.T) {
	got, err := createTokenURL("ovh-eu", "ovh-cli", "ovh-cli")
	if err != nil {
		t.Fatalf("createTokenURL() error = %v", err)
	}
	want := "https://eu.api.ovh.com/createToken/index.cgi?applicationDescription=ovh-cli&applicationName=ovh-cli&duration=2592000&GET=/*&POST=/*&PUT=/*&DELETE=/*"
	if got != want {
		t.Errorf("createTokenURL() =\n%s\nwant\n%s", got, want)
	}

	if _, err := createTokenURL("nowhere", "a", "b"); err == nil {
		t.Error("createTokenURL() expected error for unknown endpoint")
	}
}

func TestExtractReply(t *testing.T) {
	text := "\n  Disk replaced, thanks.\n\n" + replyDelimiter + "\n\n> --- support, 2024-01-01 ---\n> hello\n"
	if got := extractReply(text); got != "Disk replaced, thanks." {
		t.Errorf("extractReply() = %q", got)
	}
	if got := extractReply("no delimiter\n"); got != "no delimiter" {
		t.Errorf("extractReply() = %q", got)
	}

	tmpl := replyTemplate(nil)
	if extractReply(tmpl) != "" {
		t.Errorf("untouched template should yield an empty reply")
	}
}

package maven

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/libmirror/pkg/cache"
	"github.com/matzehuels/libmirror/pkg/errors"
	"github.com/matzehuels/libmirror/pkg/httputil"
	"github.com/matzehuels/libmirror/pkg/integrations"
)

const (
	masterXML = `<?xml version='1.0' encoding='UTF-8'?>
<metadata>
  <com.example/>
  <androidx.core/>
</metadata>`

	groupXML = `<?xml version='1.0' encoding='UTF-8'?>
<com.example>
  <widget versions="1.0,1.1-alpha"/>
  <gadget versions="2.0"/>
</com.example>`

	pomXML = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>widget</artifactId>
  <version>1.0</version>
  <packaging>aar</packaging>
  <name>Example Widget</name>
</project>`
)

func TestGroupPath(t *testing.T) {
	tests := []struct {
		group string
		want  string
	}{
		{"com.example", "com/example"},
		{"androidx.core", "androidx/core"},
		{"single", "single"},
		{"com.google.android.material", "com/google/android/material"},
	}

	for _, tt := range tests {
		if got := GroupPath(tt.group); got != tt.want {
			t.Errorf("GroupPath(%q) = %q, want %q", tt.group, got, tt.want)
		}
	}
}

func TestCoordinate(t *testing.T) {
	c := Coordinate{Group: "com.example", Artifact: "widget", Version: "1.0"}
	if got := c.String(); got != "com.example:widget:1.0" {
		t.Errorf("String() = %q", got)
	}

	client := NewClient(nil, Options{BaseURL: "https://repo.test/maven2/"})
	if got, want := client.FileURL(c, "aar"), "https://repo.test/maven2/com/example/widget/1.0/widget-1.0.aar"; got != want {
		t.Errorf("FileURL() = %q, want %q", got, want)
	}
	if got, want := client.GroupIndexURL("com.example"), "https://repo.test/maven2/com/example/group-index.xml"; got != want {
		t.Errorf("GroupIndexURL() = %q, want %q", got, want)
	}
	if got, want := client.MasterIndexURL(), "https://repo.test/maven2/master-index.xml"; got != want {
		t.Errorf("MasterIndexURL() = %q, want %q", got, want)
	}
}

func TestParseMasterIndex(t *testing.T) {
	idx, err := ParseMasterIndex([]byte(masterXML))
	if err != nil {
		t.Fatalf("ParseMasterIndex() error: %v", err)
	}
	want := []string{"com.example", "androidx.core"}
	if len(idx.Groups) != len(want) {
		t.Fatalf("Groups = %v, want %v", idx.Groups, want)
	}
	for i := range want {
		if idx.Groups[i] != want[i] {
			t.Errorf("Groups[%d] = %q, want %q", i, idx.Groups[i], want[i])
		}
	}

	empty, err := ParseMasterIndex([]byte("<metadata></metadata>"))
	if err != nil {
		t.Fatalf("ParseMasterIndex(empty) error: %v", err)
	}
	if len(empty.Groups) != 0 {
		t.Errorf("Groups = %v, want none", empty.Groups)
	}
}

func TestParseMasterIndex_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":      "",
		"malformed":  "<metadata><com.example></metadata>",
		"wrong root": "<index><com.example/></index>",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMasterIndex([]byte(body))
			if errors.GetCode(err) != errors.ErrCodeInvalidDocument {
				t.Errorf("ParseMasterIndex() code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidDocument)
			}
		})
	}
}

func TestParseGroupIndex(t *testing.T) {
	idx, err := ParseGroupIndex("com.example", []byte(groupXML))
	if err != nil {
		t.Fatalf("ParseGroupIndex() error: %v", err)
	}
	if len(idx.Libraries) != 2 {
		t.Fatalf("Libraries = %v, want 2", idx.Libraries)
	}
	want := []Library{
		{Group: "com.example", Name: "widget", Versions: "1.0,1.1-alpha"},
		{Group: "com.example", Name: "gadget", Versions: "2.0"},
	}
	for i := range want {
		if idx.Libraries[i] != want[i] {
			t.Errorf("Libraries[%d] = %+v, want %+v", i, idx.Libraries[i], want[i])
		}
	}
}

func TestParseGroupIndex_Invalid(t *testing.T) {
	tests := map[string]string{
		"wrong root":       `<com.other><widget versions="1.0"/></com.other>`,
		"missing versions": `<com.example><widget/></com.example>`,
		"malformed":        `<com.example><widget versions="1.0">`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGroupIndex("com.example", []byte(body))
			if errors.GetCode(err) != errors.ErrCodeInvalidDocument {
				t.Errorf("ParseGroupIndex() error = %v, want invalid document", err)
			}
		})
	}
}

func TestPOMResolve(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantExt  string
		wantName string
	}{
		{"declared", pomXML, "aar", "Example Widget"},
		{"defaults", `<project><artifactId>widget</artifactId></project>`, "jar", "widget"},
		{"blank fields", `<project><packaging>  </packaging><name> </name></project>`, "jar", "widget"},
		{"property name", `<project><packaging>jar</packaging><name>${project.artifactId}</name></project>`, "jar", "widget"},
		{"multiline name", "<project><name>Example\n    Widget</name></project>", "jar", "Example Widget"},
		{"latin-1", "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<project><packaging>aar</packaging><name>Caf\xe9 Widget</name></project>", "aar", "Café Widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pom, err := ParsePOM([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParsePOM() error: %v", err)
			}
			got, err := pom.Resolve("widget")
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if got.Extension != tt.wantExt || got.DisplayName != tt.wantName {
				t.Errorf("Resolve() = %+v, want {%s %s}", got, tt.wantExt, tt.wantName)
			}
		})
	}
}

func TestPOMResolve_Invalid(t *testing.T) {
	if _, err := ParsePOM([]byte("<metadata/>")); errors.GetCode(err) != errors.ErrCodeInvalidDocument {
		t.Errorf("ParsePOM(wrong root) error = %v", err)
	}

	pom, err := ParsePOM([]byte("<project><packaging>../evil</packaging></project>"))
	if err != nil {
		t.Fatalf("ParsePOM() error: %v", err)
	}
	if _, err := pom.Resolve("widget"); errors.GetCode(err) != errors.ErrCodeInvalidDocument {
		t.Errorf("Resolve(path packaging) error = %v, want invalid document", err)
	}
}

func TestClient_Fetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/master-index.xml":
			w.Write([]byte(masterXML))
		case "/com/example/group-index.xml":
			w.Write([]byte(groupXML))
		case "/com/example/widget/1.0/widget-1.0.pom":
			w.Write([]byte(pomXML))
		case "/com/example/widget/1.0/widget-1.0.aar":
			w.Write([]byte("AAR-BYTES"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := testClient(t, server.URL, httputil.NoRetry)
	ctx := context.Background()

	master, err := client.FetchMasterIndex(ctx)
	if err != nil {
		t.Fatalf("FetchMasterIndex() error: %v", err)
	}
	if len(master.Groups) != 2 || master.Groups[0] != "com.example" {
		t.Errorf("Groups = %v", master.Groups)
	}

	group, err := client.FetchGroupIndex(ctx, "com.example")
	if err != nil {
		t.Fatalf("FetchGroupIndex() error: %v", err)
	}
	if len(group.Libraries) != 2 {
		t.Errorf("Libraries = %v", group.Libraries)
	}

	coord := Coordinate{Group: "com.example", Artifact: "widget", Version: "1.0"}
	pkg, err := client.ResolvePackaging(ctx, coord)
	if err != nil {
		t.Fatalf("ResolvePackaging() error: %v", err)
	}
	if pkg.Extension != "aar" || pkg.DisplayName != "Example Widget" {
		t.Errorf("ResolvePackaging() = %+v", pkg)
	}

	var buf bytes.Buffer
	n, err := client.DownloadArtifact(ctx, coord, pkg.Extension, &buf)
	if err != nil {
		t.Fatalf("DownloadArtifact() error: %v", err)
	}
	if n != int64(len("AAR-BYTES")) || buf.String() != "AAR-BYTES" {
		t.Errorf("DownloadArtifact() = %d %q", n, buf.String())
	}

	// Second pass is served from cache.
	before := hits.Load()
	if _, err := client.FetchMasterIndex(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := client.ResolvePackaging(ctx, coord); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != before {
		t.Errorf("cached fetches hit server %d times", hits.Load()-before)
	}
}

func TestClient_ZeroIndexTTLDisablesIndexCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(masterXML))
	}))
	defer server.Close()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(c, Options{BaseURL: server.URL, Timeout: 5 * time.Second})

	for range 3 {
		if _, err := client.FetchMasterIndex(context.Background()); err != nil {
			t.Fatalf("FetchMasterIndex() error: %v", err)
		}
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
}

func TestClient_IndexNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(t, server.URL, httputil.Policy{Attempts: 3, Delay: time.Millisecond})
	if _, err := client.FetchMasterIndex(context.Background()); err == nil {
		t.Fatal("FetchMasterIndex() expected error")
	}
	if hits.Load() != 1 {
		t.Errorf("index fetched %d times, want 1", hits.Load())
	}
}

func TestClient_POMRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(pomXML))
	}))
	defer server.Close()

	client := testClient(t, server.URL, httputil.Policy{Attempts: 3, Delay: time.Millisecond})
	coord := Coordinate{Group: "com.example", Artifact: "widget", Version: "1.0"}
	if _, err := client.ResolvePackaging(context.Background(), coord); err != nil {
		t.Fatalf("ResolvePackaging() error: %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("pom fetched %d times, want 3", hits.Load())
	}
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(t, server.URL, httputil.NoRetry)
	_, err := client.FetchGroupIndex(context.Background(), "com.missing")
	if !stderrors.Is(err, integrations.ErrNotFound) || errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("FetchGroupIndex() error = %v, want ErrNotFound", err)
	}

	var buf bytes.Buffer
	coord := Coordinate{Group: "com.example", Artifact: "widget", Version: "1.0"}
	_, err = client.DownloadArtifact(context.Background(), coord, "jar", &buf)
	if !stderrors.Is(err, integrations.ErrNotFound) || errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("DownloadArtifact() error = %v, want ErrNotFound", err)
	}
}

func TestClient_ErrorCodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/master-index.xml":
			w.WriteHeader(http.StatusForbidden)
		case "/com/example/group-index.xml":
			w.Write([]byte("<com.example><widget/></com.example>"))
		default:
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}
	}))
	defer server.Close()

	client := NewClient(nil, Options{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	ctx := context.Background()
	coord := Coordinate{Group: "com.example", Artifact: "widget", Version: "1.0"}

	_, err := client.FetchMasterIndex(ctx)
	if got := errors.GetCode(err); got != errors.ErrCodeNetwork {
		t.Errorf("FetchMasterIndex() code = %q (%v), want %q", got, err, errors.ErrCodeNetwork)
	}

	_, err = client.FetchGroupIndex(ctx, "com.example")
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidDocument {
		t.Errorf("FetchGroupIndex() code = %q (%v), want %q", got, err, errors.ErrCodeInvalidDocument)
	}

	_, err = client.FetchPOM(ctx, coord)
	if got := errors.GetCode(err); got != errors.ErrCodeTimeout {
		t.Errorf("FetchPOM() code = %q (%v), want %q", got, err, errors.ErrCodeTimeout)
	}
	if !httputil.IsRetryable(err) {
		t.Errorf("FetchPOM() timeout should stay retryable: %v", err)
	}
}

func testClient(t *testing.T, serverURL string, retry httputil.Policy) *Client {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(c, Options{
		BaseURL:  serverURL,
		Timeout:  5 * time.Second,
		IndexTTL: time.Hour,
		Retry:    retry,
	})
}

package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adeilh/go-cirrus/apierr"
)

func TestClientRoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/t1/packages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"small"}]`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))

	var out []struct {
		Name string `json:"name"`
	}
	resp, err := client.Get(context.Background(), Path("t1", "packages"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode())
	}
	if len(out) != 1 || out[0].Name != "small" {
		t.Fatalf("unexpected body: %#v", out)
	}
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"UnknownPackageError","message":"no such package","messages":["try small"]}`))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))

	_, err := client.Get(context.Background(), "/t1/packages/huge", nil)
	var be *apierr.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected a BackendError, got %v", err)
	}
	if be.StatusCode != http.StatusConflict || be.Code != "UnknownPackageError" {
		t.Fatalf("unexpected envelope: %+v", be)
	}
	if be.Message != "no such package" || len(be.Messages) != 1 {
		t.Fatalf("unexpected envelope detail: %+v", be)
	}
}

func TestClientCarriesNonEnvelopeBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream fell over\n"))
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))

	_, err := client.Get(context.Background(), "/anything", nil)
	var be *apierr.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected a BackendError, got %v", err)
	}
	if be.StatusCode != http.StatusBadGateway || be.Message != "upstream fell over" {
		t.Fatalf("unexpected envelope: %+v", be)
	}
}

type stubSigner struct {
	authz    string
	lastDate string
}

func (s *stubSigner) Sign(date string) (string, error) {
	s.lastDate = date
	return s.authz, nil
}

func TestClientSignsRequests(t *testing.T) {
	var gotDate, gotAuthz string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.Header.Get("Date")
		gotAuthz = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	signer := &stubSigner{authz: `Signature keyId="k",signature="abc"`}
	client := NewClient(WithBaseURL(ts.URL), WithSigner(signer), WithClock(func() time.Time { return fixed }))

	if _, err := client.Get(context.Background(), "/t1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fixed.Format(http.TimeFormat)
	if gotDate != want {
		t.Fatalf("Date = %q, want %q", gotDate, want)
	}
	if gotAuthz != signer.authz {
		t.Fatalf("Authorization = %q", gotAuthz)
	}
	if signer.lastDate != want {
		t.Fatalf("signer saw date %q, want %q", signer.lastDate, want)
	}
}

func TestTransitionID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderTransition, "/t1/transitions/42")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	client := NewClient(WithBaseURL(ts.URL))
	resp, err := client.Post(context.Background(), "/t1/machines/m1", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := TransitionID(resp); got != "/t1/transitions/42" {
		t.Fatalf("TransitionID() = %q", got)
	}
	if TransitionID(nil) != "" {
		t.Fatalf("TransitionID(nil) should be empty")
	}
}

func TestPathEscapesSegments(t *testing.T) {
	if got := Path("a b", "keys", "k/1"); got != "/a%20b/keys/k%2F1" {
		t.Fatalf("Path() = %q", got)
	}
	if got := Path(); got != "/" {
		t.Fatalf("empty Path() = %q", got)
	}
}

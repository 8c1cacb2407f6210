package compute

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/adeilh/go-cirrus/apierr"
	"github.com/adeilh/go-cirrus/internal/testutil/backendstub"
)

func testCatalogs() ([]backendstub.Package, []backendstub.Dataset) {
	packages := []backendstub.Package{
		{Name: "small", Memory: 1024, Disk: 10240, VCPUs: 1, Default: true},
		{Name: "t1-large", OwnerUUID: "t1", Memory: 8192, Disk: 102400, VCPUs: 4},
		{Name: "t2-large", OwnerUUID: "t2", Memory: 8192, Disk: 102400, VCPUs: 4},
	}
	datasets := []backendstub.Dataset{
		{Name: "base", URN: "base:1.0", Version: "1.0", OS: "linux"},
		{Name: "t1-image", URN: "t1-image:0.1", Version: "0.1", OS: "linux", OwnerUUID: "t1"},
	}
	return packages, datasets
}

func newTestClient(t *testing.T, stub *backendstub.Compute, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(stub.URL()), WithPollInterval(time.Millisecond)}, opts...)
	client, err := NewClient(opts...)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func names[T interface{ name() string }](list []T) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.name()
	}
	return out
}

func containsName(list []string, want string) bool {
	for _, n := range list {
		if n == want {
			return true
		}
	}
	return false
}

func (p Package) name() string { return p.Name }
func (d Dataset) name() string { return d.Name }

func TestListPackagesMergesSharedAndOwned(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	for i := 0; i < 2; i++ { // second pass is served from cache
		list, err := client.ListPackages(ctx, "t1")
		if err != nil {
			t.Fatalf("ListPackages() error = %v", err)
		}
		got := names(list)
		if len(got) != 2 || !containsName(got, "small") || !containsName(got, "t1-large") {
			t.Fatalf("t1 packages = %v", got)
		}
		if containsName(got, "t2-large") {
			t.Fatalf("t1 must not see t2's private package")
		}
	}

	if calls := stub.Calls(http.MethodGet, "/t1/packages"); calls != 1 {
		t.Fatalf("backend called %d times, want 1", calls)
	}
}

func TestListPackagesSecondTenantServedFromSharedPartition(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	if _, err := client.ListPackages(ctx, "t1"); err != nil {
		t.Fatalf("ListPackages(t1) error = %v", err)
	}

	// t1's fetch populated the anonymous partition; t2's partition was
	// never written, so t2 is served the shared packages standalone and
	// never touches the backend. t1's private package must not leak.
	list, err := client.ListPackages(ctx, "t2")
	if err != nil {
		t.Fatalf("ListPackages(t2) error = %v", err)
	}
	got := names(list)
	if len(got) != 1 || !containsName(got, "small") {
		t.Fatalf("t2 packages = %v, want the shared catalog only", got)
	}
	if containsName(got, "t1-large") {
		t.Fatalf("t1's private package leaked to t2: %v", got)
	}
	if calls := stub.Calls(http.MethodGet, "/t2/packages"); calls != 0 {
		t.Fatalf("t2 hit the backend %d times, want 0", calls)
	}
}

func TestGetPackageSharedServedFromAnonymousPartition(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	if _, err := client.GetPackage(ctx, "t1", "small"); err != nil {
		t.Fatalf("GetPackage(t1) error = %v", err)
	}

	// The shared package was cached anonymously, so t2's read never
	// touches the backend.
	pkg, err := client.GetPackage(ctx, "t2", "small")
	if err != nil {
		t.Fatalf("GetPackage(t2) error = %v", err)
	}
	if pkg.Name != "small" {
		t.Fatalf("package = %+v", pkg)
	}
	if calls := stub.Calls(http.MethodGet, "/t2/packages/small"); calls != 0 {
		t.Fatalf("t2 hit the backend %d times, want 0", calls)
	}
}

func TestGetPackageNegativeCache(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.GetPackage(ctx, "t1", "huge")
		if !apierr.IsNotFound(err) {
			t.Fatalf("GetPackage() error = %v, want not-found", err)
		}
	}

	if calls := stub.Calls(http.MethodGet, "/t1/packages/huge"); calls != 1 {
		t.Fatalf("negative result not cached: %d backend calls", calls)
	}
}

func TestListDatasetsCached(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		list, err := client.ListDatasets(ctx, "t1")
		if err != nil {
			t.Fatalf("ListDatasets() error = %v", err)
		}
		got := names(list)
		if len(got) != 2 || !containsName(got, "base") || !containsName(got, "t1-image") {
			t.Fatalf("t1 datasets = %v", got)
		}
	}

	if calls := stub.Calls(http.MethodGet, "/t1/datasets"); calls != 1 {
		t.Fatalf("backend called %d times, want 1", calls)
	}
}

func TestDeleteDatasetPurgesCachedEntry(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	if _, err := client.GetDataset(ctx, "t1", "t1-image"); err != nil {
		t.Fatalf("GetDataset() error = %v", err)
	}
	if err := client.DeleteDataset(ctx, "t1", "t1-image"); err != nil {
		t.Fatalf("DeleteDataset() error = %v", err)
	}

	// The purge forces a refetch, which now reports the deletion.
	_, err := client.GetDataset(ctx, "t1", "t1-image")
	if !apierr.IsNotFound(err) {
		t.Fatalf("GetDataset() after delete = %v, want not-found", err)
	}
	if calls := stub.Calls(http.MethodGet, "/t1/datasets/t1-image"); calls != 2 {
		t.Fatalf("backend called %d times, want 2", calls)
	}
}

func TestCreateMachineAndWaitForRunning(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	m, transition, err := client.CreateMachine(ctx, "t1", CreateMachineInput{
		Name:    "web0",
		Package: "small",
		Dataset: "base",
	})
	if err != nil {
		t.Fatalf("CreateMachine() error = %v", err)
	}
	if m.State != StateProvisioning {
		t.Fatalf("state = %q, want provisioning", m.State)
	}
	if transition == "" {
		t.Fatalf("expected a transition identifier")
	}

	m, err = client.WaitForMachineState(ctx, "t1", m.ID, StateRunning)
	if err != nil {
		t.Fatalf("WaitForMachineState() error = %v", err)
	}
	if m.State != StateRunning {
		t.Fatalf("state = %q, want running", m.State)
	}
}

func TestWaitForMachineStateAcceptsMultipleTargets(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	m, _, err := client.CreateMachine(ctx, "t1", CreateMachineInput{Package: "small", Dataset: "base"})
	if err != nil {
		t.Fatalf("CreateMachine() error = %v", err)
	}

	// The machine settles into running; either target satisfies the wait.
	m, err = client.WaitForMachineState(ctx, "t1", m.ID, StateStopped, StateRunning)
	if err != nil {
		t.Fatalf("WaitForMachineState() error = %v", err)
	}
	if m.State != StateRunning {
		t.Fatalf("state = %q, want running", m.State)
	}
}

func TestWaitForMachineStateRetriesExceeded(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	stub.ProvisionPolls = -1 // machine never settles

	client := newTestClient(t, stub, WithPollBudget(3))

	ctx := context.Background()
	m, _, err := client.CreateMachine(ctx, "t1", CreateMachineInput{Package: "small", Dataset: "base"})
	if err != nil {
		t.Fatalf("CreateMachine() error = %v", err)
	}

	_, err = client.WaitForMachineState(ctx, "t1", m.ID, StateRunning)
	var aerr *apierr.Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected a translated error, got %v", err)
	}
	if aerr.Kind != apierr.KindInternal || aerr.Code != "RetriesExceededError" {
		t.Fatalf("error = %+v", aerr)
	}
	if calls := stub.Calls(http.MethodGet, "/t1/machines/"+m.ID); calls != 3 {
		t.Fatalf("polled %d times, want 3", calls)
	}
}

func TestStartRunningMachineIsInvalidState(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	m, _, err := client.CreateMachine(ctx, "t1", CreateMachineInput{Package: "small", Dataset: "base"})
	if err != nil {
		t.Fatalf("CreateMachine() error = %v", err)
	}
	if _, err := client.WaitForMachineState(ctx, "t1", m.ID, StateRunning); err != nil {
		t.Fatalf("WaitForMachineState() error = %v", err)
	}

	_, err = client.StartMachine(ctx, "t1", m.ID)
	if !apierr.IsKind(err, apierr.KindInvalidState) {
		t.Fatalf("StartMachine() error = %v, want invalid-state", err)
	}
}

func TestCreateMachineUnknownPackage(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	_, _, err := client.CreateMachine(context.Background(), "t1", CreateMachineInput{Package: "huge", Dataset: "base"})
	if !apierr.IsKind(err, apierr.KindInvalidArgument) {
		t.Fatalf("CreateMachine() error = %v, want invalid-argument", err)
	}
}

func TestSetupErrorTranslation(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	stub.Fail(http.MethodPost, "/t1/machines", http.StatusInternalServerError, "SetupError", "cn42 is mid-rebuild")

	_, _, err := client.CreateMachine(context.Background(), "t1", CreateMachineInput{Package: "small", Dataset: "base"})
	var aerr *apierr.Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected a translated error, got %v", err)
	}
	if aerr.Kind != apierr.KindServiceUnavailable {
		t.Fatalf("Kind = %v", aerr.Kind)
	}
	if aerr.Message != "System is unavailable for provisioning" {
		t.Fatalf("Message = %q, want the fixed override", aerr.Message)
	}
}

func TestValidationFailsBeforeIO(t *testing.T) {
	stub := backendstub.NewCompute(testCatalogs())
	defer stub.Close()
	client := newTestClient(t, stub)

	ctx := context.Background()
	if _, err := client.ListPackages(ctx, ""); !errors.Is(err, ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
	if _, err := client.GetPackage(ctx, "t1", ""); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := client.GetMachine(ctx, "t1", ""); !errors.Is(err, ErrMachineRequired) {
		t.Fatalf("expected ErrMachineRequired, got %v", err)
	}
	if _, _, err := client.CreateMachine(ctx, "t1", CreateMachineInput{Dataset: "base"}); !errors.Is(err, ErrPackageRequired) {
		t.Fatalf("expected ErrPackageRequired, got %v", err)
	}
	if _, err := client.WaitForMachineState(ctx, "t1", "m"); !errors.Is(err, ErrStateRequired) {
		t.Fatalf("expected ErrStateRequired, got %v", err)
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(); !errors.Is(err, ErrBaseURLRequired) {
		t.Fatalf("expected ErrBaseURLRequired, got %v", err)
	}
}

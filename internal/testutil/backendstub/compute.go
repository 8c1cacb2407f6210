package backendstub

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// Package mirrors the provisioning service's package payload.
type Package struct {
	Name      string `json:"name"`
	OwnerUUID string `json:"owner_uuid,omitempty"`
	Memory    int    `json:"memory"`
	Disk      int    `json:"disk"`
	Swap      int    `json:"swap"`
	VCPUs     int    `json:"vcpus"`
	Default   bool   `json:"default,omitempty"`
}

// Dataset mirrors the provisioning service's dataset payload.
type Dataset struct {
	URN       string `json:"urn"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	OS        string `json:"os"`
	OwnerUUID string `json:"owner_uuid,omitempty"`
}

// Machine mirrors the provisioning service's machine payload.
type Machine struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	State   string `json:"state"`
	Package string `json:"package"`
	Dataset string `json:"dataset"`
}

type machineRec struct {
	Machine
	pending   string
	countdown int
}

// Compute is a fake provisioning service. Machines transition between
// states lazily: a scheduled transition takes effect after a configured
// number of GETs, which lets tests drive the polling loop.
type Compute struct {
	*Stub

	// ProvisionPolls is how many GETs a new machine stays provisioning
	// before turning running. Negative means it never settles.
	ProvisionPolls int

	mu       sync.Mutex
	packages []Package
	datasets []Dataset
	machines map[string]*machineRec
	nextID   int
}

// NewCompute starts a fake provisioning service seeded with the given
// catalogs.
func NewCompute(packages []Package, datasets []Dataset) *Compute {
	c := &Compute{
		Stub:           newStub(),
		ProvisionPolls: 2,
		packages:       packages,
		datasets:       datasets,
		machines:       make(map[string]*machineRec),
	}

	c.e.GET("/:tenant/packages", c.listPackages)
	c.e.GET("/:tenant/packages/:name", c.getPackage)
	c.e.GET("/:tenant/datasets", c.listDatasets)
	c.e.GET("/:tenant/datasets/:name", c.getDataset)
	c.e.DELETE("/:tenant/datasets/:name", c.deleteDataset)
	c.e.GET("/:tenant/machines", c.listMachines)
	c.e.POST("/:tenant/machines", c.createMachine)
	c.e.GET("/:tenant/machines/:id", c.getMachine)
	c.e.POST("/:tenant/machines/:id", c.machineAction)
	c.e.DELETE("/:tenant/machines/:id", c.deleteMachine)

	c.start()
	return c
}

func visible(owner, tenant string) bool {
	return owner == "" || owner == tenant
}

func (c *Compute) listPackages(ec echo.Context) error {
	tenant := ec.Param("tenant")
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Package, 0, len(c.packages))
	for _, p := range c.packages {
		if visible(p.OwnerUUID, tenant) {
			out = append(out, p)
		}
	}
	return ec.JSON(http.StatusOK, out)
}

func (c *Compute) getPackage(ec echo.Context) error {
	tenant, name := ec.Param("tenant"), ec.Param("name")
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.packages {
		if p.Name == name && visible(p.OwnerUUID, tenant) {
			return ec.JSON(http.StatusOK, p)
		}
	}
	return notFound(ec, fmt.Sprintf("package %s not found", name))
}

func (c *Compute) listDatasets(ec echo.Context) error {
	tenant := ec.Param("tenant")
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Dataset, 0, len(c.datasets))
	for _, d := range c.datasets {
		if visible(d.OwnerUUID, tenant) {
			out = append(out, d)
		}
	}
	return ec.JSON(http.StatusOK, out)
}

func (c *Compute) getDataset(ec echo.Context) error {
	tenant, name := ec.Param("tenant"), ec.Param("name")
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.datasets {
		if d.Name == name && visible(d.OwnerUUID, tenant) {
			return ec.JSON(http.StatusOK, d)
		}
	}
	return notFound(ec, fmt.Sprintf("dataset %s not found", name))
}

func (c *Compute) deleteDataset(ec echo.Context) error {
	tenant, name := ec.Param("tenant"), ec.Param("name")
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.datasets {
		if d.Name == name && d.OwnerUUID == tenant {
			c.datasets = append(c.datasets[:i], c.datasets[i+1:]...)
			return ec.NoContent(http.StatusNoContent)
		}
	}
	return notFound(ec, fmt.Sprintf("dataset %s not found", name))
}

func (c *Compute) listMachines(ec echo.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Machine, 0, len(c.machines))
	for _, m := range c.machines {
		out = append(out, m.Machine)
	}
	return ec.JSON(http.StatusOK, out)
}

func (c *Compute) createMachine(ec echo.Context) error {
	tenant := ec.Param("tenant")
	var in struct {
		Name    string `json:"name"`
		Package string `json:"package"`
		Dataset string `json:"dataset"`
	}
	if err := ec.Bind(&in); err != nil {
		return conflict(ec, "InvalidParamError", "malformed provision request")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasPackage(in.Package, tenant) {
		return conflict(ec, "UnknownPackageError", fmt.Sprintf("package %s does not exist", in.Package))
	}
	if !c.hasDataset(in.Dataset, tenant) {
		return conflict(ec, "UnknownDatasetError", fmt.Sprintf("dataset %s does not exist", in.Dataset))
	}

	c.nextID++
	m := &machineRec{
		Machine: Machine{
			ID:      fmt.Sprintf("machine-%d", c.nextID),
			Name:    in.Name,
			State:   "provisioning",
			Package: in.Package,
			Dataset: in.Dataset,
		},
	}
	if c.ProvisionPolls >= 0 {
		m.pending, m.countdown = "running", c.ProvisionPolls
	}
	c.machines[m.ID] = m

	ec.Response().Header().Set("X-Transition-Uri", "/"+tenant+"/transitions/"+m.ID)
	return ec.JSON(http.StatusCreated, m.Machine)
}

func (c *Compute) getMachine(ec echo.Context) error {
	id := ec.Param("id")
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.machines[id]
	if !ok {
		return notFound(ec, fmt.Sprintf("machine %s not found", id))
	}
	if m.pending != "" {
		if m.countdown > 0 {
			m.countdown--
		}
		if m.countdown == 0 {
			m.State, m.pending = m.pending, ""
		}
	}
	return ec.JSON(http.StatusOK, m.Machine)
}

func (c *Compute) machineAction(ec echo.Context) error {
	tenant, id := ec.Param("tenant"), ec.Param("id")
	action := ec.QueryParam("action")

	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.machines[id]
	if !ok {
		return notFound(ec, fmt.Sprintf("machine %s not found", id))
	}

	switch action {
	case "start":
		if m.State == "running" {
			return conflict(ec, "TransitionToCurrentStatusError", "machine is already running")
		}
		m.pending, m.countdown = "running", 1
	case "stop":
		if m.State == "stopped" {
			return conflict(ec, "TransitionToCurrentStatusError", "machine is already stopped")
		}
		m.pending, m.countdown = "stopped", 1
	case "reboot":
		m.pending, m.countdown = "running", 1
	case "resize":
		pkg := ec.QueryParam("package")
		if !c.hasPackage(pkg, tenant) {
			return conflict(ec, "UnknownPackageError", fmt.Sprintf("package %s does not exist", pkg))
		}
		m.Package = pkg
	default:
		return conflict(ec, "InvalidParamError", fmt.Sprintf("unknown action %q", action))
	}

	ec.Response().Header().Set("X-Transition-Uri", "/"+tenant+"/transitions/"+id)
	return ec.NoContent(http.StatusAccepted)
}

func (c *Compute) deleteMachine(ec echo.Context) error {
	tenant, id := ec.Param("tenant"), ec.Param("id")
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.machines[id]
	if !ok {
		return notFound(ec, fmt.Sprintf("machine %s not found", id))
	}
	m.State, m.pending = "destroyed", ""
	ec.Response().Header().Set("X-Transition-Uri", "/"+tenant+"/transitions/"+id)
	return ec.NoContent(http.StatusNoContent)
}

func (c *Compute) hasPackage(name, tenant string) bool {
	for _, p := range c.packages {
		if p.Name == name && visible(p.OwnerUUID, tenant) {
			return true
		}
	}
	return false
}

func (c *Compute) hasDataset(name, tenant string) bool {
	for _, d := range c.datasets {
		if d.Name == name && visible(d.OwnerUUID, tenant) {
			return true
		}
	}
	return false
}

package compute

import "time"

// Machine lifecycle states reported by the provisioning service.
const (
	StateProvisioning = "provisioning"
	StateRunning      = "running"
	StateStopping     = "stopping"
	StateStopped      = "stopped"
	StateFailed       = "failed"
	StateDestroyed    = "destroyed"
)

// Package is a provisioning size profile. Shared packages have no owner;
// tenant-private packages carry the owning tenant's id.
type Package struct {
	Name      string `json:"name"`
	OwnerUUID string `json:"owner_uuid,omitempty"`
	Memory    int    `json:"memory"`
	Disk      int    `json:"disk"`
	Swap      int    `json:"swap"`
	VCPUs     int    `json:"vcpus"`
	Default   bool   `json:"default,omitempty"`
}

func (p Package) Owner() string { return p.OwnerUUID }

// Dataset is an OS image a machine can be provisioned from. Public datasets
// have no owner; custom images carry the owning tenant's id.
type Dataset struct {
	URN       string    `json:"urn"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	OS        string    `json:"os"`
	OwnerUUID string    `json:"owner_uuid,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (d Dataset) Owner() string { return d.OwnerUUID }

// Machine is a provisioned instance. Machines change state constantly and
// are therefore never cached.
type Machine struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	State     string            `json:"state"`
	Package   string            `json:"package"`
	Dataset   string            `json:"dataset"`
	Memory    int               `json:"memory"`
	Disk      int               `json:"disk"`
	IPs       []string          `json:"ips,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CreateMachineInput is the provision request body.
type CreateMachineInput struct {
	Name     string            `json:"name,omitempty"`
	Package  string            `json:"package"`
	Dataset  string            `json:"dataset"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

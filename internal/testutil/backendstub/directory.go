package backendstub

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// Account mirrors the directory service's account payload.
type Account struct {
	Login     string `json:"login"`
	UUID      string `json:"uuid"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// SSHKey mirrors the directory service's key payload.
type SSHKey struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Key         string `json:"key"`
}

// Directory is a fake directory service holding accounts and their SSH keys.
type Directory struct {
	*Stub

	mu       sync.Mutex
	accounts map[string]Account
	keys     map[string][]SSHKey
}

// NewDirectory starts a fake directory service seeded with the given
// accounts.
func NewDirectory(accounts ...Account) *Directory {
	d := &Directory{
		Stub:     newStub(),
		accounts: make(map[string]Account),
		keys:     make(map[string][]SSHKey),
	}
	for _, a := range accounts {
		d.accounts[a.Login] = a
	}

	d.e.GET("/:login", d.getAccount)
	d.e.PUT("/:login", d.updateAccount)
	d.e.GET("/:login/keys", d.listKeys)
	d.e.POST("/:login/keys", d.createKey)
	d.e.GET("/:login/keys/:name", d.getKey)
	d.e.DELETE("/:login/keys/:name", d.deleteKey)

	d.start()
	return d
}

// AddKey seeds a key directly, bypassing the HTTP surface.
func (d *Directory) AddKey(login string, key SSHKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[login] = append(d.keys[login], key)
}

func (d *Directory) getAccount(ec echo.Context) error {
	login := ec.Param("login")
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.accounts[login]
	if !ok {
		return notFound(ec, fmt.Sprintf("account %s not found", login))
	}
	return ec.JSON(http.StatusOK, a)
}

func (d *Directory) updateAccount(ec echo.Context) error {
	login := ec.Param("login")
	var in Account
	if err := ec.Bind(&in); err != nil {
		return conflict(ec, "InvalidParamError", "malformed account update")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.accounts[login]
	if !ok {
		return notFound(ec, fmt.Sprintf("account %s not found", login))
	}
	if in.Email != "" {
		a.Email = in.Email
	}
	if in.Company != "" {
		a.Company = in.Company
	}
	if in.FirstName != "" {
		a.FirstName = in.FirstName
	}
	if in.LastName != "" {
		a.LastName = in.LastName
	}
	d.accounts[login] = a
	return ec.JSON(http.StatusOK, a)
}

func (d *Directory) listKeys(ec echo.Context) error {
	login := ec.Param("login")
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[login]; !ok {
		return notFound(ec, fmt.Sprintf("account %s not found", login))
	}
	out := append([]SSHKey(nil), d.keys[login]...)
	return ec.JSON(http.StatusOK, out)
}

func (d *Directory) createKey(ec echo.Context) error {
	login := ec.Param("login")
	var in SSHKey
	if err := ec.Bind(&in); err != nil {
		return conflict(ec, "InvalidParamError", "malformed key")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[login]; !ok {
		return notFound(ec, fmt.Sprintf("account %s not found", login))
	}
	for _, k := range d.keys[login] {
		if k.Name == in.Name {
			return conflict(ec, "InvalidParamError", fmt.Sprintf("key %s already exists", in.Name))
		}
	}
	if in.Fingerprint == "" {
		in.Fingerprint = fmt.Sprintf("stub:%s", in.Name)
	}
	d.keys[login] = append(d.keys[login], in)
	return ec.JSON(http.StatusCreated, in)
}

func (d *Directory) getKey(ec echo.Context) error {
	login, name := ec.Param("login"), ec.Param("name")
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range d.keys[login] {
		if k.Name == name {
			return ec.JSON(http.StatusOK, k)
		}
	}
	return notFound(ec, fmt.Sprintf("key %s not found", name))
}

func (d *Directory) deleteKey(ec echo.Context) error {
	login, name := ec.Param("login"), ec.Param("name")
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, k := range d.keys[login] {
		if k.Name == name {
			d.keys[login] = append(d.keys[login][:i], d.keys[login][i+1:]...)
			return ec.NoContent(http.StatusNoContent)
		}
	}
	return notFound(ec, fmt.Sprintf("key %s not found", name))
}

// Package provision creates the per-domain stores before any table is
// loaded.
package provision

import (
	"context"
	"fmt"
	"log"
	"time"

	"nl2sql/internal/dataset"
	"nl2sql/internal/metrics"
	"nl2sql/internal/storage"
)

// openAdmin is a test hook that points to storage.NewAdmin by default.
var openAdmin = storage.NewAdmin

// Provisioner ensures stores exist. Stores sharing a connection share one
// administrative session.
type Provisioner struct {
	Logf func(format string, args ...any)
}

// New returns a Provisioner that logs through the standard logger.
func New() *Provisioner {
	return &Provisioner{Logf: log.Printf}
}

// Ensure creates every store in stores that does not exist yet. Existing
// stores and their tables are left untouched. The first failure stops
// provisioning and is returned as a *dataset.ProvisioningError.
func (p *Provisioner) Ensure(ctx context.Context, stores []dataset.StoreDescriptor) error {
	admins := map[string]storage.Admin{}
	defer func() {
		for _, a := range admins {
			a.Close()
		}
	}()

	for _, s := range stores {
		// Conn.String omits the password, which still selects the session.
		key := fmt.Sprintf("%s %s %v", s.Conn, s.Conn.Password, s.Conn.Params)
		a, ok := admins[key]
		if !ok {
			var err error
			a, err = openAdmin(ctx, s.Conn)
			if err != nil {
				return &dataset.ProvisioningError{Store: s.Name, Op: "connect " + s.Conn.String(), Err: err}
			}
			admins[key] = a
		}

		start := time.Now()
		err := a.EnsureDatabase(ctx, s.Database)
		metrics.RecordStep(s.Name, "provision", err, time.Since(start))
		if err != nil {
			return &dataset.ProvisioningError{Store: s.Name, Op: fmt.Sprintf("create database %q", s.Database), Err: err}
		}
		p.logf("provision: store=%s database=%s ready", s.Name, s.Database)
	}
	return nil
}

func (p *Provisioner) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

// Package config defines the run configuration: where source files live, how
// to reach the database server, and which domains and sources to load.
//
// Values are layered by Load (defaults, config file, .env, environment,
// flags) and then expanded by Descriptors into the immutable descriptors the
// pipeline consumes. A config file that declares no domains gets the built-in
// registry (crimes, happiness, hospitality).
//
// Example (trimmed):
//
//	data_dir: ./data
//	connection: { kind: mysql, host: localhost, user: root }
//	domains:
//	  - name: happiness
//	    sources:
//	      - files: [2015.csv, 2016.csv]
//	        table: happiness_{year}
//	        columns:
//	          - { canonical: country, synonyms: [Country, Country or region] }
package config

import (
	"strings"

	"nl2sql/internal/dataset"
)

// Config is the top-level object decoded by Load.
type Config struct {
	// DataDir is the base directory source paths are resolved against.
	DataDir    string     `koanf:"data_dir"`
	Connection Connection `koanf:"connection"`
	Runtime    Runtime    `koanf:"runtime"`
	Metrics    Metrics    `koanf:"metrics"`
	Domains    []Domain   `koanf:"domains"`
}

// Connection holds the externally supplied server parameters. Zero values
// fall back to backend defaults (port, admin database, sqlite dir).
type Connection struct {
	Kind     string            `koanf:"kind"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Params   map[string]string `koanf:"params"`
}

// Conn converts c to the descriptor form.
func (c Connection) Conn() dataset.Conn {
	var params map[string]string
	if len(c.Params) > 0 {
		params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			params[k] = v
		}
	}
	return dataset.Conn{
		Kind:     strings.ToLower(strings.TrimSpace(c.Kind)),
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Params:   params,
	}
}

// merge overlays the non-zero fields of o onto c. Params are merged key by key.
func (c Connection) merge(o *Connection) Connection {
	if o == nil {
		return c
	}
	out := c
	if o.Kind != "" {
		out.Kind = o.Kind
	}
	if o.Host != "" {
		out.Host = o.Host
	}
	if o.Port != 0 {
		out.Port = o.Port
	}
	if o.User != "" {
		out.User = o.User
	}
	if o.Password != "" {
		out.Password = o.Password
	}
	if len(o.Params) > 0 {
		out.Params = make(map[string]string, len(c.Params)+len(o.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
		for k, v := range o.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Runtime bounds concurrency and batching.
type Runtime struct {
	// DomainWorkers is the number of domains loaded at once; 0 means all.
	DomainWorkers int `koanf:"domain_workers"`
	// TableWorkers is the number of tables per domain loaded at once on
	// backends that allow concurrent DDL.
	TableWorkers int `koanf:"table_workers"`
	BatchSize    int `koanf:"batch_size"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is one of "none", "pushgateway", "datadog".
	Backend        string `koanf:"backend"`
	PushgatewayURL string `koanf:"pushgateway_url"`
	StatsdAddr     string `koanf:"statsd_addr"`
}

// Domain is one independently provisioned store and its sources.
type Domain struct {
	Name string `koanf:"name"`
	// Store is the database name; defaults to Name.
	Store string `koanf:"store"`
	// Dir is the domain's directory under DataDir; defaults to Name.
	Dir string `koanf:"dir"`
	// Connection overrides the top-level connection field by field.
	Connection *Connection `koanf:"connection"`
	Sources    []Source    `koanf:"sources"`
}

// StoreName returns the database name of d.
func (d Domain) StoreName() string {
	if d.Store != "" {
		return d.Store
	}
	return d.Name
}

// DirName returns the directory of d relative to DataDir.
func (d Domain) DirName() string {
	if d.Dir != "" {
		return d.Dir
	}
	return d.Name
}

// Source declares one table (or one table per file when Table contains
// {year}).
type Source struct {
	File  string   `koanf:"file"`
	Files []string `koanf:"files"`
	// Table is the target table name. The {year} placeholder is replaced by
	// the four-digit label found in each file name.
	Table   string   `koanf:"table"`
	Columns []Column `koanf:"columns"`
	Dates   Dates    `koanf:"dates"`
}

// Paths returns File followed by Files.
func (s Source) Paths() []string {
	var out []string
	if s.File != "" {
		out = append(out, s.File)
	}
	return append(out, s.Files...)
}

// Column declares the historical spellings of one canonical column.
type Column struct {
	Canonical string   `koanf:"canonical"`
	Synonyms  []string `koanf:"synonyms"`
}

// Dates declares the temporal columns of a source and how to parse them.
type Dates struct {
	Columns []string `koanf:"columns"`
	// Mode is "strict" or "lenient"; empty means lenient.
	Mode string `koanf:"mode"`
	// Format is a strftime format (%m/%d/%Y) or a Go layout. Required in
	// strict mode.
	Format string `koanf:"format"`
}

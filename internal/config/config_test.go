package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nl2sql/internal/dataset"
	_ "nl2sql/internal/storage/all"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_DefaultsUseBuiltinRegistry(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultKind, cfg.Connection.Kind)
	assert.Equal(t, 1, cfg.Runtime.TableWorkers)
	require.Len(t, cfg.Domains, 3)
	assert.Equal(t, []string{"crimes", "happiness", "hospitality"},
		[]string{cfg.Domains[0].Name, cfg.Domains[1].Name, cfg.Domains[2].Name})
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "nl2sql.yaml", `
data_dir: /srv/data
connection:
  kind: postgres
  host: file-host
  port: 5433
  params:
    sslmode: disable
runtime:
  batch_size: 500
domains:
  - name: happiness
    store: world_happiness
    sources:
      - files: [2018.csv, 2019.csv]
        table: happiness_{year}
        columns:
          - canonical: country
            synonyms: [Country, Country or region]
`)
	envFile := writeFile(t, dir, "test.env", "NL2SQL_CONNECTION__PASSWORD=from-env-file\n")
	t.Cleanup(func() { _ = os.Unsetenv("NL2SQL_CONNECTION__PASSWORD") })
	t.Setenv("NL2SQL_CONNECTION__HOST", "env-host")
	t.Setenv("NL2SQL_RUNTIME__BATCH_SIZE", "700")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("batch-size", 0, "")
	fs.String("config", "", "")
	fs.Int("domain-workers", 0, "")
	require.NoError(t, fs.Parse([]string{"--batch-size=900", "--config=ignored.yaml"}))

	cfg, err := Load(Options{File: cfgFile, EnvFile: envFile, Flags: fs})
	require.NoError(t, err)

	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, "postgres", cfg.Connection.Kind)
	assert.Equal(t, "env-host", cfg.Connection.Host, "env overrides file")
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "from-env-file", cfg.Connection.Password)
	assert.Equal(t, map[string]string{"sslmode": "disable"}, cfg.Connection.Params)
	assert.Equal(t, 900, cfg.Runtime.BatchSize, "changed flag overrides env")
	assert.Equal(t, 0, cfg.Runtime.DomainWorkers, "unchanged flag is ignored")

	require.Len(t, cfg.Domains, 1)
	d := cfg.Domains[0]
	assert.Equal(t, "world_happiness", d.StoreName())
	assert.Equal(t, "happiness", d.DirName())
	require.Len(t, d.Sources, 1)
	assert.Equal(t, []string{"2018.csv", "2019.csv"}, d.Sources[0].Paths())
	assert.Equal(t, []string{"Country", "Country or region"}, d.Sources[0].Columns[0].Synonyms)
}

func TestLoad_MissingNamedEnvFile(t *testing.T) {
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "nope.env")})
	require.Error(t, err)
}

func TestLoad_BadConfigFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "bad.yaml", "domains: [\n")
	_, err := Load(Options{File: p})
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "runtime.batch_size", envKey("NL2SQL_RUNTIME__BATCH_SIZE"))
	assert.Equal(t, "data_dir", envKey("NL2SQL_DATA_DIR"))
	assert.Equal(t, "connection.params.sslmode", envKey("NL2SQL_CONNECTION__PARAMS__SSLMODE"))
}

func TestConnectionMerge(t *testing.T) {
	base := Connection{Kind: "mysql", Host: "h", Port: 3306, User: "root", Params: map[string]string{"a": "1"}}
	got := base.merge(&Connection{Host: "other", Params: map[string]string{"b": "2"}})

	assert.Equal(t, "mysql", got.Kind)
	assert.Equal(t, "other", got.Host)
	assert.Equal(t, 3306, got.Port)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got.Params)
	assert.Equal(t, map[string]string{"a": "1"}, base.Params, "base params untouched")
	assert.Equal(t, base, base.merge(nil))
}

func TestLayout(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"%m/%d/%Y %I:%M:%S %p", "01/02/2006 03:04:05 PM"},
		{"%Y-%m-%d", "2006-01-02"},
		{"2006-01-02 15:04", "2006-01-02 15:04"},
	}
	for _, tc := range cases {
		got, err := Layout(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestLayoutStrictFieldsArePadded(t *testing.T) {
	l, err := Layout("%m/%d/%Y %I:%M:%S %p")
	require.NoError(t, err)

	got, err := time.Parse(l, "01/05/2022 09:03:00 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 1, 5, 21, 3, 0, 0, time.UTC), got)

	_, err = time.Parse(l, "1/5/2022 9:03:00 PM")
	assert.Error(t, err, "unpadded fields need a lenient policy")
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "2015", Label("happiness/2015.csv"))
	assert.Equal(t, "2019", Label("report-2019-final.csv"))
	assert.Equal(t, "", Label("2015/dim_date.csv"), "directories are not searched")
	assert.Equal(t, "", Label("dim_date.csv"))
}

func TestDatesPolicy(t *testing.T) {
	p, err := Dates{}.Policy()
	require.NoError(t, err)
	assert.Equal(t, dataset.Lenient, p.Mode)

	p, err = Dates{Mode: "STRICT", Format: "%Y-%m-%d"}.Policy()
	require.NoError(t, err)
	assert.Equal(t, dataset.Policy{Mode: dataset.Strict, Layout: "2006-01-02"}, p)

	_, err = Dates{Mode: "strict"}.Policy()
	require.Error(t, err)

	_, err = Dates{Mode: "sometimes"}.Policy()
	require.Error(t, err)
}

func TestDescriptors_Builtin(t *testing.T) {
	cfg := &Config{
		DataDir:    "data",
		Connection: Connection{Kind: "mysql", Host: "localhost", User: "root"},
		Domains:    Builtin(),
	}
	doms, err := cfg.Descriptors()
	require.NoError(t, err)
	require.Len(t, doms, 3)

	crimes := doms[0]
	assert.Equal(t, dataset.StoreDescriptor{
		Name:     "crimes",
		Database: "crimes",
		Conn:     dataset.Conn{Kind: "mysql", Host: "localhost", User: "root"},
	}, crimes.Store)
	require.Len(t, crimes.Sources, 1)
	src := crimes.Sources[0]
	assert.Equal(t, filepath.Join("crimes", "crimes-2001-to-present.csv"), src.Path)
	assert.Equal(t, "crime_data", src.Table)
	assert.Empty(t, src.Label)
	assert.Equal(t, dataset.Policy{Mode: dataset.Strict, Layout: "01/02/2006 03:04:05 PM"}, src.Policy)
	assert.Equal(t, []string{"date", "updated_on"}, src.DateColumns)
	assert.Equal(t, "case_number", src.Synonyms["Case Number"])

	happiness := doms[1]
	require.Len(t, happiness.Sources, 5)
	for i, year := range []string{"2015", "2016", "2017", "2018", "2019"} {
		s := happiness.Sources[i]
		assert.Equal(t, "happiness_"+year, s.Table)
		assert.Equal(t, year, s.Label)
		assert.Equal(t, "happiness_score", s.Synonyms["Score"])
		assert.Equal(t, dataset.Lenient, s.Policy.Mode)
	}

	hosp := doms[2]
	require.Len(t, hosp.Sources, 5)
	last := hosp.Sources[4]
	assert.Equal(t, "fact_bookings", last.Table)
	assert.Equal(t, []string{"check_in_date", "booking_date", "check_out_date"}, last.DateColumns)
	assert.Nil(t, hosp.Sources[1].Synonyms)
}

func TestDescriptors_DomainConnectionOverride(t *testing.T) {
	cfg := &Config{
		Connection: Connection{Kind: "mysql", Host: "a"},
		Domains: []Domain{{
			Name:       "crimes",
			Store:      "chicago",
			Dir:        "/abs/crimes",
			Connection: &Connection{Kind: "sqlite", Params: map[string]string{"dir": "/tmp/x"}},
			Sources:    []Source{{File: "c.csv", Table: "crime_data"}},
		}},
	}
	doms, err := cfg.Descriptors()
	require.NoError(t, err)
	assert.Equal(t, "chicago", doms[0].Store.Database)
	assert.Equal(t, "sqlite", doms[0].Store.Conn.Kind)
	assert.Equal(t, "/tmp/x", doms[0].Store.Conn.Param("dir", ""))
	assert.Equal(t, filepath.Join("/abs/crimes", "c.csv"), doms[0].Sources[0].Path)
}

func TestSampleConfigValidates(t *testing.T) {
	cfg, err := Load(Options{File: filepath.Join("..", "..", "configs", "nl2sql.yaml")})
	require.NoError(t, err)

	issues := Validate(cfg)
	assert.False(t, HasErrors(issues), "%+v", issues)

	doms, err := cfg.Descriptors()
	require.NoError(t, err)
	require.Len(t, doms, 3)
	assert.Len(t, doms[1].Sources, 5)
	assert.Equal(t, "economy", doms[1].Sources[0].Synonyms["Economy..GDP.per.Capita."])
}

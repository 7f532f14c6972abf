package korm_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
	. "gopkg.in/check.v1"

	"github.com/IgniparousTempest/korm"
)

type ConfigSuite struct{}

var _ = Suite(&ConfigSuite{})

func (s *ConfigSuite) TestDefaultConfig(c *C) {
	cfg := korm.DefaultConfig()
	c.Assert(cfg.Path, Equals, ":memory:")
	c.Assert(cfg.ForeignKeys, Equals, true)
	c.Assert(cfg.Log.Level, Equals, "disabled")
	c.Assert(cfg.DSN(), Equals, ":memory:?_foreign_keys=on")

	cfg.ForeignKeys = false
	c.Assert(cfg.DSN(), Equals, ":memory:?_foreign_keys=off")
}

func (s *ConfigSuite) TestLoadConfig(c *C) {
	dir := c.MkDir()
	path := filepath.Join(dir, "korm.yaml")
	err := os.WriteFile(path, []byte(`
path: `+filepath.Join(dir, "school.db")+`
log:
  level: debug
  format: console
`), 0o644)
	c.Assert(err, IsNil)

	cfg, err := korm.LoadConfig(path)
	c.Assert(err, IsNil)
	c.Assert(cfg.Path, Equals, filepath.Join(dir, "school.db"))
	c.Assert(cfg.ForeignKeys, Equals, true)
	c.Assert(cfg.Log.Level, Equals, "debug")
	c.Assert(cfg.Log.Format, Equals, "console")

	_, err = korm.LoadConfig(filepath.Join(dir, "missing.yaml"))
	c.Assert(err, ErrorMatches, "cannot read config: .*")

	bad := filepath.Join(dir, "bad.yaml")
	c.Assert(os.WriteFile(bad, []byte("path: [unclosed"), 0o644), IsNil)
	_, err = korm.LoadConfig(bad)
	c.Assert(err, ErrorMatches, "cannot parse config .*")
}

func (s *ConfigSuite) TestOpenFile(c *C) {
	var buf bytes.Buffer
	cfg := korm.DefaultConfig()
	cfg.Path = filepath.Join(c.MkDir(), "school.db")
	cfg.Log.Level = "debug"
	cfg.Log.Output = &buf

	db, err := korm.Open(cfg)
	c.Assert(err, IsNil)
	_, err = korm.Insert(ctx, db, Student{FirstName: "Ann"})
	c.Assert(err, IsNil)
	c.Assert(db.Close(), IsNil)
	c.Assert(strings.Contains(buf.String(), `"message":"database opened"`), Equals, true)
	c.Assert(strings.Contains(buf.String(), `"sql":"INSERT INTO \"Student\"`), Equals, true)

	// The data outlives the handle.
	db, err = korm.Open(cfg)
	c.Assert(err, IsNil)
	defer db.Close()
	found, err := korm.FindAll[Student](ctx, db)
	c.Assert(err, IsNil)
	c.Assert(found, HasLen, 1)
	c.Assert(found[0].FirstName, Equals, "Ann")
}

func (s *ConfigSuite) TestOpenForeignKeysOff(c *C) {
	cfg := korm.DefaultConfig()
	cfg.ForeignKeys = false
	db, err := korm.Open(cfg)
	c.Assert(err, IsNil)
	defer db.Close()

	c.Assert(korm.CreateTable(ctx, db, Department{}), IsNil)
	_, err = korm.Insert(ctx, db, StudentFK{Name: "Ann", DepartmentID: korm.References(departmentID, 99)})
	c.Assert(err, IsNil)
}

func (s *ConfigSuite) TestOpenBadLog(c *C) {
	cfg := korm.DefaultConfig()
	cfg.Log.Level = "loud"
	_, err := korm.Open(cfg)
	c.Assert(err, ErrorMatches, "cannot configure logger: .*")

	cfg = korm.DefaultConfig()
	cfg.Log.Format = "xml"
	_, err = korm.Open(cfg)
	c.Assert(err, ErrorMatches, `cannot configure logger: unknown format "xml"`)
}

func (s *ConfigSuite) TestNewLogger(c *C) {
	var buf bytes.Buffer
	log, err := korm.NewLogger(korm.LogConfig{Level: "warn", Output: &buf})
	c.Assert(err, IsNil)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	c.Assert(strings.Contains(buf.String(), "hidden"), Equals, false)
	c.Assert(strings.Contains(buf.String(), `"message":"shown"`), Equals, true)

	buf.Reset()
	log, err = korm.NewLogger(korm.LogConfig{Format: "console", Level: "info", Output: &buf})
	c.Assert(err, IsNil)
	log.Info().Str("table", "Student").Msg("created")
	c.Assert(strings.Contains(buf.String(), "created"), Equals, true)
	c.Assert(strings.Contains(buf.String(), "table="), Equals, true)

	buf.Reset()
	log, err = korm.NewLogger(korm.LogConfig{Output: &buf})
	c.Assert(err, IsNil)
	log.Error().Msg("quiet")
	c.Assert(buf.Len(), Equals, 0)
}

func (s *ConfigSuite) TestMissingTable(c *C) {
	table, ok := korm.MissingTable(sqlite3.Error{Code: sqlite3.ErrError})
	c.Assert(ok, Equals, false)
	c.Assert(table, Equals, "")

	db := openDB(c)
	defer db.Close()
	_, err := db.Exec(ctx, `DELETE FROM "Ghost"`)
	table, ok = korm.MissingTable(err)
	c.Assert(ok, Equals, true)
	c.Assert(table, Equals, "Ghost")

	_, ok = korm.MissingTable(errors.New("no such table: Ghost"))
	c.Assert(ok, Equals, false)
}

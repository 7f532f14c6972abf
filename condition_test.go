package korm_test

import (
	"reflect"

	. "gopkg.in/check.v1"

	"github.com/IgniparousTempest/korm"
)

type ConditionSuite struct{}

var _ = Suite(&ConditionSuite{})

func (s *ConditionSuite) TestConditions(c *C) {
	height := korm.Col[Student, *float64]("height")
	tests := []struct {
		summary string
		cond    korm.Condition
		sql     string
		values  []any
	}{{
		summary: "equality",
		cond:    studentFirstName.Eq("Ann"),
		sql:     `"Student"."firstName" = ?`,
		values:  []any{"Ann"},
	}, {
		summary: "inequality",
		cond:    studentFirstName.Neq("Ann"),
		sql:     `"Student"."firstName" != ?`,
		values:  []any{"Ann"},
	}, {
		summary: "ordering",
		cond:    studentAge.Lt(1).And(studentAge.Lte(2)).And(studentAge.Gt(3)).And(studentAge.Gte(4)),
		sql:     `"Student"."age" < ? AND "Student"."age" <= ? AND "Student"."age" > ? AND "Student"."age" >= ?`,
		values:  []any{1, 2, 3, 4},
	}, {
		summary: "and binds values in order",
		cond:    studentAge.Gte(18).And(studentFirstName.Eq("Ann")),
		sql:     `"Student"."age" >= ? AND "Student"."firstName" = ?`,
		values:  []any{18, "Ann"},
	}, {
		summary: "or is not grouped",
		cond:    studentAge.Gte(18).And(studentFirstName.Eq("Ann")).Or(studentGraduated.Eq(true)),
		sql:     `"Student"."age" >= ? AND "Student"."firstName" = ? OR "Student"."graduated" = ?`,
		values:  []any{18, "Ann", true},
	}, {
		summary: "bracket groups",
		cond:    studentAge.Gte(18).And(korm.Bracket(studentFirstName.Eq("Ann").Or(studentFirstName.Eq("Bob")))),
		sql:     `"Student"."age" >= ? AND ("Student"."firstName" = ? OR "Student"."firstName" = ?)`,
		values:  []any{18, "Ann", "Bob"},
	}, {
		summary: "nil pointer is NULL",
		cond:    height.Eq(nil).Or(height.Neq(nil)),
		sql:     `"Student"."height" IS NULL OR "Student"."height" IS NOT NULL`,
	}, {
		summary: "pattern matching",
		cond:    studentFirstName.Like("A%").And(studentSurname.Glob("L*")),
		sql:     `"Student"."firstName" LIKE ? AND "Student"."surname" GLOB ?`,
		values:  []any{"A%", "L*"},
	}, {
		summary: "between",
		cond:    studentAge.Between(10, 20),
		sql:     `"Student"."age" BETWEEN ? AND ?`,
		values:  []any{10, 20},
	}, {
		summary: "column equality",
		cond:    studentFKDepartment.EqColumn(departmentID),
		sql:     `"StudentFK"."departmentId" = "Department"."departmentId"`,
	}, {
		summary: "empty side of and",
		cond:    korm.Condition{}.And(studentAge.Eq(3)).Or(korm.Condition{}),
		sql:     `"Student"."age" = ?`,
		values:  []any{3},
	}, {
		summary: "raw condition",
		cond:    korm.NewCondition(`length("firstName") > ?`, 3),
		sql:     `length("firstName") > ?`,
		values:  []any{3},
	}}

	for i, t := range tests {
		c.Check(t.cond.SQL(), Equals, t.sql, Commentf("test %d: %s", i, t.summary))
		c.Check(t.cond.Values(), DeepEquals, t.values, Commentf("test %d: %s", i, t.summary))
	}
}

func (s *ConditionSuite) TestConditionImmutable(c *C) {
	base := studentAge.Gte(18)
	withName := base.And(studentFirstName.Eq("Ann"))
	withSurname := base.And(studentSurname.Eq("Lee"))

	c.Assert(base.SQL(), Equals, `"Student"."age" >= ?`)
	c.Assert(base.Values(), DeepEquals, []any{18})
	c.Assert(withName.Values(), DeepEquals, []any{18, "Ann"})
	c.Assert(withSurname.Values(), DeepEquals, []any{18, "Lee"})

	values := base.Values()
	values[0] = 99
	c.Assert(base.Values(), DeepEquals, []any{18})
	c.Assert(korm.Condition{}.IsZero(), Equals, true)
	c.Assert(base.IsZero(), Equals, false)
}

func (s *ConditionSuite) TestUpdaters(c *C) {
	u := studentSurname.Set("Smith").And(studentMaidenName.Set(nil)).And(studentAge.Set(30))
	c.Assert(u.SQL(), Equals, `"surname" = ?, "maidenName" = NULL, "age" = ?`)
	c.Assert(u.Values(), DeepEquals, []any{"Smith", 30})
	_, ok := u.Condition()
	c.Assert(ok, Equals, false)

	u = u.OnCondition(studentFirstName.Eq("Ann"))
	cond, ok := u.Condition()
	c.Assert(ok, Equals, true)
	c.Assert(cond.SQL(), Equals, `"Student"."firstName" = ?`)

	// The condition of the right hand side wins.
	joined := u.And(studentGraduated.Set(true).OnCondition(studentAge.Lt(20)))
	cond, _ = joined.Condition()
	c.Assert(cond.SQL(), Equals, `"Student"."age" < ?`)
	c.Assert(joined.Values(), DeepEquals, []any{"Smith", 30, true})

	joined = u.And(studentGraduated.SetNull())
	cond, _ = joined.Condition()
	c.Assert(cond.SQL(), Equals, `"Student"."firstName" = ?`)
	c.Assert(joined.SQL(), Equals, `"surname" = ?, "maidenName" = NULL, "age" = ?, "graduated" = NULL`)
}

func (s *ConditionSuite) TestNewColumn(c *C) {
	col, err := korm.NewColumn[Student, int]("age")
	c.Assert(err, IsNil)
	c.Assert(col.Table(), Equals, "Student")
	c.Assert(col.Name(), Equals, "age")
	c.Assert(col.QualifiedName(), Equals, `"Student"."age"`)

	_, err = korm.NewColumn[Student, int]("nope")
	c.Assert(err, ErrorMatches, `type korm_test.Student has no column "nope"`)

	_, err = korm.NewColumn[Student, string]("age")
	c.Assert(err, ErrorMatches, `column "age" of korm_test.Student has type int, not string`)

	_, err = korm.NewColumn[Student, float64]("height")
	c.Assert(err, ErrorMatches, `column "height" of korm_test.Student has type \*float64, not float64`)

	c.Assert(func() { korm.Col[Student, int]("nope") }, PanicMatches, `type korm_test.Student has no column "nope"`)
}

func (s *ConditionSuite) TestSelect(c *C) {
	tests := []struct {
		summary string
		stmt    korm.Selection
		sql     string
		values  []any
	}{{
		summary: "select all",
		stmt:    korm.SelectAll().From(korm.TableOf[Student]()),
		sql:     `SELECT * FROM "Student"`,
	}, {
		summary: "select columns",
		stmt:    korm.Select(studentFirstName, studentAge).From(korm.TableOf[Student]()).Where(studentAge.Gt(18)),
		sql:     `SELECT "Student"."firstName", "Student"."age" FROM "Student" WHERE "Student"."age" > ?`,
		values:  []any{18},
	}, {
		summary: "inner join",
		stmt: korm.SelectAll().
			From(korm.TableOf[StudentFK]()).
			InnerJoin(korm.TableOf[Department]()).
			On(studentFKDepartment.EqColumn(departmentID)),
		sql: `SELECT * FROM "StudentFK" INNER JOIN "Department" ON "StudentFK"."departmentId" = "Department"."departmentId"`,
	}, {
		summary: "join and filter",
		stmt: korm.Select(studentFKName, departmentTitle).
			From(korm.TableOf[StudentFK]()).
			InnerJoin(korm.TableOf[Department]()).
			On(studentFKDepartment.EqColumn(departmentID)).
			Where(departmentTitle.Eq("Physics").Or(departmentTitle.Eq("History"))),
		sql:    `SELECT "StudentFK"."name", "Department"."title" FROM "StudentFK" INNER JOIN "Department" ON "StudentFK"."departmentId" = "Department"."departmentId" WHERE "Department"."title" = ? OR "Department"."title" = ?`,
		values: []any{"Physics", "History"},
	}, {
		summary: "join values are bound before where values",
		stmt: korm.SelectAll().
			From(korm.TableOf[StudentFK]()).
			InnerJoin(korm.TableOf[Department]()).
			On(studentFKDepartment.EqColumn(departmentID).And(departmentID.Gt(korm.PrimaryKey[int]{Key: 0}))).
			Where(departmentTitle.Eq("Physics")),
		sql:    `SELECT * FROM "StudentFK" INNER JOIN "Department" ON "StudentFK"."departmentId" = "Department"."departmentId" AND "Department"."departmentId" > ? WHERE "Department"."title" = ?`,
		values: []any{korm.PrimaryKey[int]{Key: 0}, "Physics"},
	}, {
		summary: "empty where",
		stmt:    korm.SelectAll().From(korm.TableOf[Department]()).Where(korm.Condition{}),
		sql:     `SELECT * FROM "Department"`,
	}}

	for i, t := range tests {
		c.Check(t.stmt.SQL(), Equals, t.sql, Commentf("test %d: %s", i, t.summary))
		c.Check(t.stmt.Values(), DeepEquals, t.values, Commentf("test %d: %s", i, t.summary))
	}
}

func (s *ConditionSuite) TestWhereIsTerminal(c *C) {
	filtered := reflect.TypeOf(korm.FilteredSelect{})
	for _, method := range []string{"InnerJoin", "Where"} {
		_, ok := filtered.MethodByName(method)
		c.Check(ok, Equals, false, Commentf("FilteredSelect has %s", method))
	}
	var _ korm.Selection = korm.FilteredSelect{}
	var _ korm.Selection = korm.SelectStatement{}

	// A join can still be filtered once.
	stmt := korm.SelectAll().
		From(korm.TableOf[StudentFK]()).
		InnerJoin(korm.TableOf[Department]()).
		On(studentFKDepartment.EqColumn(departmentID)).
		Where(studentFKName.Eq("Ann"))
	c.Assert(stmt.SQL(), Equals, `SELECT * FROM "StudentFK" INNER JOIN "Department" ON "StudentFK"."departmentId" = "Department"."departmentId" WHERE "StudentFK"."name" = ?`)
}

type renamed struct {
	ID korm.PrimaryKeyAuto `db:"id"`
}

func (renamed) TableName() string { return "custom_name" }

func (s *ConditionSuite) TestTableOf(c *C) {
	c.Assert(korm.TableOf[Student]().Name(), Equals, "Student")
	c.Assert(korm.TableOf[renamed]().Name(), Equals, "custom_name")
	c.Assert(func() { korm.TableOf[int]() }, PanicMatches, `cannot map type int to a table: .*`)
}

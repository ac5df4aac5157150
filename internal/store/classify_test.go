package store_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/proofpanel/docvault/internal/store"
)

var _ = DescribeTable("read-only classification",
	func(sqlText string, readOnly bool) {
		Expect(store.IsReadOnlyStatement(sqlText)).To(Equal(readOnly))
	},
	Entry("bare select", "SELECT 1", true),
	Entry("leading comment and CTE", " -- c\n  WITH x AS (SELECT 1) SELECT * FROM x", true),
	Entry("pragma", "PRAGMA table_info(t)", true),
	Entry("explain", "EXPLAIN SELECT 1", true),
	Entry("block comment before select", "/* note */ SELECT 1", true),
	Entry("parenthesized select", "(SELECT 1)", true),
	Entry("stray semicolon before select", "; SELECT 1", true),
	Entry("lower-case select", "select name from t", true),
	Entry("insert", "INSERT INTO t VALUES (1)", false),
	Entry("create table", "CREATE TABLE t (id INTEGER)", false),
	Entry("delete", "DELETE FROM t", false),
	Entry("update behind a select-ish comment", "/* select */ UPDATE t SET id = 2", false),
	Entry("empty text", "   ", false),
)

// Package engine provides helpers for working with the modernc.org/sqlite
// driver: opening connections and registering the vec_cosine and vec_l2 SQL
// scalar functions over embedding BLOBs. The SQLite persistence backend and
// operator queries share the same driver instance through it.
package engine

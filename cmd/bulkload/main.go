// Command bulkload imports spreadsheet exports into a relational database.
//
// Usage:
//
//	bulkload import [--group customers]   run an import and exit
//	bulkload serve                        HTTP API plus optional cron schedule
//	bulkload tables                       report which target tables exist
//	bulkload entities                     list the entity catalogue
package main

import (
	_ "github.com/JonMunkholm/bulkload/internal/core/tables" // Register built-in entities
)

func main() {
	Execute()
}

// Package db embeds the database schema applied on startup.
package db

import _ "embed"

// Schema holds the DDL for the storefront tables: catalog, customers,
// api_keys, orders, payments and order_items.
//
//go:embed migrations/001_schema.sql
var Schema string

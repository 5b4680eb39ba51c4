// Package migrations содержит встроенные SQL-миграции схемы базы данных.
package migrations

import "embed"

// PostgresMigrations - миграции PostgreSQL
//
//go:embed postgres/*.sql
var PostgresMigrations embed.FS

// PostgresDir - каталог миграций внутри встроенной файловой системы
const PostgresDir = "postgres"

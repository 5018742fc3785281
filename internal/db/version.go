package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Capabilities are the version-dependent catalog features the extractor
// relies on, computed once per pass
type Capabilities struct {
	// ServerVersion is server_version_num, e.g. 150004
	ServerVersion int

	// IdentityColumns: pg_attribute.attidentity exists
	IdentityColumns bool
	// CoveringIndexes: pg_index.indnkeyatts exists
	CoveringIndexes bool
	// GeneratedColumns: pg_attribute.attgenerated exists
	GeneratedColumns bool
	// DeclarativePartitioning: pg_class.relispartition exists
	DeclarativePartitioning bool
	// ExactDescendingMinimum: descending sequences default to the type
	// minimum rather than minimum + 1
	ExactDescendingMinimum bool
}

// CapabilitiesFor derives the feature set of a server version
func CapabilitiesFor(serverVersion int) Capabilities {
	return Capabilities{
		ServerVersion:           serverVersion,
		IdentityColumns:         serverVersion >= 100000,
		CoveringIndexes:         serverVersion >= 110000,
		GeneratedColumns:        serverVersion >= 120000,
		DeclarativePartitioning: serverVersion >= 100000,
		ExactDescendingMinimum:  serverVersion >= 100000,
	}
}

func (e *Extractor) loadCapabilities(ctx context.Context, conn *sql.DB) (Capabilities, error) {
	var version int
	err := conn.QueryRowContext(ctx, `SELECT current_setting('server_version_num')::int`).Scan(&version)
	if err != nil {
		return Capabilities{}, fmt.Errorf("failed to read server version: %w", err)
	}
	return CapabilitiesFor(version), nil
}

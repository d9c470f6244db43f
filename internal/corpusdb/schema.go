package corpusdb

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		text TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS nodes (
		document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		node_id     INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		name        TEXT NOT NULL DEFAULT '',
		start_off   INTEGER NOT NULL DEFAULT 0,
		end_off     INTEGER NOT NULL DEFAULT 0,
		anchored    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (document_id, node_id)
	)`,
	`CREATE TABLE IF NOT EXISTS span_tokens (
		document_id INTEGER NOT NULL,
		span_id     INTEGER NOT NULL,
		token_id    INTEGER NOT NULL,
		position    INTEGER NOT NULL,
		PRIMARY KEY (document_id, span_id, position),
		FOREIGN KEY (document_id, span_id) REFERENCES nodes(document_id, node_id) ON DELETE CASCADE,
		FOREIGN KEY (document_id, token_id) REFERENCES nodes(document_id, node_id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS annotations (
		document_id INTEGER NOT NULL,
		node_id     INTEGER NOT NULL,
		position    INTEGER NOT NULL,
		name        TEXT NOT NULL,
		value       TEXT NOT NULL,
		PRIMARY KEY (document_id, node_id, position),
		FOREIGN KEY (document_id, node_id) REFERENCES nodes(document_id, node_id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_annotations_name ON annotations(name, value)`,
}
